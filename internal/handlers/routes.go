package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes registers all HTTP routes.
func SetupRoutes(app *fiber.App, transactions *TransactionHandler, accounts *AccountHandler, users *UserHandler) {
	app.Get("/health", HealthCheck)

	api := app.Group("/api")

	api.Post("/transactions", transactions.CreateTransaction)

	api.Post("/accounts", accounts.CreateAccount)
	api.Get("/accounts/:id", accounts.GetAccount)

	api.Post("/users", users.CreateUser)
	api.Get("/users", users.ListUsers)
	api.Get("/users/:id", users.GetUser)
	api.Put("/users/:id", users.UpdateUser)
}
