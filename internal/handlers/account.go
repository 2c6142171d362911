package handlers

import (
	"errors"

	"payflow/internal/services/account"
	"payflow/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AccountHandler exposes account read and creation endpoints.
type AccountHandler struct {
	service *account.Service
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(s *account.Service) *AccountHandler {
	return &AccountHandler{service: s}
}

// GetAccount handles GET /api/accounts/:id.
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid account id")
	}

	acc, err := h.service.GetAccount(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "failed to get account")
	}
	return c.JSON(acc)
}

// CreateAccount handles POST /api/accounts.
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req struct {
		UserID   uint            `json:"user_id"`
		Balance  decimal.Decimal `json:"balance"`
		Currency string          `json:"currency"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.UserID == 0 {
		return response.BadRequest(c, "user_id is required")
	}

	acc, err := h.service.CreateAccount(c.Context(), req.UserID, req.Balance, req.Currency)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCurrency) || errors.Is(err, account.ErrNegativeBalance) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, "failed to create account")
	}
	return c.Status(fiber.StatusCreated).JSON(acc)
}
