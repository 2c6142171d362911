package handlers

import (
	"errors"

	"payflow/internal/services/user"
	"payflow/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler exposes user management endpoints.
type UserHandler struct {
	service *user.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(s *user.Service) *UserHandler {
	return &UserHandler{service: s}
}

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUser handles POST /api/users.
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	u, err := h.service.CreateUser(c.Context(), req.Name, req.Email)
	if err != nil {
		return userError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// UpdateUser handles PUT /api/users/:id.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid user id")
	}

	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	u, err := h.service.UpdateUser(c.Context(), uint(id), req.Name, req.Email)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(u)
}

// GetUser handles GET /api/users/:id.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid user id")
	}

	u, err := h.service.GetUser(c.Context(), uint(id))
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(u)
}

// ListUsers handles GET /api/users.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list users")
	}
	return c.JSON(users)
}

func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, user.ErrInvalidName), errors.Is(err, user.ErrInvalidEmail):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, user.ErrDuplicateEmail):
		return response.Conflict(c, err.Error())
	default:
		return response.ServerError(c, "user operation failed")
	}
}
