package handlers

import (
	"errors"

	"payflow/internal/services/transfer"
	"payflow/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransactionHandler exposes the funds-transfer endpoint.
type TransactionHandler struct {
	service transfer.Service
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(s transfer.Service) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// CreateTransaction handles POST /api/transactions.
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req struct {
		SenderAccountID   uint            `json:"sender_account_id"`
		ReceiverAccountID uint            `json:"receiver_account_id"`
		Amount            decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	txn, err := h.service.Transfer(c.Context(), transfer.Request{
		SenderAccountID:   req.SenderAccountID,
		ReceiverAccountID: req.ReceiverAccountID,
		Amount:            req.Amount,
		IdempotencyKey:    c.Get("Idempotency-Key"),
	})
	if err != nil {
		return transferError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

// transferError maps transfer service errors onto HTTP statuses:
// caller errors 400, unknown accounts 404, insufficient balance 409,
// transient infrastructure failures 503.
func transferError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, transfer.ErrMissingField),
		errors.Is(err, transfer.ErrInvalidAmount),
		errors.Is(err, transfer.ErrSelfTransfer):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, transfer.ErrAccountNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, transfer.ErrInsufficientBalance):
		return response.Conflict(c, err.Error())
	case errors.Is(err, transfer.ErrLockTimeout):
		return response.Error(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		return response.Error(c, fiber.StatusServiceUnavailable, "transfer could not be completed, retry later")
	}
}
