package handlers

import (
	"bytes"
	"encoding/json"
	"errors"

	"expensebuddy/internal/middleware"
	"expensebuddy/internal/models"
	"expensebuddy/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// TransactionHandler handles HTTP requests for the authenticated user's transactions.
type TransactionHandler struct {
	service *services.TransactionService
	log     logrus.FieldLogger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service *services.TransactionService, log logrus.FieldLogger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		log:     log,
	}
}

// RegisterPublicRoutes registers routes that need no session.
func (h *TransactionHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleGetCategories)
}

// RegisterRoutes registers the transaction routes. router must be guarded by middleware.AuthRequired.
func (h *TransactionHandler) RegisterRoutes(router fiber.Router) {
	txRoutes := router.Group("/transactions")
	txRoutes.Get("/", h.HandleList)
	txRoutes.Post("/", h.HandleAdd)
	txRoutes.Delete("/", h.HandleDelete)
	txRoutes.Get("/total", h.HandleTotal)
}

// amountField accepts an amount sent either as a JSON number or as a string. null reads as missing.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*a = ""
	case string:
		*a = amountField(v)
	case json.Number:
		*a = amountField(v.String())
	default:
		return errAmountType
	}
	return nil
}

var errAmountType = errors.New("amount must be a JSON number or string")

// AddTransactionRequest represents the request body for adding a transaction.
type AddTransactionRequest struct {
	Date        string      `json:"date"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Amount      amountField `json:"amount"`
}

// DeleteTransactionsRequest represents the request body for deleting transactions.
type DeleteTransactionsRequest struct {
	IDs []uint `json:"ids"`
}

// HandleGetCategories returns the known categories in form order.
func (h *TransactionHandler) HandleGetCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": models.Categories()})
}

// HandleList returns the user's transactions in the requested order with their total.
func (h *TransactionHandler) HandleList(c *fiber.Ctx) error {
	session := middleware.SessionFrom(c)
	sortBy := models.ParseSortKey(c.Query("sort"))

	txs, err := h.service.List(c.UserContext(), session, sortBy)
	if err != nil {
		h.log.WithError(err).WithField("user_id", session.UserID).Error("Failed to list transactions")
		return serviceError(c, "Could not retrieve transactions", err)
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	return c.JSON(fiber.Map{
		"sort":         sortBy.String(),
		"transactions": txs,
		"total":        services.SumAmounts(txs).StringFixed(2),
	})
}

// HandleAdd records a new transaction.
func (h *TransactionHandler) HandleAdd(c *fiber.Ctx) error {
	var req AddTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	session := middleware.SessionFrom(c)
	tx, err := h.service.Add(c.UserContext(), session, models.NewTransaction{
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
		Amount:      string(req.Amount),
	})
	if err != nil {
		return serviceError(c, "Could not add transaction", err)
	}

	return c.Status(fiber.StatusCreated).JSON(tx)
}

// HandleDelete removes the selected transactions owned by the user.
func (h *TransactionHandler) HandleDelete(c *fiber.Ctx) error {
	var req DeleteTransactionsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if len(req.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No transaction selected.",
		})
	}

	session := middleware.SessionFrom(c)
	deleted, err := h.service.DeleteMany(c.UserContext(), session, req.IDs)
	if err != nil {
		h.log.WithError(err).WithField("user_id", session.UserID).Error("Failed to delete transactions")
		return serviceError(c, "Could not delete transactions", err)
	}

	return c.JSON(fiber.Map{
		"requested": len(req.IDs),
		"deleted":   deleted,
	})
}

// HandleTotal returns the sum of all the user's transaction amounts.
func (h *TransactionHandler) HandleTotal(c *fiber.Ctx) error {
	session := middleware.SessionFrom(c)
	total, err := h.service.Total(c.UserContext(), session)
	if err != nil {
		return serviceError(c, "Could not compute total", err)
	}
	return c.JSON(fiber.Map{"total": total.StringFixed(2)})
}
