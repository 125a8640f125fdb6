package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"expensebuddy/internal/models"
	"expensebuddy/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// EventPublisher delivers transaction change notifications to an external broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// TransactionService records, lists, deletes and totals a user's transactions.
type TransactionService struct {
	repo      repositories.TransactionRepository
	publisher EventPublisher // optional
	validate  *validator.Validate
	log       logrus.FieldLogger
}

// NewTransactionService creates a new TransactionService. publisher may be nil.
func NewTransactionService(repo repositories.TransactionRepository, publisher EventPublisher, log logrus.FieldLogger) *TransactionService {
	return &TransactionService{
		repo:      repo,
		publisher: publisher,
		validate:  newValidator(),
		log:       log,
	}
}

// newValidator reports fields by their json names so errors match what clients send.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Add validates input and stores it as a new transaction owned by the session's user.
func (s *TransactionService) Add(ctx context.Context, session models.Session, input models.NewTransaction) (*models.Transaction, error) {
	if !session.Valid() {
		return nil, ErrUnauthenticated
	}

	input = input.Trimmed()
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	amount, err := ParseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		UserID:      session.UserID,
		Date:        input.Date,
		Category:    input.Category,
		Description: input.Description,
		Amount:      amount,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to add transaction: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":        session.UserID,
		"transaction_id": tx.ID,
		"category":       tx.Category,
	}).Info("Transaction added")
	s.publish(models.TransactionEvent{
		Type:           models.EventTransactionAdded,
		UserID:         session.UserID,
		TransactionIDs: []uint{tx.ID},
		Count:          1,
	})
	return tx, nil
}

// DeleteMany deletes the session user's transactions with the given ids and returns how many were removed.
// Ids that are unknown or owned by another user are skipped without error.
func (s *TransactionService) DeleteMany(ctx context.Context, session models.Session, ids []uint) (int64, error) {
	if !session.Valid() {
		return 0, ErrUnauthenticated
	}
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := s.repo.DeleteByIDs(ctx, session.UserID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	fields := logrus.Fields{"user_id": session.UserID, "requested": len(ids), "deleted": deleted}
	if deleted < int64(len(ids)) {
		s.log.WithFields(fields).Warn("Some transactions were not deleted")
	} else {
		s.log.WithFields(fields).Info("Transactions deleted")
	}
	if deleted > 0 {
		s.publish(models.TransactionEvent{
			Type:   models.EventTransactionDeleted,
			UserID: session.UserID,
			Count:  deleted,
		})
	}
	return deleted, nil
}

// List returns every transaction of the session user ordered by sortBy, ties broken by id.
func (s *TransactionService) List(ctx context.Context, session models.Session, sortBy models.SortKey) ([]models.Transaction, error) {
	if !session.Valid() {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListByOwner(ctx, session.UserID, sortBy)
}

// Total sums the amounts of every transaction of the session user.
func (s *TransactionService) Total(ctx context.Context, session models.Session) (decimal.Decimal, error) {
	txs, err := s.List(ctx, session, models.SortByDate)
	if err != nil {
		return decimal.Zero, err
	}
	return SumAmounts(txs), nil
}

// SumAmounts returns the exact decimal sum of the amounts in txs; zero for an empty slice.
func SumAmounts(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// maxAmount bounds amounts to 15 significant digits with cents, which SQLite's NUMERIC
// affinity stores exactly (as a float64 REAL).
var maxAmount = decimal.New(1, 13)

// ParseAmount parses a currency amount. NaN, infinities, sub-cent precision and magnitudes
// of maxAmount or more are rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) || !amount.Abs().LessThan(maxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

func (s *TransactionService) validateInput(input models.NewTransaction) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate transaction: %w", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return &FieldError{Field: fe.Field(), Err: ErrMissingField}
	case "datetime":
		return ErrInvalidDate
	default:
		return &FieldError{Field: fe.Field(), Err: fmt.Errorf("failed on the '%s' tag", fe.Tag())}
	}
}

// publish is best effort: a broker failure is logged and never fails the store operation.
func (s *TransactionService) publish(event models.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()

	body, err := json.Marshal(event)
	if err != nil {
		s.log.WithError(err).Error("Failed to marshal transaction event")
		return
	}
	if err := s.publisher.Publish(event.Type, body); err != nil {
		s.log.WithError(err).WithField("event", event.Type).Warn("Failed to publish transaction event")
	}
}
