package repositories

import (
	"context"

	"expensebuddy/internal/models"
)

// TransactionRepository defines the interface for transaction data access.
// Every method is scoped to a single owner.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	DeleteByIDs(ctx context.Context, ownerID uint, ids []uint) (int64, error)
	ListByOwner(ctx context.Context, ownerID uint, sortBy models.SortKey) ([]models.Transaction, error)
}
