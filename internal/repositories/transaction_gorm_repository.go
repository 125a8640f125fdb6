package repositories

import (
	"context"
	"fmt"

	"expensebuddy/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ TransactionRepository = (*GORMTransactionRepository)(nil)

// sortColumns is the only source of column names that reach an ORDER BY clause.
var sortColumns = map[models.SortKey]string{
	models.SortByDate:     "date",
	models.SortByAmount:   "amount",
	models.SortByCategory: "category",
}

// GORMTransactionRepository is a GORM implementation of TransactionRepository.
type GORMTransactionRepository struct {
	db *gorm.DB
}

// NewGORMTransactionRepository creates a new instance of GORMTransactionRepository.
func NewGORMTransactionRepository(db *gorm.DB) *GORMTransactionRepository {
	return &GORMTransactionRepository{
		db: db,
	}
}

// Create inserts a new transaction row.
func (r *GORMTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// deleteBatchSize keeps each IN list well below SQLite's bound-variable limit.
const deleteBatchSize = 500

// DeleteByIDs removes the owner's transactions whose id is in ids, atomically.
// Ids that do not exist or belong to someone else are skipped.
func (r *GORMTransactionRepository) DeleteByIDs(ctx context.Context, ownerID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(ids); start += deleteBatchSize {
			end := min(start+deleteBatchSize, len(ids))
			res := tx.Where("user_id = ? AND id IN ?", ownerID, ids[start:end]).
				Delete(&models.Transaction{})
			if res.Error != nil {
				return res.Error
			}
			deleted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	return deleted, nil
}

// ListByOwner returns the owner's transactions ascending by sortBy, ties broken by id.
func (r *GORMTransactionRepository) ListByOwner(ctx context.Context, ownerID uint, sortBy models.SortKey) ([]models.Transaction, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = sortColumns[models.SortByDate]
	}

	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: column}},
			{Column: clause.Column{Name: "id"}},
		}}).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %d: %w", ownerID, err)
	}
	return txs, nil
}
