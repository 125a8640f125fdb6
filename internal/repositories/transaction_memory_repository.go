package repositories

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"expensebuddy/internal/models"
)

var _ TransactionRepository = (*MemoryTransactionRepository)(nil)

// MemoryTransactionRepository is an in-memory implementation of TransactionRepository.
type MemoryTransactionRepository struct {
	txs    map[uint]models.Transaction
	nextID uint
	mu     sync.RWMutex
}

// NewMemoryTransactionRepository creates a new instance of MemoryTransactionRepository.
func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{
		txs:    make(map[uint]models.Transaction),
		nextID: 1,
	}
}

// Create adds a new transaction and assigns its ID.
func (r *MemoryTransactionRepository) Create(_ context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.UserID == 0 {
		return errors.New("failed to create transaction: owner is required")
	}
	tx.ID = r.nextID
	r.nextID++
	tx.CreatedAt = time.Now()
	r.txs[tx.ID] = *tx
	return nil
}

// DeleteByIDs removes the owner's transactions whose id is in ids.
func (r *MemoryTransactionRepository) DeleteByIDs(_ context.Context, ownerID uint, ids []uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		tx, ok := r.txs[id]
		if !ok || tx.UserID != ownerID {
			continue
		}
		delete(r.txs, id)
		deleted++
	}
	return deleted, nil
}

// ListByOwner returns the owner's transactions ascending by sortBy, ties broken by id.
func (r *MemoryTransactionRepository) ListByOwner(_ context.Context, ownerID uint, sortBy models.SortKey) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txs := make([]models.Transaction, 0)
	for _, tx := range r.txs {
		if tx.UserID == ownerID {
			txs = append(txs, tx)
		}
	}

	sort.Slice(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		switch c := compareBy(sortBy, a, b); {
		case c < 0:
			return true
		case c > 0:
			return false
		}
		return a.ID < b.ID
	})
	return txs, nil
}

func compareBy(key models.SortKey, a, b models.Transaction) int {
	switch key {
	case models.SortByAmount:
		return a.Amount.Cmp(b.Amount)
	case models.SortByCategory:
		return strings.Compare(a.Category, b.Category)
	default:
		return strings.Compare(a.Date, b.Date)
	}
}
