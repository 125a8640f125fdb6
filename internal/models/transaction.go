package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format transactions are stored in.
const DateLayout = "2006-01-02"

// Transaction represents a single dated expense owned by one user.
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uint            `json:"-" gorm:"not null;index"`
	User        *User           `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Date        string          `json:"date" gorm:"type:varchar(10);not null"`
	Category    string          `json:"category" gorm:"type:varchar(100);not null"`
	Description string          `json:"description" gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewTransaction is the unvalidated input for adding a transaction, as typed into a form.
type NewTransaction struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Category    string `json:"category" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=500"`
	Amount      string `json:"amount" validate:"required"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (n NewTransaction) Trimmed() NewTransaction {
	return NewTransaction{
		Date:        strings.TrimSpace(n.Date),
		Category:    strings.TrimSpace(n.Category),
		Description: strings.TrimSpace(n.Description),
		Amount:      strings.TrimSpace(n.Amount),
	}
}
