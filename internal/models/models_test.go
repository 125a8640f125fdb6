package models_test

import (
	"testing"

	"expensebuddy/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in   string
		want models.SortKey
	}{
		{"", models.SortByDate},
		{"date", models.SortByDate},
		{"amount", models.SortByAmount},
		{" Amount ", models.SortByAmount},
		{"CATEGORY", models.SortByCategory},
		{"description", models.SortByDate},
		{"id; DROP TABLE users", models.SortByDate},
	}
	for _, tt := range tests {
		got := models.ParseSortKey(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, got, models.ParseSortKey(got.String()))
	}
}

func TestCategories(t *testing.T) {
	cats := models.Categories()
	assert.Equal(t, []string{"Dairy", "Household", "Grocery", "Transport", "Other"}, cats)

	cats[0] = "changed"
	assert.Equal(t, models.CategoryDairy, models.Categories()[0])
}

func TestNewTransactionTrimmed(t *testing.T) {
	in := models.NewTransaction{Date: " 2024-01-01 ", Category: "\tDairy", Description: "milk\n", Amount: " 1.50"}
	assert.Equal(t, models.NewTransaction{Date: "2024-01-01", Category: "Dairy", Description: "milk", Amount: "1.50"}, in.Trimmed())
}

func TestSessionValid(t *testing.T) {
	assert.False(t, models.Session{}.Valid())
	assert.False(t, models.Session{Username: "alice"}.Valid())
	assert.True(t, models.Session{UserID: 1, Username: "alice"}.Valid())
}
