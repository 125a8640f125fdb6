package models

import "strings"

// SortKey selects the ordering of a transaction listing.
type SortKey int

const (
	SortByDate SortKey = iota
	SortByAmount
	SortByCategory
)

// ParseSortKey maps a user supplied sort name to a SortKey. Unknown or empty names sort by date.
func ParseSortKey(name string) SortKey {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "amount":
		return SortByAmount
	case "category":
		return SortByCategory
	default:
		return SortByDate
	}
}

func (k SortKey) String() string {
	switch k {
	case SortByAmount:
		return "amount"
	case SortByCategory:
		return "category"
	default:
		return "date"
	}
}
