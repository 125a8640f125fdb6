package models

// Known categories offered by the entry form. Any non-empty category is accepted on storage.
const (
	CategoryDairy     = "Dairy"
	CategoryHousehold = "Household"
	CategoryGrocery   = "Grocery"
	CategoryTransport = "Transport"
	CategoryOther     = "Other"
)

// Categories lists the known categories in display order; the first is the form default.
func Categories() []string {
	return []string{CategoryDairy, CategoryHousehold, CategoryGrocery, CategoryTransport, CategoryOther}
}
