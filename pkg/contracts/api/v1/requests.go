// Package api contains the REST contracts of the inventory dashboard.
package api

// Query parameter values
const (
	StockAll       = "all"
	StockStocked   = "stocked"
	StockUnstocked = "unstocked"

	ViewAll     = "all"
	ViewSlow    = "slow"
	ViewReorder = "reorder"

	// MaxLimit caps the rows returned by one items request.
	MaxLimit = 10000
)

// InventoryQuery selects items from the current dataset. Empty fields fall
// back to the dashboard defaults (stocked items, every brand and type).
type InventoryQuery struct {
	Stock string `query:"stock" validate:"omitempty,oneof=all stocked unstocked"`
	Brand string `query:"brand" validate:"max=128"`
	Type  string `query:"type" validate:"max=128"`
	View  string `query:"view" validate:"omitempty,oneof=all slow reorder"`
	Limit int    `query:"limit" validate:"min=0,max=10000"`
}

// AnalyticsQuery tunes the analytics report.
type AnalyticsQuery struct {
	InventoryQuery
	DemandWeeks    int `query:"demand_weeks" validate:"min=0,max=52"`
	OverstockWeeks int `query:"overstock_weeks" validate:"min=0,max=104"`
	TopMargin      int `query:"top" validate:"min=0,max=500"`
}
