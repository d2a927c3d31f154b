package dataprocessing

import (
	"invdash/pkg/contracts/domain"
)

// Summary holds the headline counts shown above the item tables.
type Summary struct {
	TotalItems     int `json:"total_items"`
	SlowItems      int `json:"slow_items"`
	ReorderItems   int `json:"reorder_items"`
	UnstockedItems int `json:"unstocked_items"`
}

// Summarize counts the flags over items. Callers pass an already filtered slice.
func Summarize(items []domain.InventoryItem) Summary {
	s := Summary{TotalItems: len(items)}
	for _, it := range items {
		s.SlowItems += it.SlowItems
		s.ReorderItems += it.NextOrder
		s.UnstockedItems += it.UnstockItems
	}
	return s
}
