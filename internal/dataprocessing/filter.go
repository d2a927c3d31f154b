package dataprocessing

import (
	"sort"
	"strings"

	"invdash/pkg/contracts/domain"
)

// StockFilter narrows items by their unstocked flag.
type StockFilter string

const (
	StockAll       StockFilter = "all"
	StockStocked   StockFilter = "stocked"
	StockUnstocked StockFilter = "unstocked"
)

// View selects one of the item tabs.
type View string

const (
	ViewAll     View = "all"
	ViewSlow    View = "slow"
	ViewReorder View = "reorder"
)

// AllLabel is the brand/type choice that disables the label filter.
const AllLabel = "All"

// Filter is the selection shared by every front end. The zero value matches
// every item.
type Filter struct {
	Stock StockFilter `json:"stock,omitempty"`
	Brand string      `json:"brand,omitempty"`
	Type  string      `json:"type,omitempty"`
	View  View        `json:"view,omitempty"`
}

func labelSelected(label string) bool {
	return label != "" && !strings.EqualFold(label, AllLabel)
}

func (f Filter) matchStock(it domain.InventoryItem) bool {
	switch f.Stock {
	case StockStocked:
		return !it.IsUnstocked()
	case StockUnstocked:
		return it.IsUnstocked()
	default:
		return true
	}
}

func (f Filter) matchBrand(it domain.InventoryItem) bool {
	return !labelSelected(f.Brand) || it.Brand == f.Brand
}

func (f Filter) matchType(it domain.InventoryItem) bool {
	return !labelSelected(f.Type) || it.Type == f.Type
}

func (f Filter) matchView(it domain.InventoryItem) bool {
	switch f.View {
	case ViewSlow:
		return it.IsSlow()
	case ViewReorder:
		return it.NeedsReorder()
	default:
		return true
	}
}

// Match reports whether the item passes every part of the filter.
func (f Filter) Match(it domain.InventoryItem) bool {
	return f.matchStock(it) && f.matchBrand(it) && f.matchType(it) && f.matchView(it)
}

// Apply returns the matching items in dataset order. The dataset is not modified.
func (f Filter) Apply(items []domain.InventoryItem) []domain.InventoryItem {
	out := make([]domain.InventoryItem, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// FilterOptions lists the selectable brands and types.
type FilterOptions struct {
	Brands []string `json:"brands"`
	Types  []string `json:"types"`
}

// Options returns the brand and type choices for the current selection. Brands
// come from the stock-filtered items, types from items that also match the
// selected brand, so the choices narrow as the user drills down.
func (f Filter) Options(items []domain.InventoryItem) FilterOptions {
	brands := make(map[string]struct{})
	types := make(map[string]struct{})
	for _, it := range items {
		if !f.matchStock(it) {
			continue
		}
		if it.Brand != "" {
			brands[it.Brand] = struct{}{}
		}
		if f.matchBrand(it) && it.Type != "" {
			types[it.Type] = struct{}{}
		}
	}
	return FilterOptions{Brands: sortedKeys(brands), Types: sortedKeys(types)}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
