package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"invdash/pkg/contracts/domain"
)

func sampleItems() []domain.InventoryItem {
	return []domain.InventoryItem{
		{Row: 0, Brand: "Acme", Type: "Bolt", SlowItems: 1},
		{Row: 1, Brand: "Acme", Type: "Nut", NextOrder: 1},
		{Row: 2, Brand: "Zenith", Type: "Bolt", UnstockItems: 1, NextOrder: 1},
		{Row: 3, Brand: "Zenith", Type: "Washer", SlowItems: 1, NextOrder: 1},
		{Row: 4, Brand: "", Type: "Nut", UnstockItems: 1},
	}
}

func rows(items []domain.InventoryItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Row
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{name: "zero value matches all", filter: Filter{}, want: []int{0, 1, 2, 3, 4}},
		{name: "stocked", filter: Filter{Stock: StockStocked}, want: []int{0, 1, 3}},
		{name: "unstocked", filter: Filter{Stock: StockUnstocked}, want: []int{2, 4}},
		{name: "brand All is no filter", filter: Filter{Brand: "All"}, want: []int{0, 1, 2, 3, 4}},
		{name: "brand", filter: Filter{Brand: "Zenith"}, want: []int{2, 3}},
		{name: "brand and type", filter: Filter{Brand: "Acme", Type: "Nut"}, want: []int{1}},
		{name: "slow view", filter: Filter{View: ViewSlow}, want: []int{0, 3}},
		{name: "reorder view, stocked", filter: Filter{Stock: StockStocked, View: ViewReorder}, want: []int{1, 3}},
		{name: "no match", filter: Filter{Brand: "Nobody"}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rows(tt.filter.Apply(sampleItems())))
		})
	}
}

func TestFilter_OptionsCascade(t *testing.T) {
	items := sampleItems()

	all := Filter{}.Options(items)
	assert.Equal(t, []string{"Acme", "Zenith"}, all.Brands)
	assert.Equal(t, []string{"Bolt", "Nut", "Washer"}, all.Types)

	stocked := Filter{Stock: StockStocked}.Options(items)
	assert.Equal(t, []string{"Acme", "Zenith"}, stocked.Brands)
	assert.Equal(t, []string{"Bolt", "Nut", "Washer"}, stocked.Types)

	zenith := Filter{Stock: StockStocked, Brand: "Zenith"}.Options(items)
	assert.Equal(t, []string{"Acme", "Zenith"}, zenith.Brands)
	assert.Equal(t, []string{"Washer"}, zenith.Types)

	unstocked := Filter{Stock: StockUnstocked}.Options(items)
	assert.Equal(t, []string{"Zenith"}, unstocked.Brands)
	assert.Equal(t, []string{"Bolt", "Nut"}, unstocked.Types)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{TotalItems: 5, SlowItems: 2, ReorderItems: 3, UnstockedItems: 2}, Summarize(sampleItems()))
	assert.Equal(t, Summary{}, Summarize(nil))
}
