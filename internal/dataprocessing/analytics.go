package dataprocessing

import (
	"sort"

	"github.com/shopspring/decimal"

	"invdash/pkg/contracts/domain"
)

// Cumulative value share upper bounds of the A and B classes.
const (
	abcLimitA = 0.7
	abcLimitB = 0.9
)

// Analyze builds the analytics report over items. Items without a brand or type
// are left out of the groupings keyed by that label.
func Analyze(items []domain.InventoryItem, opts AnalysisOptions) *Report {
	if opts.DemandWeeks <= 0 || opts.OverstockWeeks <= 0 || opts.TopMargin <= 0 {
		def := DefaultAnalysisOptions()
		if opts.DemandWeeks <= 0 {
			opts.DemandWeeks = def.DemandWeeks
		}
		if opts.OverstockWeeks <= 0 {
			opts.OverstockWeeks = def.OverstockWeeks
		}
		if opts.TopMargin <= 0 {
			opts.TopMargin = def.TopMargin
		}
	}

	r := &Report{
		WeekColumns:  domain.WeekColumns[:],
		WeeklyTrend:  weeklyTrend(items),
		StockByBrand: groupSum(items, brandOf, func(it domain.InventoryItem) int64 { return it.QtyOnHand }),
		StockByType:  groupSum(items, typeOf, func(it domain.InventoryItem) int64 { return it.QtyOnHand }),
		PriceHeatmap: priceHeatmap(items),
		ProjectedDemand: groupSum(items, brandOf, func(it domain.InventoryItem) int64 {
			return it.AvgWeek * opts.DemandWeeks
		}),
		TopMargin:   topMargin(items, opts.TopMargin),
		Overstocked: []ItemRef{},
		Deadstock:   []ItemRef{},
	}
	r.ABC, r.ABCCounts = classifyABC(items)

	for _, it := range items {
		if it.QtyOnHand > it.AvgWeek*opts.OverstockWeeks {
			r.Overstocked = append(r.Overstocked, refOf(it))
		}
		if it.QtyOnHand > 0 && it.WeekSum == 0 {
			r.Deadstock = append(r.Deadstock, refOf(it))
		}
	}
	return r
}

func brandOf(it domain.InventoryItem) string { return it.Brand }
func typeOf(it domain.InventoryItem) string  { return it.Type }

func refOf(it domain.InventoryItem) ItemRef {
	return ItemRef{
		Row:       it.Row,
		Brand:     it.Brand,
		Type:      it.Type,
		QtyOnHand: it.QtyOnHand,
		AvgWeek:   it.AvgWeek,
		WeekSum:   it.WeekSum,
	}
}

// groupSum totals value per label, sorted by label.
func groupSum(items []domain.InventoryItem, label func(domain.InventoryItem) string, value func(domain.InventoryItem) int64) []GroupTotal {
	totals := make(map[string]int64)
	for _, it := range items {
		name := label(it)
		if name == "" {
			continue
		}
		totals[name] += value(it)
	}

	out := make([]GroupTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, GroupTotal{Name: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func weeklyTrend(items []domain.InventoryItem) []BrandTrend {
	byBrand := make(map[string]*[domain.WeekCount]int64)
	for _, it := range items {
		if it.Brand == "" {
			continue
		}
		weeks, ok := byBrand[it.Brand]
		if !ok {
			weeks = new([domain.WeekCount]int64)
			byBrand[it.Brand] = weeks
		}
		for w, v := range it.Weeks {
			weeks[w] += v
		}
	}

	out := make([]BrandTrend, 0, len(byBrand))
	for brand, weeks := range byBrand {
		out = append(out, BrandTrend{Brand: brand, Weeks: append([]int64(nil), weeks[:]...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Brand < out[j].Brand })
	return out
}

func priceHeatmap(items []domain.InventoryItem) []HeatmapCell {
	type key struct {
		price   string
		avgWeek int64
	}
	cells := make(map[key]*HeatmapCell)
	for _, it := range items {
		if !it.Price.Valid {
			continue
		}
		k := key{price: it.Price.Decimal.String(), avgWeek: it.AvgWeek}
		c, ok := cells[k]
		if !ok {
			c = &HeatmapCell{Price: it.Price.Decimal, AvgWeek: it.AvgWeek}
			cells[k] = c
		}
		c.Sales += it.Sales
	}

	out := make([]HeatmapCell, 0, len(cells))
	for _, c := range cells {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Price.Cmp(out[j].Price); cmp != 0 {
			return cmp < 0
		}
		return out[i].AvgWeek < out[j].AvgWeek
	})
	return out
}

// classifyABC ranks items by stock value (PRICE x QTY_ON_HND) and assigns a class
// from the cumulative value share. Items without a price, or whose share falls
// outside (0, 1], stay unclassified.
func classifyABC(items []domain.InventoryItem) ([]ABCItem, map[ABCClass]int) {
	ranked := make([]ABCItem, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		if !it.Price.Valid {
			continue
		}
		v := it.Price.Decimal.Mul(decimal.NewFromInt(it.QtyOnHand))
		ranked = append(ranked, ABCItem{ItemRef: refOf(it), Value: v})
		total = total.Add(v)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value.GreaterThan(ranked[j].Value) })

	counts := map[ABCClass]int{ClassA: 0, ClassB: 0, ClassC: 0, ClassUnclassified: 0}
	counts[ClassUnclassified] = len(items) - len(ranked)

	cum := decimal.Zero
	for i := range ranked {
		cum = cum.Add(ranked[i].Value)
		if total.IsZero() {
			ranked[i].Class = ClassUnclassified
			counts[ClassUnclassified]++
			continue
		}
		share, _ := cum.Div(total).Float64()
		ranked[i].CumulativeShare = share
		ranked[i].Class = abcClass(share)
		counts[ranked[i].Class]++
	}
	return ranked, counts
}

func abcClass(share float64) ABCClass {
	switch {
	case share <= 0 || share > 1:
		return ClassUnclassified
	case share <= abcLimitA:
		return ClassA
	case share <= abcLimitB:
		return ClassB
	default:
		return ClassC
	}
}

func topMargin(items []domain.InventoryItem, limit int) []MarginItem {
	out := make([]MarginItem, 0, len(items))
	for _, it := range items {
		if !it.Price.Valid || !it.Cost.Valid {
			continue
		}
		out = append(out, MarginItem{
			ItemRef: refOf(it),
			Price:   it.Price.Decimal,
			Cost:    it.Cost.Decimal,
			Margin:  it.Price.Decimal.Sub(it.Cost.Decimal),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Margin.GreaterThan(out[j].Margin) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
