package dataprocessing

import (
	"github.com/shopspring/decimal"
)

// ABCClass is the value tier of an item.
type ABCClass string

const (
	ClassA            ABCClass = "A"
	ClassB            ABCClass = "B"
	ClassC            ABCClass = "C"
	ClassUnclassified ABCClass = "unclassified"
)

// AnalysisOptions configures the analytics report
type AnalysisOptions struct {
	// DemandWeeks is the horizon of the projected demand (AVG_WEEK x DemandWeeks)
	DemandWeeks int64

	// OverstockWeeks flags items holding more than AVG_WEEK x OverstockWeeks
	OverstockWeeks int64

	// TopMargin bounds the high-margin list
	TopMargin int
}

// DefaultAnalysisOptions returns default analysis options
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		DemandWeeks:    4,
		OverstockWeeks: 10,
		TopMargin:      20,
	}
}

// BrandTrend is the weekly sales of one brand, FIRST through TWELV.
type BrandTrend struct {
	Brand string  `json:"brand"`
	Weeks []int64 `json:"weeks"`
}

// GroupTotal is a quantity summed over one brand or type.
type GroupTotal struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

// HeatmapCell is the sales total of items sharing a price and an average week.
type HeatmapCell struct {
	Price   decimal.Decimal `json:"price"`
	AvgWeek int64           `json:"avg_week"`
	Sales   int64           `json:"sales"`
}

// ItemRef identifies an item in an analytics list.
type ItemRef struct {
	Row       int    `json:"row"`
	Brand     string `json:"brand,omitempty"`
	Type      string `json:"type,omitempty"`
	QtyOnHand int64  `json:"qty_on_hand"`
	AvgWeek   int64  `json:"avg_week"`
	WeekSum   int64  `json:"week_sum"`
}

// ABCItem is an item with its stock value and class.
type ABCItem struct {
	ItemRef
	Value           decimal.Decimal `json:"value"`
	CumulativeShare float64         `json:"cumulative_share"`
	Class           ABCClass        `json:"class"`
}

// MarginItem is an item with its unit margin.
type MarginItem struct {
	ItemRef
	Price  decimal.Decimal `json:"price"`
	Cost   decimal.Decimal `json:"cost"`
	Margin decimal.Decimal `json:"margin"`
}

// Report gathers every chart-ready aggregate of a filtered item set.
type Report struct {
	WeekColumns     []string         `json:"week_columns"`
	WeeklyTrend     []BrandTrend     `json:"weekly_trend"`
	StockByBrand    []GroupTotal     `json:"stock_by_brand"`
	StockByType     []GroupTotal     `json:"stock_by_type"`
	PriceHeatmap    []HeatmapCell    `json:"price_heatmap"`
	ProjectedDemand []GroupTotal     `json:"projected_demand"`
	ABC             []ABCItem        `json:"abc"`
	ABCCounts       map[ABCClass]int `json:"abc_counts"`
	TopMargin       []MarginItem     `json:"top_margin"`
	Overstocked     []ItemRef        `json:"overstocked"`
	Deadstock       []ItemRef        `json:"deadstock"`
}
