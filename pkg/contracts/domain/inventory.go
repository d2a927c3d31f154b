package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Source columns of an inventory export. Names are case-sensitive.
const (
	ColQtyOnHand = "QTY_ON_HND"
	ColMTD       = "MTD"
	ColYTD       = "YTD"
	ColFirst     = "FIRST"
	ColSecond    = "SECON"
	ColThird     = "THIRD"
	ColFourth    = "FOURT"
	ColFifth     = "FIFTH"
	ColSixth     = "SIXTH"
	ColSeventh   = "SEVEN"
	ColEighth    = "EIGHT"
	ColNinth     = "NINTH"
	ColTenth     = "TENTH"
	ColEleventh  = "ELEVE"
	ColTwelfth   = "TWELV"
	ColPriory    = "PRIORY"
	ColSales     = "SALES"
	ColPrice     = "PRICE"
	ColCost      = "COST"
	ColBrand     = "BRAND"
	ColType      = "TYPE"
)

// Derived columns added by normalization.
const (
	ColAvgWeek      = "AVG_WEEK"
	ColUnstockItems = "UNSTOCK_ITEMS"
	ColWeekSum      = "WEEK_SUM"
	ColSlowItems    = "SLOW_ITEMS"
	ColNextOrder    = "NXT_ORDER"
)

// WeekCount is the number of weekly sales columns in an export.
const WeekCount = 12

// WeekColumns lists the weekly sales columns in export order.
var WeekColumns = [WeekCount]string{
	ColFirst, ColSecond, ColThird, ColFourth, ColFifth, ColSixth,
	ColSeventh, ColEighth, ColNinth, ColTenth, ColEleventh, ColTwelfth,
}

// NumericColumns are coerced to integers (missing = 0) before derivation.
var NumericColumns = []string{
	ColQtyOnHand, ColMTD, ColYTD,
	ColFirst, ColSecond, ColThird, ColFourth, ColFifth, ColSixth,
	ColSeventh, ColEighth, ColNinth, ColTenth, ColEleventh, ColTwelfth,
	ColPriory, ColSales,
}

// ExpectedColumns is the full export layout, in the order the export system writes it.
var ExpectedColumns = []string{
	ColQtyOnHand, ColMTD, ColYTD,
	ColFirst, ColSecond, ColThird, ColFourth, ColFifth, ColSixth,
	ColSeventh, ColEighth, ColNinth, ColTenth, ColEleventh, ColTwelfth,
	ColPriory, ColSales, ColPrice, ColCost, ColBrand, ColType,
}

// DerivedColumns lists the normalization outputs in the order they are computed.
var DerivedColumns = []string{
	ColAvgWeek, ColUnstockItems, ColWeekSum, ColSlowItems, ColNextOrder,
}

// InventoryItem is one enriched row of an inventory export.
// Flags are 0/1 integers so consumers can filter with column == 1.
type InventoryItem struct {
	Row int `json:"-"`

	QtyOnHand int64
	MTD       int64
	YTD       int64
	Weeks     [WeekCount]int64
	Priory    int64
	Sales     int64
	Price     decimal.NullDecimal
	Cost      decimal.NullDecimal
	Brand     string
	Type      string

	AvgWeek      int64
	UnstockItems int
	WeekSum      int64
	SlowItems    int
	NextOrder    int

	// Extra holds source columns outside the export layout, such as an item
	// number or description, keyed by column name.
	Extra map[string]string `json:"-"`

	// Raw holds the cell values as loaded, aligned with InventoryDataset.Columns.
	Raw []string `json:"-"`
}

// IsSlow reports whether the item is flagged as slow-moving.
func (it InventoryItem) IsSlow() bool { return it.SlowItems == 1 }

// NeedsReorder reports whether the item is flagged for the next order.
func (it InventoryItem) NeedsReorder() bool { return it.NextOrder == 1 }

// IsUnstocked reports whether the item is flagged as unstocked.
func (it InventoryItem) IsUnstocked() bool { return it.UnstockItems == 1 }

// Fields returns the item keyed by column name: extra source columns, the
// export layout and the derived columns.
func (it InventoryItem) Fields() map[string]interface{} {
	m := map[string]interface{}{
		ColQtyOnHand:    it.QtyOnHand,
		ColMTD:          it.MTD,
		ColYTD:          it.YTD,
		ColPriory:       it.Priory,
		ColSales:        it.Sales,
		ColPrice:        nullable(it.Price),
		ColCost:         nullable(it.Cost),
		ColBrand:        nullableString(it.Brand),
		ColType:         nullableString(it.Type),
		ColAvgWeek:      it.AvgWeek,
		ColUnstockItems: it.UnstockItems,
		ColWeekSum:      it.WeekSum,
		ColSlowItems:    it.SlowItems,
		ColNextOrder:    it.NextOrder,
	}
	for i, col := range WeekColumns {
		m[col] = it.Weeks[i]
	}
	for col, v := range it.Extra {
		if _, ok := m[col]; !ok {
			m[col] = nullableString(v)
		}
	}
	return m
}

// MarshalJSON flattens the item into column names, as Fields does.
func (it InventoryItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(it.Fields())
}

// nullable keeps the exact decimal digits as a JSON number.
func nullable(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return json.Number(d.Decimal.String())
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// InventoryDataset is the enriched record set produced by one load.
type InventoryDataset struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Strategy string    `json:"strategy"`
	LoadedAt time.Time `json:"loaded_at"`
	// Columns is the raw column order of the source file.
	Columns []string        `json:"columns"`
	Items   []InventoryItem `json:"items"`
}

// Len returns the number of rows.
func (d *InventoryDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Items)
}

// Empty reports whether nothing was loaded.
func (d *InventoryDataset) Empty() bool {
	return d.Len() == 0
}
