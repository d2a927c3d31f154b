package dataprocessing

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"invdash/pkg/contracts/domain"
)

// RawTable is a loaded export before normalization. Every row has exactly
// len(Columns) cells; short rows are padded with empty (missing) cells.
type RawTable struct {
	Source   string
	Strategy Strategy
	Columns  []string
	Rows     [][]string
}

// ColumnIndex maps column names to their position. The first occurrence wins.
func (t *RawTable) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return idx
}

// ValidateSchema checks that every expected export column is present.
func ValidateSchema(t *RawTable) error {
	idx := t.ColumnIndex()
	var missing []string
	for _, col := range domain.ExpectedColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// ApplyPositionalSchema names the columns of a headerless table in export order.
// It only applies when the table was loaded without a header and has exactly
// the expected number of columns; it reports whether the rename happened.
func ApplyPositionalSchema(t *RawTable) bool {
	if t.Strategy != StrategyCommaNoHeader || len(t.Columns) != len(domain.ExpectedColumns) {
		return false
	}
	t.Columns = append([]string(nil), domain.ExpectedColumns...)
	return true
}

// EnrichedTable renders a dataset back into tabular form: the source columns with
// numeric columns coerced, followed by the derived columns. Derived columns present
// in the source are replaced, not duplicated.
func EnrichedTable(ds *domain.InventoryDataset, items []domain.InventoryItem) *RawTable {
	columns, srcIdx := enrichedLayout(ds.Columns)

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		fields := it.Fields()
		row := make([]string, 0, len(columns))
		for n, i := range srcIdx {
			row = append(row, cellValue(columns[n], i, it, fields))
		}
		for _, c := range domain.DerivedColumns {
			row = append(row, formatCell(fields[c]))
		}
		rows = append(rows, row)
	}

	return &RawTable{
		Source:   ds.Source,
		Strategy: Strategy(ds.Strategy),
		Columns:  columns,
		Rows:     rows,
	}
}

// EnrichedColumns returns the column order of EnrichedTable for a source header.
func EnrichedColumns(source []string) []string {
	columns, _ := enrichedLayout(source)
	return columns
}

func enrichedLayout(source []string) (columns []string, srcIdx []int) {
	derived := make(map[string]bool, len(domain.DerivedColumns))
	for _, c := range domain.DerivedColumns {
		derived[c] = true
	}

	for i, c := range source {
		if derived[c] {
			continue
		}
		srcIdx = append(srcIdx, i)
		columns = append(columns, c)
	}
	return append(columns, domain.DerivedColumns...), srcIdx
}

func cellValue(col string, i int, it domain.InventoryItem, fields map[string]interface{}) string {
	switch col {
	case domain.ColPrice:
		return decimalCell(it.Price)
	case domain.ColCost:
		return decimalCell(it.Cost)
	}
	if v, ok := fields[col]; ok {
		return formatCell(v)
	}
	if i < len(it.Raw) {
		return it.Raw[i]
	}
	return ""
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func decimalCell(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
