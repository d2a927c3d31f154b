package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invdash/pkg/contracts/domain"
)

func testDataset() (*domain.InventoryDataset, []domain.InventoryItem) {
	items := []domain.InventoryItem{
		{Row: 0, QtyOnHand: 5, Brand: "Acme", Type: "Bolt", SlowItems: 1,
			Price: decimal.NewNullDecimal(decimal.RequireFromString("19.90"))},
		{Row: 1, QtyOnHand: 2, Brand: "Zenith", Type: "Nut", NextOrder: 1, AvgWeek: 2, WeekSum: 60},
		{Row: 2, QtyOnHand: 9, Brand: "Zenith", Type: "Washer"},
	}
	ds := &domain.InventoryDataset{
		ID:       "ds-1",
		Columns:  append([]string(nil), domain.ExpectedColumns...),
		Items:    items,
		LoadedAt: time.Now(),
	}
	return ds, items
}

func TestInventoryExporter_CSV(t *testing.T) {
	ds, items := testDataset()

	var buf bytes.Buffer
	err := NewInventoryExporter("", nil).Export(context.Background(), &buf, FormatCSV, ds, items)
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	header := records[0]
	assert.Len(t, header, len(domain.ExpectedColumns)+len(domain.DerivedColumns))
	assert.Equal(t, domain.ColNextOrder, header[len(header)-1])
	assert.Equal(t, "5", records[1][0])
	assert.Equal(t, "19.9", records[1][17])
	assert.Equal(t, "", records[2][17])
	assert.Equal(t, "1", records[2][len(header)-1])
}

func TestInventoryExporter_Workbook(t *testing.T) {
	ds, items := testDataset()

	var buf bytes.Buffer
	err := NewInventoryExporter("", nil).Export(context.Background(), &buf, FormatXLSX, ds, items)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetAllItems, SheetSlowItems, SheetReorderItems}, f.GetSheetList())

	tests := []struct {
		sheet     string
		wantRows  int
		wantBrand string
	}{
		{SheetAllItems, 3, "Acme"},
		{SheetSlowItems, 1, "Acme"},
		{SheetReorderItems, 1, "Zenith"},
	}
	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			rows, err := f.GetRows(tt.sheet)
			require.NoError(t, err)
			require.Len(t, rows, tt.wantRows+1)
			assert.Equal(t, domain.ColQtyOnHand, rows[0][0])
			assert.Equal(t, tt.wantBrand, rows[1][19])
		})
	}
}

func TestInventoryExporter_ExportFile(t *testing.T) {
	ds, items := testDataset()
	dir := t.TempDir()

	path, err := NewInventoryExporter(dir, nil).ExportFile(context.Background(), "inventory.csv", ds, items)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestInventoryExporter_UnknownFormat(t *testing.T) {
	ds, items := testDataset()
	err := NewInventoryExporter("", nil).Export(context.Background(), &bytes.Buffer{}, Format("pdf"), ds, items)
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "inventory_20240115_0930.xlsx", Filename("inventory", FormatXLSX, at))
}
