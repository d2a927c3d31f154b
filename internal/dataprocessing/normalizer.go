package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"invdash/pkg/contracts/domain"
)

const (
	// avgWeekDivisor turns the twelve-week sales total into AVG_WEEK.
	avgWeekDivisor = 48

	// An item is slow when its twelve-week total is within [0, slowWeekSumMax]
	// and its unit price is below slowPriceLimit.
	slowWeekSumMax = 10

	// reorderHorizonWeeks is the largest look-ahead in the reorder check; it
	// dominates the shorter horizons, so only this one is evaluated.
	reorderHorizonWeeks = 2
)

var slowPriceLimit = decimal.NewFromInt(50)

// missingTokens are read as absent values.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

// Normalizer fills missing values and derives the inventory flags.
type Normalizer struct {
	opts   Options
	logger *slog.Logger
}

// NewNormalizer creates a normalizer with the given options
func NewNormalizer(opts Options, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.UnstockRule == "" {
		opts.UnstockRule = UnstockOnHandAndSales
	}
	return &Normalizer{
		opts:   opts,
		logger: logger.With(slog.String("component", "inventory_normalizer")),
	}
}

// Normalize validates the schema of raw and returns the enriched dataset.
// A missing required column yields a *SchemaError; derivation itself cannot fail.
func (n *Normalizer) Normalize(ctx context.Context, raw *RawTable) (*domain.InventoryDataset, error) {
	ctx, span := otel.Tracer("invdash/dataprocessing").Start(ctx, "inventory.normalize")
	defer span.End()
	span.SetAttributes(attribute.Int("inventory.rows", len(raw.Rows)))

	if err := ValidateSchema(raw); err != nil {
		span.RecordError(err)
		n.logger.ErrorContext(ctx, "inventory schema check failed",
			slog.String("source", raw.Source),
			slog.String("error", err.Error()))
		return nil, err
	}

	idx := raw.ColumnIndex()
	cols := resolveColumns(raw.Columns, idx)
	items := make([]domain.InventoryItem, len(raw.Rows))

	derive := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			items[i] = n.deriveRow(cols, raw.Rows[i], i)
		}
	}

	workers := n.opts.Workers
	if workers > 1 && len(raw.Rows) >= n.opts.ParallelThreshold {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		chunk := (len(raw.Rows) + workers - 1) / workers
		for lo := 0; lo < len(raw.Rows); lo += chunk {
			lo, hi := lo, min(lo+chunk, len(raw.Rows))
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				derive(lo, hi)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		derive(0, len(raw.Rows))
	}

	ds := &domain.InventoryDataset{
		ID:       uuid.NewString(),
		Source:   raw.Source,
		Strategy: string(raw.Strategy),
		LoadedAt: time.Now().UTC(),
		Columns:  append([]string(nil), raw.Columns...),
		Items:    items,
	}

	n.logger.InfoContext(ctx, "inventory normalized",
		slog.String("dataset_id", ds.ID),
		slog.Int("rows", len(items)),
		slog.String("unstock_rule", string(n.opts.UnstockRule)))
	return ds, nil
}

// columnPositions holds the resolved position of each known column, and of
// every other source column carried through as Extra.
type columnPositions struct {
	qty, mtd, ytd, priory, sales int
	price, cost, brand, typ      int
	weeks                        [domain.WeekCount]int
	extra                        map[string]int
}

func resolveColumns(columns []string, idx map[string]int) columnPositions {
	c := columnPositions{
		qty:    idx[domain.ColQtyOnHand],
		mtd:    idx[domain.ColMTD],
		ytd:    idx[domain.ColYTD],
		priory: idx[domain.ColPriory],
		sales:  idx[domain.ColSales],
		price:  idx[domain.ColPrice],
		cost:   idx[domain.ColCost],
		brand:  idx[domain.ColBrand],
		typ:    idx[domain.ColType],
	}
	for w, col := range domain.WeekColumns {
		c.weeks[w] = idx[col]
	}

	reserved := make(map[string]bool, len(domain.ExpectedColumns)+len(domain.DerivedColumns))
	for _, col := range domain.ExpectedColumns {
		reserved[col] = true
	}
	for _, col := range domain.DerivedColumns {
		reserved[col] = true
	}
	for _, col := range columns {
		if reserved[col] {
			continue
		}
		if c.extra == nil {
			c.extra = make(map[string]int)
		}
		c.extra[col] = idx[col]
	}
	return c
}

func (n *Normalizer) deriveRow(c columnPositions, row []string, i int) domain.InventoryItem {
	item := domain.InventoryItem{
		Row:       i,
		QtyOnHand: coerceInt(row[c.qty]),
		MTD:       coerceInt(row[c.mtd]),
		YTD:       coerceInt(row[c.ytd]),
		Priory:    coerceInt(row[c.priory]),
		Sales:     coerceInt(row[c.sales]),
		Price:     coerceDecimal(row[c.price]),
		Cost:      coerceDecimal(row[c.cost]),
		Brand:     coerceLabel(row[c.brand]),
		Type:      coerceLabel(row[c.typ]),
		Raw:       row,
	}
	for w, pos := range c.weeks {
		item.Weeks[w] = coerceInt(row[pos])
	}
	if len(c.extra) > 0 {
		item.Extra = make(map[string]string, len(c.extra))
		for col, pos := range c.extra {
			item.Extra[col] = coerceLabel(row[pos])
		}
	}
	Derive(&item, n.opts.UnstockRule)
	return item
}

// Derive computes the derived columns of an item from its coerced source columns.
// QTY_ON_HND is zero-filled before derivation, so the on-hand presence condition
// of the slow check always holds.
func Derive(item *domain.InventoryItem, rule UnstockRule) {
	var weekSum int64
	for _, v := range item.Weeks {
		weekSum += v
	}

	item.AvgWeek = ceilDiv(weekSum, avgWeekDivisor)

	unstockTotal := weekSum
	if rule != UnstockSalesOnly {
		unstockTotal += item.QtyOnHand
	}
	item.UnstockItems = flag(unstockTotal == 0)

	item.WeekSum = weekSum

	item.SlowItems = flag(weekSum >= 0 && weekSum <= slowWeekSumMax &&
		item.Price.Valid && item.Price.Decimal.LessThan(slowPriceLimit))

	item.NextOrder = flag(item.AvgWeek+reorderHorizonWeeks > item.QtyOnHand)
}

// ceilDiv divides rounding toward positive infinity. b must be positive.
func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b > 0 {
		q++
	}
	return q
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isMissing(s string) bool {
	return missingTokens[strings.TrimSpace(s)]
}

// coerceInt reads an integer cell; missing or unparseable values are 0 and
// fractional values are truncated.
func coerceInt(s string) int64 {
	if isMissing(s) {
		return 0
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(math.Trunc(f))
}

func coerceDecimal(s string) decimal.NullDecimal {
	if isMissing(s) {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func coerceLabel(s string) string {
	if isMissing(s) {
		return ""
	}
	return strings.TrimSpace(s)
}
