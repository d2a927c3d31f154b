// Package dataprocessing turns raw inventory exports into the enriched dataset
// served by the dashboard and the report CLI.
//
// # Architecture
//
// The package is organized into four parts:
//
// 1. Loader: reads an export whose delimiter and header layout are unknown
// 2. Normalizer: coerces numeric columns and derives the inventory flags
// 3. Filter and Summarize: the selection and headline counts shared by front ends
// 4. Analyze: chart-ready aggregates (trends, stock distribution, ABC, margins)
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger)
//	raw, err := loader.Load(ctx, "Fi.txt")
//	if err != nil {
//	    return err // errors.Is(err, domain.ErrLoadFailure)
//	}
//	dataprocessing.ApplyPositionalSchema(raw)
//
//	normalizer := dataprocessing.NewNormalizer(dataprocessing.DefaultOptions(), logger)
//	ds, err := normalizer.Normalize(ctx, raw)
//	if err != nil {
//	    return err // errors.Is(err, domain.ErrSchemaFailure)
//	}
//
//	items := dataprocessing.Filter{Stock: dataprocessing.StockStocked, View: dataprocessing.ViewSlow}.Apply(ds.Items)
//
// # Load strategies
//
// Delimited files are tried as comma with header, tab with header, whitespace
// with header and finally comma without header. The first strategy that parses
// without a structural error wins. Workbooks are read from their first sheet.
//
// # Derived columns
//
//	WEEK_SUM      = FIRST + ... + TWELV
//	AVG_WEEK      = ceil(WEEK_SUM / 48)
//	UNSTOCK_ITEMS = QTY_ON_HND + WEEK_SUM == 0 (or WEEK_SUM == 0 with UnstockSalesOnly)
//	SLOW_ITEMS    = 0 <= WEEK_SUM <= 10 and PRICE < 50
//	NXT_ORDER     = AVG_WEEK + 2 > QTY_ON_HND
//
// Loader and Normalizer hold no mutable state and are safe for concurrent use.
package dataprocessing
