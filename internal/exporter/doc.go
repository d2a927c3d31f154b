// Package exporter writes enriched inventory data as files and download streams.
//
// CSVWriter streams delimited output (with an optional UTF-8 BOM so spreadsheet
// tools detect the encoding) to any io.Writer or to a file under the export
// directory. WorkbookWriter renders one or more sheets into an XLSX workbook.
// InventoryExporter combines both for inventory datasets:
//
//	exp := exporter.NewInventoryExporter("exports", logger)
//	err := exp.Export(ctx, w, exporter.FormatXLSX, ds, items)
package exporter
