// Package http implements the REST handlers of the inventory dashboard.
//
// Handlers stay thin: they parse and validate query parameters, call the
// service layer and render either a {"status":"success","data":...} envelope
// or an RFC 7807 problem through the shared ErrorHandler.
//
// Routes:
//
//	GET  /api/inventory/items        filtered rows (stock, brand, type, view, limit)
//	GET  /api/inventory/summary      total, slow, reorder and unstocked counts
//	GET  /api/inventory/filters      cascading brand and type choices
//	GET  /api/inventory/analytics    chart aggregates
//	POST /api/inventory/reload       re-read the export now
//	GET  /api/inventory/export.csv   filtered rows as CSV
//	GET  /api/inventory/export.xlsx  filtered rows as a workbook
//	GET  /api/health, /api/health/ready, /api/version
package http
