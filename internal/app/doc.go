// Package app wires the inventory dashboard server together: configuration,
// logging, OpenTelemetry, the inventory and health services, the WebSocket
// hub and the chi router.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, optional YAML file, INVDASH_* environment)
//  2. Initialize logging and OpenTelemetry providers
//  3. Create business metrics and the WebSocket hub
//  4. Create the inventory service, notifying the hub on reloads
//  5. Build the router and the HTTP server
//
// # Routes
//
//	GET  /ws                         WebSocket notifications
//	GET  /api/inventory/items        filtered rows
//	GET  /api/inventory/summary      headline counts
//	GET  /api/inventory/filters      brand and type choices
//	GET  /api/inventory/analytics    chart aggregates
//	POST /api/inventory/reload       re-read the export
//	GET  /api/inventory/export.csv   filtered rows as CSV
//	GET  /api/inventory/export.xlsx  filtered rows as a workbook
//	GET  /api/health, /api/health/ready, /api/version
//	GET  /metrics                    Prometheus, when metrics are enabled
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run blocks until SIGINT or SIGTERM, then drains the server, closes
// WebSocket clients and flushes telemetry.
package app
