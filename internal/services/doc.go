// Package services is the business layer between the HTTP transport and the
// inventory pipeline.
//
// InventoryService owns the current dataset: it reloads the export according
// to the configured policy, collapses concurrent reloads into one and serves
// filtered views, summaries, analytics and exports from the result.
// HealthService answers liveness and readiness probes.
package services
