// Package websocket pushes inventory reload events to connected dashboards.
//
// The Hub implements services.ReloadNotifier: every successful reload is
// broadcast as inventory:reloaded and every failed one as
// inventory:reload_failed. Clients are expected to refetch their current view.
package websocket
