// Package testutil holds test helpers shared across packages: inventory
// export fixtures and an in-memory slog handler for asserting on log output.
//
//	path := testutil.TempInventory(t, testutil.StandardRows()...)
//	logger, logs := testutil.NewTestLogger()
//	...
//	testutil.AssertLogged(t, logs, slog.LevelError, "inventory reload failed")
package testutil
