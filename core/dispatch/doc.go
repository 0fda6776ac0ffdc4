// Package dispatch is the boundary the CRUD layer talks to. It composes the
// scorer, the ledger and the route builder behind three operations:
//
//   - FindMatches: rank eligible drivers for an open load.
//   - Assign: atomically commit a driver set onto a load, rebuild routes.
//   - OptimizeRoute: re-run the stop-ordering heuristic for one driver.
//
// plus the assignment state transitions (Confirm, Complete, Cancel).
//
// The facade carries no domain state of its own. It sequences oracle
// prefetching so that no network call ever happens inside the ledger's
// critical section, translates ledger and oracle errors into the typed
// taxonomy the boundary maps onto status codes, and fans committed changes
// out to the record store, the metrics sink, the event bus and the driver
// notifier.
//
// Concurrency: a FindMatches result is a snapshot hint, never a guarantee.
// Assign re-validates everything from current ledger state; callers that
// lose the race get a ConflictError and are expected to re-fetch and retry.
package dispatch
