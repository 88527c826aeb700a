// Package store provides the durable key/value slot behind the live snapshot cache.
//
// Cache is a small get/set-by-key abstraction that is injected wherever a
// value must survive restarts. Three backends are available:
//   - FileCache: one file per key, replaced atomically
//   - SQLCache: a single key/value table in SQLite via gorm
//   - MemoryCache: an in-process map for tests and ephemeral runs
//
// SnapshotStore binds a Cache to the fixed snapshot key and handles the
// encoding of occupancy snapshots.
package store
