// Package occupancy holds the shared data model of the reconciliation core.
//
// Every area-keyed structure is backed by a fixed array over the six library
// areas, so an area can never be missing: an absent value is simply 0.
// Series and snapshots are immutable values; a refresh produces new ones and
// callers swap references instead of editing in place.
package occupancy
