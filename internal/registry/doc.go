// Package registry is the persisted, ordered project collection.
//
// A Store reads and writes the projects key of a settings.Backend and serves
// lookups from a snapshot cache. Writes replace the whole collection; there
// is no per-record persistence.
//
// The Store never invalidates its own snapshot after a write. The caller
// that performed the write (the mutation coordinator) or the change bridge
// decides when the snapshot is stale. The favicon preference has its own
// cache and follows the same rule.
package registry
