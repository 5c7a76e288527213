// Package cache holds the deck's in-memory caches.
//
// Two kinds of cache exist and they are invalidated independently:
//
//   - Snapshot: the last-loaded project collection. It is invalidated only
//     after a successful local write or an observed external change, and is
//     never invalidated by a redraw. Any number of reads between two
//     invalidations cost exactly one load.
//   - Memo: keyed text (static assets, structural markup) that depends only
//     on its key. Entries live until explicitly invalidated; there is no TTL.
//
// Example usage:
//
//	snap := cache.NewSnapshot[project.Collection]("snapshot", metrics)
//	coll, err := snap.Get(ctx, store.Load)
//	snap.Invalidate(cache.ReasonLocalWrite)
package cache

// Reason explains why a cache entry was discarded.
type Reason string

const (
	// ReasonLocalWrite follows a successful write made by this process.
	ReasonLocalWrite Reason = "local_write"

	// ReasonExternalChange follows a change observed in the backing store
	// that this process did not make.
	ReasonExternalChange Reason = "external_change"

	// ReasonManual is an explicit refresh requested by the user.
	ReasonManual Reason = "manual"
)
