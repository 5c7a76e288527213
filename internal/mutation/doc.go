// Package mutation applies user commands to the deck.
//
// A Coordinator owns the only write path: every command loads the collection
// fresh, changes it in memory, and writes it back with a single ReplaceAll.
// A command that writes ends with exactly one snapshot invalidation and one
// redraw request; a command that writes nothing (cancelled, not found,
// unchanged) does neither.
//
// Commands are serialized in-process. The load/modify/write sequence is not
// locked against other processes editing the same settings file: the last
// write wins.
//
// # Outcomes
//
// Expected non-success paths are reported as an Outcome with a nil error:
//
//	res, err := coord.Delete(ctx, id)
//	switch {
//	case err != nil:                       // persistence or prompt failure
//	case res == mutation.OutcomeCancelled: // user said no
//	case res == mutation.OutcomeNotFound:  // nothing to delete
//	}
package mutation
