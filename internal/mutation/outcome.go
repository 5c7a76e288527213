package mutation

// Outcome is the definite result of a command.
type Outcome int

const (
	// OutcomeUnknown is the zero value; no command returns it.
	OutcomeUnknown Outcome = iota

	// OutcomeApplied means the change was written.
	OutcomeApplied

	// OutcomeDeleted means the record was removed.
	OutcomeDeleted

	// OutcomeUnchanged means the request matched the stored state; nothing
	// was written.
	OutcomeUnchanged

	// OutcomeCancelled means the user dismissed a prompt before any write.
	OutcomeCancelled

	// OutcomeNotFound means the target record does not exist.
	OutcomeNotFound

	// OutcomeFailed accompanies a returned error: the request was invalid,
	// the deck could not be read or saved, or an external program failed.
	// Nothing was written.
	OutcomeFailed
)

// String returns the metrics label of o.
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
