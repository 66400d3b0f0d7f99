package workflow

// State is a step of the borrow-and-bookmark workflow.
type State int

const (
	// StateSearching looks for a borrowable book.
	StateSearching State = iota + 1
	// StateFoundBook has a borrow link.
	StateFoundBook
	// StateLoanCreated holds a loan that must be cleaned up.
	StateLoanCreated
	// StateBookmarking writes bookmarks.
	StateBookmarking
	// StateRevoked released the loan.
	StateRevoked
	// StateRevokeSkipped had no revoke link to release the loan with.
	StateRevokeSkipped
	// StateDone finished without error.
	StateDone
	// StateFailed finished with an error.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateFoundBook:
		return "found-book"
	case StateLoanCreated:
		return "loan-created"
	case StateBookmarking:
		return "bookmarking"
	case StateRevoked:
		return "revoked"
	case StateRevokeSkipped:
		return "revoke-skipped"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
