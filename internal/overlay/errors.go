package overlay

import "errors"

var (
	// ErrNoInsertion indicates a target does not address an inserted event.
	ErrNoInsertion = errors.New("no inserted event at target")

	// ErrTxnDone indicates a transaction was used after it finished.
	ErrTxnDone = errors.New("transaction already finished")
)
