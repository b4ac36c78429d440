package syncer

import "errors"

var (
	// ErrForkDetected is returned when a block does not extend the stored head.
	ErrForkDetected = errors.New("fork detected")
	// ErrUnexpectedLevel is returned when a block is not the successor of the stored head.
	ErrUnexpectedLevel = errors.New("unexpected block level")
	// ErrForkTooDeep is returned when a fork reverts more blocks than allowed.
	ErrForkTooDeep = errors.New("fork deeper than allowed")
)

// commitError marks a failure to commit the store transaction. The block
// is retried from scratch.
type commitError struct {
	err error
}

func (e *commitError) Error() string { return "commit block: " + e.err.Error() }

func (e *commitError) Unwrap() error { return e.err }
