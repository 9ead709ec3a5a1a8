package settlement

import (
	"errors"
	"fmt"
)

// ErrPrecondition is the parent of every lifecycle state error.
var ErrPrecondition = errors.New("precondition failed")

var (
	// ErrAlreadyClosed is returned when closing a festival that is already closed.
	ErrAlreadyClosed = fmt.Errorf("%w: festival is already closed", ErrPrecondition)

	// ErrNotClosed is returned when reopening a festival that is open.
	ErrNotClosed = fmt.Errorf("%w: festival is not closed", ErrPrecondition)
)
