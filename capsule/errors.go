package capsule

import (
	"errors"
)

// PreconditionError is raised before any side effect when the request or
// session cannot be satisfied.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func newPreconditionError(message string) error {
	return &PreconditionError{Message: message}
}

var (
	ErrRunInProgress   = errors.New("a capsule run is already in progress for this wallet")
	ErrRunNotFound     = errors.New("capsule run not found")
	ErrRunNotResumable = errors.New("capsule run is not resumable")
)
