package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the index answered and the agent does not exist.
	ErrNotFound = errors.New("registry: agent not found")

	// ErrInvalidRequest means the caller's parameters were rejected before any remote call.
	ErrInvalidRequest = errors.New("registry: invalid request")
)

// RemoteQueryFailure wraps a transport or protocol failure talking to the index.
type RemoteQueryFailure struct {
	Op  string
	Err error
}

func (e *RemoteQueryFailure) Error() string {
	return fmt.Sprintf("registry: %s: %v", e.Op, e.Err)
}

func (e *RemoteQueryFailure) Unwrap() error {
	return e.Err
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidRequest}, args...)...)
}
