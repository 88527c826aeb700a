package livefeed

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Start on a closed client
var ErrClosed = errors.New("live feed client closed")

// ConnectionError wraps a subscribe or transport failure with its attempt number
type ConnectionError struct {
	Attempt int
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("live feed attempt %d: %v", e.Attempt, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
