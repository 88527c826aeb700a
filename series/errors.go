package series

import (
	"errors"
	"fmt"
)

// ErrEmptyPayload is wrapped by FetchError when a feed has no non-blank lines
var ErrEmptyPayload = errors.New("empty payload")

// FetchError reports a feed that could not be retrieved or was empty
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseStats counts the problems absorbed while parsing a feed
type ParseStats struct {
	Rows        int
	BadCells    int
	DroppedRows int
}
