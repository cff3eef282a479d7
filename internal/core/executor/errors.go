package executor

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// NetworkError reports that the catalogue could not be reached at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("catalogue unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// RemoteError is a non-success status or an unreadable body from the catalogue.
type RemoteError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalogue status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("catalogue status %d: %s", e.StatusCode, e.Body)
}
