package loader

import (
	"errors"
	"fmt"
)

// TransportError is a fetch that never produced a usable HTTP response:
// a non-2xx status, a network failure, or a timeout.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		return "request failed: " + e.Err.Error()
	}
	return "request failed"
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request hit a deadline.
func (e *TransportError) Timeout() bool {
	if e.Err == nil {
		return false
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// ParseError is a response body that is not the expected JSON document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "invalid response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// RemoteError is a well-formed response whose top-level error field is set.
type RemoteError struct {
	Message string
	Reason  string
}

func (e *RemoteError) Error() string {
	if e.Reason != "" {
		return e.Message + ": " + e.Reason
	}
	return e.Message
}
