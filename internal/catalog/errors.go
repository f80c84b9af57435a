package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches every failure to get a successful response.
	ErrTransport = errors.New("catalog transport error")
	// ErrParse matches every response body that could not be decoded.
	ErrParse = errors.New("catalog parse error")
)

// TransportError is a network failure or a non-2xx response.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: catalog api error: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: catalog request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ParseError is a response body that is not the expected JSON.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to decode catalog response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
