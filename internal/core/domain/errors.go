package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMemberID = errors.New("invalid member id")
	ErrInvalidChoice   = errors.New("invalid vote choice")
	ErrNotRegistered   = errors.New("no member registered on this device")
)

// TransportError reports that the remote endpoint could not be reached or did
// not answer with a usable HTTP response.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected http status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError reports a well-formed response whose success flag was false, or
// a payload that did not match any known shape.
type RemoteError struct {
	Op      string
	Message string
	Code    string
}

func (e *RemoteError) Error() string {
	return e.Message
}
