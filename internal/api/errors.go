package api

import (
	"errors"
	"fmt"
)

// Kind classifies why a remote call failed.
type Kind int

const (
	// Rejected: the call completed but the envelope said no (status false)
	// or the HTTP status was not 2xx.
	Rejected Kind = iota + 1
	// Unauthorized: HTTP 401.  Callers force the login screen.
	Unauthorized
	// Transport: network failure, timeout, or a body that is not an envelope.
	Transport
)

func (k Kind) String() string {
	switch k {
	case Rejected:
		return "rejected"
	case Unauthorized:
		return "unauthorized"
	case Transport:
		return "transport"
	}
	return "unknown"
}

// ErrMissingFile is returned by Register when no photo is attached.  The
// request is never sent without it.
var ErrMissingFile = errors.New("api: register requires a photo")

// Error is the only error type a Client returns for a completed or attempted
// call.  Use errors.As to inspect it.
type Error struct {
	Op         Op
	Kind       Kind
	StatusCode int    // 0 for transport failures
	Message    string // envelope message, verbatim
	Err        error  // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("api %s: %s (http %d): %s", e.Op, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("api %s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// RemoteMessage is the server-supplied text, or "" when there was none.
func (e *Error) RemoteMessage() string { return e.Message }

// Transport reports whether the call never produced a usable reply.
func (e *Error) Transport() bool { return e.Kind == Transport }

// IsUnauthorized reports whether err is an *Error of kind Unauthorized.
func IsUnauthorized(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == Unauthorized
}
