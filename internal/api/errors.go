package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed call.
type ErrorKind int

const (
	// KindNetwork means the server could not be reached or the response
	// could not be read.
	KindNetwork ErrorKind = iota
	// KindServer means the server answered with an error status.
	KindServer
	// KindGone means the resource no longer exists (HTTP 410).
	KindGone
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindGone:
		return "gone"
	default:
		return "unknown"
	}
}

// Client-side validation errors, returned before any request is sent.
var (
	ErrEmptyQuery = errors.New("please enter a search term")
	ErrEmptyURL   = errors.New("please enter a URL")
	ErrNoFile     = errors.New("no file selected")
	ErrEmptyKey   = errors.New("asset key is empty")
)

// Error is returned by every Client call that reached the transport.
// Message is safe to show to users.
type Error struct {
	Op      string
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail includes the operation and cause, for logs.
func (e *Error) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Message, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

// IsGone reports whether err is a 410 from the server.
func IsGone(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindGone
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}

// Message returns the user-facing text of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
