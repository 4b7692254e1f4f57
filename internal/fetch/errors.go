package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies fetch failures. Every kind is a page-level
// condition: the traversal records it and moves on.
type ErrorKind int

const (
	// KindTimeout means render or network did not complete in time.
	KindTimeout ErrorKind = iota
	// KindUnreachable means connection or DNS failure.
	KindUnreachable
	// KindRejected means the server answered with a non-success status.
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	case KindRejected:
		return "rejected"
	}
	return "unknown"
}

// Error is a classified fetch failure for a single URL.
type Error struct {
	Kind   ErrorKind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindRejected {
		return fmt.Sprintf("fetch %s: rejected with status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classify wraps a raw renderer error into a fetch Error.
func classify(url string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, URL: url, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, URL: url, Err: err}
	}
	return &Error{Kind: KindUnreachable, URL: url, Err: err}
}
