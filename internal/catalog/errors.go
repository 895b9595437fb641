package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog requests.
var (
	ErrNotFound    = errors.New("catalog: not found")
	ErrRateLimited = errors.New("catalog: rate limited by server")
	ErrBadRequest  = errors.New("catalog: bad request")
	ErrServer      = errors.New("catalog: server error")
)

// Error wraps an underlying error with request context.
type Error struct {
	Op     string
	ListID string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("catalog %s [%s]: %v", e.Op, e.ListID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, listID string, err error) error {
	return &Error{Op: op, ListID: listID, Err: err}
}
