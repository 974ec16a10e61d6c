package bgg

import (
	"errors"
	"fmt"
)

// Sentinel errors for BoardGameGeek API operations.
var (
	ErrNotFound    = errors.New("bgg: not found")
	ErrRateLimited = errors.New("bgg: rate limited by server")
	ErrBadRequest  = errors.New("bgg: bad request")
	ErrServer      = errors.New("bgg: server error")
	ErrQueued      = errors.New("bgg: request queued upstream")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "search", "getGame"
	ID  int    // Thing id, if applicable
	Err error
}

func (e *Error) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("bgg %s [%d]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("bgg %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op string, id int, err error) error {
	return &Error{
		Op:  op,
		ID:  id,
		Err: err,
	}
}
