package jikan

import (
	"errors"
	"fmt"
)

// Sentinel errors for Jikan API operations.
var (
	ErrNotFound    = errors.New("jikan: not found")
	ErrRateLimited = errors.New("jikan: rate limited by server")
	ErrBadRequest  = errors.New("jikan: bad request")
	ErrServer      = errors.New("jikan: server error")
	ErrBadResponse = errors.New("jikan: malformed response")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op     string // topAnime, seasonNow, topCharacters
	Path   string
	Status int // HTTP status, 0 for transport failures
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("jikan %s %s (%d): %v", e.Op, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("jikan %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is an upstream 429.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
