package lookup

import (
	"errors"
	"fmt"
)

// Sentinel kinds for lookup errors.
var (
	ErrUpstream = errors.New("upstream lookup failed")
	ErrDecode   = errors.New("decode lookup response")
)

// StatusError reports a non-200 upstream response.
type StatusError struct {
	Source string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded %d", e.Source, e.Code)
}

// Is lets errors.Is match ErrUpstream.
func (e *StatusError) Is(target error) bool { return target == ErrUpstream }
