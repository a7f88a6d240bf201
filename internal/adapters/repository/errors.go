package repository

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrInvalidLimit      = errors.New("invalid result limit")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
