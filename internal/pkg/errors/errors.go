package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing snapshots and ledger rows.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid flags, config or input.
	ErrInvalidArgument = errors.New("invalid argument")
)
