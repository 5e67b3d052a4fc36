package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("record already exists")
	// ErrStaleStatus is returned when a ticket changed status since it was read.
	ErrStaleStatus = errors.New("ticket status changed concurrently")
)
