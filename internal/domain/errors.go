package domain

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// ErrConfiguration marks operator misconfiguration: the site is not set up
	// to run the requested operation. It is never a per-request condition.
	ErrConfiguration = errors.New("configuration error")
)
