// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict.
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates caller-supplied data failed a domain rule.
// Validation errors propagate to the request boundary unmodified and are
// never retried.
var ErrValidation = errors.New("validation")

// ErrForbidden indicates the caller resolved to an unconditional deny.
var ErrForbidden = errors.New("forbidden")
