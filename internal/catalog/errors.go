package catalog

import "errors"

// Sentinel errors returned by catalog operations.
var (
	// ErrNotFound is returned when no record exists with the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned by Create when a record with the same
	// natural-key value already exists.
	ErrConflict = errors.New("record already exists")
	// ErrMissingNaturalKey is returned by Create when the natural-key field
	// is absent or empty.
	ErrMissingNaturalKey = errors.New("natural key required")
	// ErrInvalidField is wrapped by errors caused by a field value whose
	// type does not match the schema.
	ErrInvalidField = errors.New("invalid field value")
)
