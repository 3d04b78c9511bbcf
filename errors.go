package bindery

import "errors"

// Builder-level errors. Construction and registry violations surface at
// the call site; structural violations are deferred to validation so an
// aggregate can pass through invalid intermediate states while it is
// being assembled.
var (
	ErrInvalidArgument   = errors.New("bindery: invalid argument")
	ErrDuplicateItem     = errors.New("bindery: duplicate item id")
	ErrItemNotFound      = errors.New("bindery: item not found")
	ErrMissingMetadata   = errors.New("bindery: required metadata missing")
	ErrEmptySpine        = errors.New("bindery: spine is empty")
	ErrMissingNav        = errors.New("bindery: navigation document missing")
	ErrDanglingReference = errors.New("bindery: reference to missing item")
	ErrWrite             = errors.New("bindery: archive write failed")
)

// Load errors.
var (
	ErrInvalidArchive = errors.New("bindery: invalid or corrupted archive")
	ErrNoContainer    = errors.New("bindery: missing META-INF/container.xml")
	ErrNoRootfile     = errors.New("bindery: no rootfile found in container.xml")
	ErrNoOPF          = errors.New("bindery: missing package descriptor")
	ErrInvalidOPF     = errors.New("bindery: invalid package descriptor")
)
