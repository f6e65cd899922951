package temporal

import "errors"

var (
	// ErrNilLocation indicates WithLocation was given a nil location.
	ErrNilLocation = errors.New("location cannot be nil")
)
