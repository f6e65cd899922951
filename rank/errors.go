package rank

import "errors"

var (
	// ErrInvalidConfig indicates a Config failed validation.
	ErrInvalidConfig = errors.New("invalid rank config")

	// ErrRankerReleased indicates Rank was called after Release.
	ErrRankerReleased = errors.New("ranker has been released")
)
