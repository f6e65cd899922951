// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidQuery indicates a Query failed validation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrMissingID indicates the document Id is zero.
	ErrMissingID = errors.New("document id is required")

	// ErrMissingTimestamp indicates the document Timestamp is zero.
	ErrMissingTimestamp = errors.New("document timestamp is required")

	// ErrInvalidSourceType indicates an unrecognized SourceType value.
	ErrInvalidSourceType = errors.New("invalid source type")

	// ErrInvalidTimeRange indicates a resolved range whose start is after its end.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrDimensionMismatch indicates query and document embeddings differ in length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrResourceBudgetExceeded indicates ranking was cancelled or timed out.
	ErrResourceBudgetExceeded = errors.New("resource budget exceeded")
)

// DimensionMismatchError wraps ErrDimensionMismatch with the offending sizes.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", ErrDimensionMismatch.Error(), e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(expected, actual int) error {
	return &DimensionMismatchError{Expected: expected, Actual: actual}
}
