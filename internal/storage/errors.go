// ABOUTME: Error kinds returned by the vector store
// ABOUTME: Sentinels match with errors.Is; DimensionError carries the offending sizes
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when an insert would grow the store past its capacity
	ErrCapacityExceeded = errors.New("vector store capacity exceeded")

	// ErrDimensionMismatch is returned when a vector's length differs from the store dimension
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidK is returned when a search asks for a negative number of results
	ErrInvalidK = errors.New("k must not be negative")

	// ErrNonFiniteVector is returned when a vector holds a NaN or infinite component
	ErrNonFiniteVector = errors.New("vector has a non-finite component")
)

// DimensionError reports a vector whose length differs from the store dimension
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", ErrDimensionMismatch.Error(), e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrDimensionMismatch) succeed
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
