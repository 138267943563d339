// ABOUTME: Error kinds returned by chat and embedding backends and their decorators
// ABOUTME: Typed errors carry details and still match their sentinel with errors.Is
package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenLimitExceeded is returned when a request is larger than the configured token limit
	ErrTokenLimitExceeded = errors.New("token limit exceeded")

	// ErrBackendFailure covers transport, API and empty-response failures from a backend
	ErrBackendFailure = errors.New("backend failure")

	errEmptyResponse = errors.New("empty response")
)

// TokenLimitError reports the measured size of a rejected request
type TokenLimitError struct {
	Tokens int
	Limit  int
}

func (e *TokenLimitError) Error() string {
	return fmt.Sprintf("%s: %d tokens, limit %d", ErrTokenLimitExceeded.Error(), e.Tokens, e.Limit)
}

// Is makes errors.Is(err, ErrTokenLimitExceeded) succeed
func (e *TokenLimitError) Is(target error) bool {
	return target == ErrTokenLimitExceeded
}

// BackendError wraps a failure from a remote model backend
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrBackendFailure) succeed
func (e *BackendError) Is(target error) bool {
	return target == ErrBackendFailure
}
