package execution

import (
	"fmt"
	"strings"
)

// ContinuationToken is the opaque handle the execution service issues
// when it pauses for human approval. The client never interprets or
// constructs token contents; it only presents the token unchanged to the
// resume endpoint. Its presence is the sole discriminator for entering
// the awaiting-approval state.
type ContinuationToken struct {
	value string
}

// NewContinuationToken wraps a backend-issued token value.
// Returns an error if the value is empty.
func NewContinuationToken(value string) (ContinuationToken, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ContinuationToken{}, fmt.Errorf("continuation token cannot be empty")
	}
	return ContinuationToken{value: value}, nil
}

// MustContinuationToken wraps a token value or panics if empty. Use only in tests.
func MustContinuationToken(value string) ContinuationToken {
	t, err := NewContinuationToken(value)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the raw token value for pass-through to the backend.
func (t ContinuationToken) String() string {
	return t.value
}

// IsZero returns true if no token is held.
func (t ContinuationToken) IsZero() bool {
	return t.value == ""
}

// Equals checks if two tokens carry the same value.
func (t ContinuationToken) Equals(other ContinuationToken) bool {
	return t.value == other.value
}
