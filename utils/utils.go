// Package utils provides utility functions for the application.
package utils

import (
	"github.com/google/uuid"
)

func ToPtr[T any](v T) *T {
	return &v
}

// ParseUUID parses a string into a UUID, returning an error for malformed input.
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}
