// Package models contains domain entities and business models for the number pool dashboard
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationMapClone(t *testing.T) {
	original := AllocationMap{
		"member-a": {"111", "222"},
		"member-b": {},
	}

	cloned := original.Clone()
	require.Equal(t, original, cloned)

	// Mutating the clone must not leak into the original.
	cloned["member-a"][0] = "999"
	cloned["member-c"] = []string{"333"}

	assert.Equal(t, []string{"111", "222"}, original["member-a"])
	assert.NotContains(t, original, "member-c")
}

func TestAllocationMapCloneEmpty(t *testing.T) {
	cloned := AllocationMap{}.Clone()
	assert.NotNil(t, cloned)
	assert.Empty(t, cloned)
}
