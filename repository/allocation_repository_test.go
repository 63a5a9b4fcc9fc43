// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

// clauseCapture renders a clause into plain text so tests can assert on the
// SQL fragment it produces.
type clauseCapture struct {
	strings.Builder
}

func (c *clauseCapture) WriteQuoted(_ interface{}) { _, _ = c.WriteString("?") }

func (c *clauseCapture) AddVar(_ clause.Writer, _ ...interface{}) {}

func (c *clauseCapture) AddError(err error) error { return err }

func TestFullMapForUpdateTakesRowLocks(t *testing.T) {
	// Concurrent allocation writers must serialize on the snapshot read, so
	// the clause FullMapForUpdate attaches has to render a FOR UPDATE lock.
	var capture clauseCapture
	allocationWriteLock.Build(&capture)

	assert.Equal(t, "FOR UPDATE", capture.String())
}
