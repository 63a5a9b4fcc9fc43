package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageMatchesNumberExact(t *testing.T) {
	assert.True(t, MessageMatchesNumber("5550100", "5550100"))
	assert.False(t, MessageMatchesNumber("5550101", "5550100"))
}

func TestMessageMatchesNumberIgnoresFormatting(t *testing.T) {
	assert.True(t, MessageMatchesNumber("+1 (111) 555-0100", "11115550100"))
	assert.True(t, MessageMatchesNumber("111-555-0100", "1115550100"))
}

func TestMessageMatchesNumberContainment(t *testing.T) {
	// Pipeline writes the number with a country code the inventory omits.
	assert.True(t, MessageMatchesNumber("+1115550100", "5550100"))
	// And the other way around.
	assert.True(t, MessageMatchesNumber("5550100", "+1115550100"))
}

func TestMessageMatchesNumberOverAssociatesShortNumbers(t *testing.T) {
	// Containment matching accepts a short number that happens to be a digit
	// substring of an unrelated target. Known over-association risk, kept
	// because the pipeline and the inventory disagree on number prefixes.
	assert.True(t, MessageMatchesNumber("+1115550100", "100"))
	assert.True(t, MessageMatchesNumber("5550100", "550"))
}

func TestMessageMatchesNumberRejectsUnrelated(t *testing.T) {
	assert.False(t, MessageMatchesNumber("+1115550100", "4440199"))
	assert.False(t, MessageMatchesNumber("", "5550100"))
	assert.False(t, MessageMatchesNumber("5550100", ""))
	assert.False(t, MessageMatchesNumber("no digits here", "also none"))
}
