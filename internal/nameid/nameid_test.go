package nameid

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^[a-z]+-[a-z]+$`)

func TestGenerateMatchesPattern(t *testing.T) {
	id, err := Generate(nil)
	require.NoError(t, err)
	assert.Regexp(t, idPattern, id)
}

func TestGenerateAvoidsExisting(t *testing.T) {
	existing := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := Generate(existing)
		require.NoError(t, err)
		assert.False(t, existing[id], "generated a colliding id: %s", id)
		existing[id] = true
	}
}

func TestGenerateExhaustsAttempts(t *testing.T) {
	existing := map[string]bool{}
	for _, adj := range adjectives {
		for _, animal := range animals {
			existing[adj+"-"+animal] = true
		}
	}
	_, err := Generate(existing)
	assert.Error(t, err)
}
