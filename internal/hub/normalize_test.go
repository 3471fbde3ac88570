package hub

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeServerName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already normalized",
			input:    "my-app",
			expected: "my-app",
		},
		{
			name:     "uppercase and punctuation",
			input:    "SOME Name!!",
			expected: "some-name",
		},
		{
			name:     "path traversal characters stripped",
			input:    "../../another-endpoint",
			expected: "another-endpoint",
		},
		{
			name:     "whitespace runs collapse to one hyphen",
			input:    "a   b\t c",
			expected: "a-b-c",
		},
		{
			name:     "overlong name truncated",
			input:    strings.Repeat("x", 1000),
			expected: strings.Repeat("x", 240),
		},
		{
			name:     "empty stays empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeServerName(tt.input))
		})
	}
}

func TestNormalizeServerName_Idempotent(t *testing.T) {
	inputs := []string{"My Dashboard", "../../another-endpoint", "SOME Name!!", strings.Repeat("y z", 200)}
	for _, input := range inputs {
		once := NormalizeServerName(input)
		assert.Equal(t, once, NormalizeServerName(once), "second pass must be a fixed point for %q", input)
	}
}

func TestRandomSuffix(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		s := randomSuffix()
		assert.Len(t, s, 7)
		assert.Regexp(t, "^[0-9a-f]{7}$", s)
		seen[s] = true
	}
	assert.Greater(t, len(seen), 1, "suffixes must vary across calls")
}
