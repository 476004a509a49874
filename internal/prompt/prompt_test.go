package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"  YES  \n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"yep\n", false},
		{"y", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			c := NewLineConfirmer(strings.NewReader(tt.input), &out)

			got, err := c.Confirm("Proceed?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(out.String(), "Proceed? [y/N]: "))
		})
	}
}

func TestLineConfirmer_ReadsOneLinePerQuestion(t *testing.T) {
	c := NewLineConfirmer(strings.NewReader("n\ny\n"), &bytes.Buffer{})

	first, err := c.Confirm("first?")
	require.NoError(t, err)
	second, err := c.Confirm("second?")
	require.NoError(t, err)

	assert.False(t, first)
	assert.True(t, second)
}

func TestFixed(t *testing.T) {
	yes, err := Fixed(true).Confirm("anything")
	require.NoError(t, err)
	assert.True(t, yes)

	no, err := Fixed(false).Confirm("anything")
	require.NoError(t, err)
	assert.False(t, no)
}
