package host

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDetect(t *testing.T) {
	facts, err := Detect()
	require.NoError(t, err)

	assert.Equal(t, runtime.GOOS, facts[KeyOS])
	assert.NotEmpty(t, facts[KeyHostname])
	assert.Len(t, facts, 2)
}

func TestApplies(t *testing.T) {
	darwin := Facts{KeyOS: "darwin", KeyHostname: "laptop"}
	linux := Facts{KeyOS: "linux", KeyHostname: "box"}

	tests := []struct {
		name  string
		facts Facts
		tags  map[string]string
		want  bool
	}{
		{name: "os mismatch", facts: darwin, tags: map[string]string{"os": "linux"}, want: false},
		{name: "os match", facts: linux, tags: map[string]string{"os": "linux"}, want: true},
		{name: "no tags", facts: darwin, tags: nil, want: true},
		{name: "empty tags", facts: linux, tags: map[string]string{}, want: true},
		{name: "unrelated tag only", facts: darwin, tags: map[string]string{"role": "work"}, want: true},
		{name: "hostname mismatch", facts: linux, tags: map[string]string{"hostname": "laptop"}, want: false},
		{name: "both match", facts: linux, tags: map[string]string{"os": "linux", "hostname": "box", "role": "x"}, want: true},
		{name: "one of two mismatches", facts: linux, tags: map[string]string{"os": "linux", "hostname": "laptop"}, want: false},
		{name: "no facts", facts: Facts{}, tags: map[string]string{"os": "linux"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.facts.Applies(tt.tags))
		})
	}
}

// TestApplies_IgnoresUnrecognizedTags checks that tags outside the fact keys
// never exclude an entry.
func TestApplies_IgnoresUnrecognizedTags(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		facts := Facts{
			KeyOS:       rapid.SampledFrom([]string{"linux", "darwin", "windows"}).Draw(rt, "os"),
			KeyHostname: rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "hostname"),
		}
		tags := rapid.MapOf(
			rapid.StringMatching(`tag-[a-z]{1,6}`),
			rapid.String(),
		).Draw(rt, "tags")

		if !facts.Applies(tags) {
			rt.Fatalf("entry with tags %v excluded on %v", tags, facts)
		}

		// adding a matching fact tag keeps it applicable
		tags[KeyOS] = facts[KeyOS]
		if !facts.Applies(tags) {
			rt.Fatalf("entry with matching os tag excluded")
		}

		// a mismatching one excludes it
		tags[KeyHostname] = facts[KeyHostname] + "-other"
		if facts.Applies(tags) {
			rt.Fatalf("entry with mismatching hostname applied")
		}
	})
}
