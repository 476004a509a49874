// Package paths converts between registered entry paths and filesystem
// locations.
//
// Registered paths use "~" as a placeholder for the invoking user's home
// directory so a registry can be shared between hosts with different home
// locations. Expansion replaces every "~" in the path, so the token must not
// appear anywhere else in a tracked path.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/schaermu/dotsync/internal/registry"
)

// HomeToken stands in for the home directory in registered paths
const HomeToken = "~"

// Translator maps entries to their system and content store locations
type Translator struct {
	home       string
	contentDir string
}

// NewTranslator creates a translator for the given home and content store directories
func NewTranslator(home, contentDir string) *Translator {
	return &Translator{
		home:       filepath.Clean(home),
		contentDir: contentDir,
	}
}

// SystemPath returns the absolute location of the entry on this host
func (t *Translator) SystemPath(e registry.Entry) string {
	return t.Expand(e.Path)
}

// ContentPath returns the location of the entry's blob in the content store
func (t *Translator) ContentPath(e registry.Entry) string {
	return filepath.Join(t.contentDir, e.ID)
}

// Expand replaces every occurrence of the home token with the home directory
func (t *Translator) Expand(path string) string {
	return strings.ReplaceAll(path, HomeToken, t.home)
}

// Collapse replaces a leading home directory with the home token. Paths
// outside home are returned unchanged.
func (t *Translator) Collapse(path string) string {
	if path == t.home {
		return HomeToken
	}
	prefix := t.home + string(os.PathSeparator)
	if strings.HasPrefix(path, prefix) {
		return HomeToken + string(os.PathSeparator) + path[len(prefix):]
	}
	return path
}

// Normalize turns user input into registered notation. Input already in ~
// notation is kept, relative input is resolved against cwd, and absolute
// paths under home are collapsed.
func (t *Translator) Normalize(input, cwd string) string {
	if input == HomeToken || strings.HasPrefix(input, HomeToken+string(os.PathSeparator)) {
		input = t.Expand(input)
	} else if !filepath.IsAbs(input) {
		input = filepath.Join(cwd, input)
	}
	return t.Collapse(filepath.Clean(input))
}
