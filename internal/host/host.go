// Package host describes the machine dotsync runs on and decides which
// entries apply to it.
package host

import (
	"fmt"
	"os"
	"runtime"
)

// Recognized fact keys. Entry tags with any other key never affect applicability.
const (
	KeyOS       = "os"
	KeyHostname = "hostname"
)

// Facts are key/value properties of the current host
type Facts map[string]string

// Detect collects facts for the running process
func Detect() (Facts, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to get hostname: %w", err)
	}
	return Facts{
		KeyOS:       runtime.GOOS,
		KeyHostname: hostname,
	}, nil
}

// Applies reports whether an entry with the given tags should be synced on
// this host. Every tag whose key is also a fact must match the fact's value.
// Tags with no corresponding fact are ignored, so an untagged entry always
// applies.
func (f Facts) Applies(tags map[string]string) bool {
	for key, value := range tags {
		fact, ok := f[key]
		if !ok {
			continue
		}
		if fact != value {
			return false
		}
	}
	return true
}
