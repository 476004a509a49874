// Package prompt asks the user yes/no questions before destructive steps.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer answers a yes/no question
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// LineConfirmer reads a single answer line from in. Only "y" and "yes"
// (case-insensitive) are affirmative.
type LineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLineConfirmer creates a confirmer reading from in and printing questions to out
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	return &LineConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm prints question followed by a [y/N] hint and blocks for an answer.
// End of input counts as no.
func (c *LineConfirmer) Confirm(question string) (bool, error) {
	if _, err := fmt.Fprintf(c.out, "%s [y/N]: ", question); err != nil {
		return false, err
	}

	response, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	if errors.Is(err, io.EOF) && response == "" {
		_, _ = fmt.Fprintln(c.out)
	}

	return IsAffirmative(response), nil
}

// IsAffirmative reports whether response means yes
func IsAffirmative(response string) bool {
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// Fixed always gives the same answer. Fixed(true) backs the --yes flag.
type Fixed bool

// Confirm returns the fixed answer without asking
func (f Fixed) Confirm(string) (bool, error) {
	return bool(f), nil
}
