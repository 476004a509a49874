package differ

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/schaermu/dotsync/internal/ui"
)

// Builtin renders a unified diff in-process for hosts without a diff
// binary. The whole file is emitted as a single hunk.
type Builtin struct {
	Color bool
}

// Diff compares the two files line by line
func (b *Builtin) Diff(_ context.Context, before, after string, w io.Writer) error {
	oldText, err := readOptional(before)
	if err != nil {
		return err
	}
	newText, err := readOptional(after)
	if err != nil {
		return err
	}
	if oldText == newText {
		return nil
	}

	_, err = io.WriteString(w, b.render(before, after, oldText, newText))
	return err
}

func (b *Builtin) render(before, after, oldText, newText string) string {
	dmp := diffmatchpatch.New()
	a, c, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, c, false), lines)

	var body strings.Builder
	oldCount, newCount := 0, 0
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				oldCount++
				newCount++
				b.writeLine(&body, " ", line, ui.Formatter{})
			case diffmatchpatch.DiffDelete:
				oldCount++
				b.writeLine(&body, "-", line, ui.Removed)
			case diffmatchpatch.DiffInsert:
				newCount++
				b.writeLine(&body, "+", line, ui.Added)
			}
		}
	}

	var out strings.Builder
	out.WriteString(b.paint(ui.Formatter{}, "--- "+before) + "\n")
	out.WriteString(b.paint(ui.Formatter{}, "+++ "+after) + "\n")
	out.WriteString(b.paint(ui.Hunk, fmt.Sprintf("@@ -%s +%s @@", hunkRange(oldCount), hunkRange(newCount))) + "\n")
	out.WriteString(body.String())
	return out.String()
}

func (b *Builtin) writeLine(sb *strings.Builder, marker, line string, f ui.Formatter) {
	text := strings.TrimSuffix(line, "\n")
	sb.WriteString(b.paint(f, marker+text))
	sb.WriteString("\n")
	if !strings.HasSuffix(line, "\n") {
		sb.WriteString("\\ No newline at end of file\n")
	}
}

// paint applies f when color is on. A zero Formatter leaves text untouched.
func (b *Builtin) paint(f ui.Formatter, text string) string {
	if !b.Color || f == (ui.Formatter{}) {
		return text
	}
	return f.Sprint(text)
}

func hunkRange(count int) string {
	if count == 0 {
		return "0,0"
	}
	return fmt.Sprintf("1,%d", count)
}

// splitLines splits text after each newline, keeping the terminators
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}
