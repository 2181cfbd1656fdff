package gitlib

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ErrBinaryContent is returned when a blob contains NUL bytes and cannot be
// line-diffed.
var ErrBinaryContent = errors.New("binary content cannot be diffed")

// Hunk is one zero-context change region of a unified diff.
// Line numbers are 1-indexed; a count of 0 means no lines on that side.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
}

// Header renders the hunk in unified-diff form: "@@ -a,b +c,d @@".
// Per the unified format, a zero-count side reports the preceding line number.
func (h Hunk) Header() string {
	oldStart := h.OldStart
	if h.OldLines == 0 {
		oldStart--
	}

	newStart := h.NewStart
	if h.NewLines == 0 {
		newStart--
	}

	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", oldStart, h.OldLines, newStart, h.NewLines)
}

// FormatHunks renders hunk headers as a zero-context patch, one per line.
func FormatHunks(hunks []Hunk) string {
	var sb strings.Builder

	for _, h := range hunks {
		sb.WriteString(h.Header())
		sb.WriteByte('\n')
	}

	return sb.String()
}

// DiffHunks computes the zero-context change hunks between two versions of a
// text file using a line-level diff.
func DiffHunks(oldContent, newContent []byte) ([]Hunk, error) {
	if bytes.IndexByte(oldContent, 0) >= 0 || bytes.IndexByte(newContent, 0) >= 0 {
		return nil, ErrBinaryContent
	}

	dmp := diffmatchpatch.New()

	src, dst, _ := dmp.DiffLinesToRunes(string(oldContent), string(newContent))
	diffs := dmp.DiffMainRunes(src, dst, false)

	var (
		hunks   []Hunk
		current *Hunk
		oldLine int
		newLine int
	)

	for _, diff := range diffs {
		// After DiffLinesToRunes each rune stands for one whole line.
		size := utf8.RuneCountInString(diff.Text)

		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			current = nil
			oldLine += size
			newLine += size
		case diffmatchpatch.DiffDelete:
			current = appendHunk(&hunks, current, oldLine, newLine)
			current.OldLines += size
			oldLine += size
		case diffmatchpatch.DiffInsert:
			current = appendHunk(&hunks, current, oldLine, newLine)
			current.NewLines += size
			newLine += size
		}
	}

	return hunks, nil
}

// appendHunk returns the open hunk, starting a new one at the current
// positions if the previous run of changes was closed by an equal region.
func appendHunk(hunks *[]Hunk, current *Hunk, oldLine, newLine int) *Hunk {
	if current != nil {
		return current
	}

	*hunks = append(*hunks, Hunk{OldStart: oldLine + 1, NewStart: newLine + 1})

	return &(*hunks)[len(*hunks)-1]
}
