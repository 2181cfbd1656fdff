package evolution

import (
	"regexp"
	"strconv"
	"strings"
)

// LineRange is a 1-indexed inclusive span of lines.
type LineRange struct {
	Start int
	End   int
}

// Intersects reports whether two ranges share at least one line.
func (r LineRange) Intersects(other LineRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// hunkHeaderRe matches unified-diff hunk headers: "@@ -a,b +c,d @@".
// The counts are optional and default to 1 when omitted.
var hunkHeaderRe = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

// ParseChangedRanges extracts new-side changed line ranges from the hunk
// headers of a unified diff: "+c,d" yields [c, c+d-1]. Hunks with a zero
// new-side count (pure deletions) contribute no range.
func ParseChangedRanges(patch string) []LineRange {
	var ranges []LineRange

	for _, line := range strings.Split(patch, "\n") {
		m := hunkHeaderRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		start, _ := strconv.Atoi(m[1])

		count := 1
		if m[2] != "" {
			count, _ = strconv.Atoi(m[2])
		}

		if count == 0 {
			continue
		}

		ranges = append(ranges, LineRange{Start: start, End: start + count - 1})
	}

	return ranges
}
