// Package members locates declared class members (methods and fields) and
// their line ranges in a source snapshot. It uses brace and structure matching
// rather than a full parser: the ranges only need to be precise enough to
// intersect with changed-line ranges from commit diffs.
package members

import (
	"regexp"
	"strings"
)

// Kind tags a member as a method-like block or a field declaration.
type Kind string

// Member kinds.
const (
	KindMethod Kind = "method"
	KindField  Kind = "field"
)

// Range is a member's declaration span, 1-indexed and inclusive.
type Range struct {
	Name  string
	Kind  Kind
	Start int
	End   int
}

// memberDepth is the brace depth at which class members are declared:
// one level inside the top-level type body.
const memberDepth = 1

var (
	identifierRe = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)
	nestedTypeRe = regexp.MustCompile(`\b(?:class|interface|enum|record)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
)

// Extract scans a source snapshot and returns declared member ranges in
// declaration order. Content inside strings, chars, and comments is ignored
// for structure matching.
func Extract(src []byte) []Range {
	lines := blankLiterals(string(src))

	var (
		result       []Range
		depth        int
		pending      strings.Builder
		pendingStart int
		open         *Range
	)

	for i, code := range lines {
		lineNo := i + 1
		depthAfter := depth + braceDelta(code)

		switch {
		case open != nil:
			if depthAfter <= memberDepth {
				open.End = lineNo
				result = append(result, *open)
				open = nil
			}
		case depth == memberDepth:
			trimmed := strings.TrimSpace(code)
			if trimmed != "" && trimmed != "}" {
				if pendingStart == 0 {
					pendingStart = lineNo
				}

				pending.WriteString(code)
				pending.WriteByte('\n')
			}

			decl := pending.String()

			switch {
			case depthAfter > memberDepth:
				// Declaration opens a body: method, constructor, nested
				// type, or initializer block.
				r := Range{Name: blockName(decl), Kind: KindMethod, Start: pendingStart}
				if closesOnSameLine(code, depth) {
					r.End = lineNo
					result = append(result, r)
				} else {
					open = &r
				}

				pending.Reset()
				pendingStart = 0
			case strings.Contains(trimmed, ";") && depthAfter == memberDepth:
				if r, ok := statementMember(decl, pendingStart, lineNo); ok {
					result = append(result, r)
				}

				pending.Reset()
				pendingStart = 0
			}
		default:
			// Outside a type body (imports, package, class header) or in a
			// deeper scope that does not belong to an open member.
		}

		depth = depthAfter
	}

	return result
}

// braceDelta returns the net brace depth change of a blanked code line.
func braceDelta(code string) int {
	return strings.Count(code, "{") - strings.Count(code, "}")
}

// closesOnSameLine reports whether a line that opens a member body also
// returns to the member declaration depth (one-line methods).
func closesOnSameLine(code string, depthBefore int) bool {
	depth := depthBefore

	opened := false

	for _, ch := range code {
		switch ch {
		case '{':
			depth++
			opened = true
		case '}':
			depth--
		}

		if opened && depth == memberDepth {
			return true
		}
	}

	return false
}

// blockName extracts the name of a block-shaped member declaration.
func blockName(decl string) string {
	if m := nestedTypeRe.FindStringSubmatch(decl); m != nil {
		return m[1]
	}

	head, _, found := strings.Cut(decl, "(")
	if !found {
		// Initializer block or malformed declaration.
		if strings.Contains(decl, "static") {
			return "static"
		}

		return lastIdentifier(decl)
	}

	return lastIdentifier(head)
}

// statementMember classifies a semicolon-terminated declaration as a field or
// an abstract/native method signature.
func statementMember(decl string, start, end int) (Range, bool) {
	kind := KindField
	if strings.Contains(decl, "(") {
		kind = KindMethod
	}

	name := decl
	if idx := strings.IndexAny(decl, "=(;"); idx >= 0 {
		name = decl[:idx]
	}

	ident := lastIdentifier(name)
	if ident == "" {
		return Range{}, false
	}

	return Range{Name: ident, Kind: kind, Start: start, End: end}, true
}

// lastIdentifier returns the final identifier token of the given text.
func lastIdentifier(text string) string {
	matches := identifierRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return ""
	}

	return matches[len(matches)-1]
}

// blankLiterals splits source into lines with the contents of string and char
// literals and comments removed, so brace counting sees only structure.
func blankLiterals(src string) []string {
	var (
		lines   []string
		current strings.Builder
	)

	const (
		stateCode = iota
		stateLineComment
		stateBlockComment
		stateString
		stateChar
	)

	state := stateCode
	escaped := false

	for i := 0; i < len(src); i++ {
		ch := src[i]

		if ch == '\n' {
			lines = append(lines, current.String())
			current.Reset()

			if state == stateLineComment {
				state = stateCode
			}

			escaped = false

			continue
		}

		switch state {
		case stateCode:
			switch {
			case ch == '/' && i+1 < len(src) && src[i+1] == '/':
				state = stateLineComment
				i++
			case ch == '/' && i+1 < len(src) && src[i+1] == '*':
				state = stateBlockComment
				i++
			case ch == '"':
				state = stateString
			case ch == '\'':
				state = stateChar
			default:
				current.WriteByte(ch)
			}
		case stateBlockComment:
			if ch == '*' && i+1 < len(src) && src[i+1] == '/' {
				state = stateCode
				i++
			}
		case stateString, stateChar:
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"' && state == stateString:
				state = stateCode
			case ch == '\'' && state == stateChar:
				state = stateCode
			}
		case stateLineComment:
			// Consumed until newline.
		}
	}

	if current.Len() > 0 || len(src) == 0 {
		lines = append(lines, current.String())
	}

	return lines
}
