package recovery

import (
	"regexp"
	"strings"
)

var fenceLine = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_+-]*[ \t]*$")

// stripFences removes markdown code fence lines, keeping what they enclose
func stripFences(text string) string {
	return fenceLine.ReplaceAllString(text, "")
}

// sliceObject returns text from the first '{' to the last '}'
func sliceObject(text string) (string, bool) {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first < 0 || last <= first {
		return "", false
	}
	return text[first : last+1], true
}

// repairJSON applies the lexical fixes models commonly need, one pass each:
// comments are removed, raw control characters inside strings are escaped,
// and trailing commas before a closing bracket are dropped.
func repairJSON(text string) string {
	return dropTrailingCommas(escapeControls(stripComments(text)))
}

// stripComments removes // and /* */ comments outside string literals
func stripComments(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			sb.WriteByte(ch)
			continue
		}

		switch {
		case ch == '"':
			inString = true
			sb.WriteByte(ch)
		case ch == '/' && i+1 < len(s) && s[i+1] == '/':
			nl := strings.IndexByte(s[i:], '\n')
			if nl < 0 {
				return sb.String()
			}
			i += nl - 1
		case ch == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return sb.String()
			}
			i += end + 3
		default:
			sb.WriteByte(ch)
		}
	}

	return sb.String()
}

// escapeControls replaces raw newlines, carriage returns and tabs inside
// string literals with their escape sequences
func escapeControls(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if !inString {
			if ch == '"' {
				inString = true
			}
			sb.WriteByte(ch)
			continue
		}

		switch {
		case escaped:
			escaped = false
			sb.WriteByte(ch)
		case ch == '\\':
			escaped = true
			sb.WriteByte(ch)
		case ch == '"':
			inString = false
			sb.WriteByte(ch)
		case ch == '\n':
			sb.WriteString(`\n`)
		case ch == '\r':
			sb.WriteString(`\r`)
		case ch == '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(ch)
		}
	}

	return sb.String()
}

// dropTrailingCommas removes a comma followed only by whitespace and a
// closing bracket, outside string literals
func dropTrailingCommas(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			sb.WriteByte(ch)
			continue
		}

		if ch == '"' {
			inString = true
		}
		if ch == ',' {
			next := strings.TrimLeft(s[i+1:], " \t\r\n")
			if strings.HasPrefix(next, "}") || strings.HasPrefix(next, "]") {
				continue
			}
		}
		sb.WriteByte(ch)
	}

	return sb.String()
}

// scanObjects walks the body of a JSON array and returns each top level
// object as raw text, in source order. It stops at the array's closing
// bracket and tolerates a truncated tail by dropping the unfinished object.
func scanObjects(s string) []string {
	var objects []string

	depth, start := 0, -1
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				objects = append(objects, s[start:i+1])
			}
		case ']':
			if depth == 0 {
				return objects
			}
		}
	}

	return objects
}

// excerpt returns at most limit runes of text
func excerpt(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
