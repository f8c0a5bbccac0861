package recovery

import (
	"strings"
)

var (
	codePrefixes = []string{"import ", "from ", "#", "def ", "class ", "try:", "if ", "@", `"""`}
	preambles    = []string{"here's", "here is", "complete script", "selenium script", "below is"}
)

// CleanScript turns a model's script answer into bare code. Escaped
// newlines are always expanded before fences are located, fence lines
// are removed (only the fenced part is kept when a block is closed), and
// leading prose is dropped up to the first line that looks like code. When
// no line looks like code the text is returned trimmed but otherwise intact.
func CleanScript(raw string) string {
	text := strings.ReplaceAll(raw, `\n`, "\n")

	lines := strings.Split(text, "\n")
	lines = fencedBody(lines)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isPreamble(trimmed) {
			continue
		}
		if looksLikeCode(trimmed) {
			lines = lines[i:]
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// fencedBody drops fence lines. When an opening and closing fence are both
// present, prose outside them is dropped too.
func fencedBody(lines []string) []string {
	var fences []int
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fences = append(fences, i)
		}
	}

	switch len(fences) {
	case 0:
		return lines
	case 1:
		out := make([]string, 0, len(lines)-1)
		out = append(out, lines[:fences[0]]...)
		return append(out, lines[fences[0]+1:]...)
	}

	first, last := fences[0], fences[len(fences)-1]
	out := make([]string, 0, last-first)
	for i := first + 1; i < last; i++ {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			out = append(out, lines[i])
		}
	}
	return out
}

func isPreamble(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range preambles {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func looksLikeCode(line string) bool {
	if line == "import" {
		return true
	}
	for _, p := range codePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
