package diag

import (
	"regexp"
	"strings"
	"testing"
)

var (
	dedentWhitespaceOnly    = regexp.MustCompile(`(?m)^[ \t]+$`)
	dedentLeadingWhitespace = regexp.MustCompile(`(?m)(^[ \t]*)(?:[^ \t\n])`)
)

// dedent removes any common leading whitespace from every line in text and
// drops a leading newline, so a raw multiline string literal can be indented
// to match the surrounding Go source while still comparing equal to
// flush-left expected output.
func dedent(text string) string {
	var margin string
	if text[0] == '\n' {
		text = dedentWhitespaceOnly.ReplaceAllString(text[1:], "")
	} else {
		text = dedentWhitespaceOnly.ReplaceAllString(text, "")
	}
	for i, m := range dedentLeadingWhitespace.FindAllStringSubmatch(text, -1) {
		indent := m[1]
		switch {
		case i == 0:
			margin = indent
		case strings.HasPrefix(indent, margin):
			// no narrower margin found
		case strings.HasPrefix(margin, indent):
			margin = indent
		default:
			margin = ""
		}
		if margin == "" && i > 0 {
			break
		}
	}
	if margin == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}

func lines(s ...string) string {
	return strings.Join(s, "\n")
}

func setCulpritMarkers(t *testing.T, start, end string) {
	t.Helper()
	oldStart, oldEnd := culpritLineBegin, culpritLineEnd
	culpritLineBegin, culpritLineEnd = start, end
	t.Cleanup(func() { culpritLineBegin, culpritLineEnd = oldStart, oldEnd })
}

func setMessageMarkers(t *testing.T, start, end string) {
	t.Helper()
	oldStart, oldEnd := messageStart, messageEnd
	messageStart, messageEnd = start, end
	t.Cleanup(func() { messageStart, messageEnd = oldStart, oldEnd })
}
