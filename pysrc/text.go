package pysrc

import (
	"math"
	"strings"
	"unicode"
)

// Compact normalises expression text so regexes can match code that was
// split over several lines: whitespace runs become one space, and spaces
// just inside brackets or before commas are removed.
func Compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	var last rune
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace && !strings.ContainsRune("([{", last) && !strings.ContainsRune(")]},", r) {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
		last = r
	}
	return b.String()
}

// DecodeString returns the value of a Python string literal, handling
// prefixes, triple quotes and common escapes. Raw strings are returned
// verbatim.
func DecodeString(lit string) string {
	i := 0
	for i < len(lit) && strings.ContainsRune("rRbBuUfF", rune(lit[i])) {
		i++
	}
	prefix := strings.ToLower(lit[:i])
	body := lit[i:]

	quote := ""
	switch {
	case strings.HasPrefix(body, `"""`), strings.HasPrefix(body, `'''`):
		quote = body[:3]
	case strings.HasPrefix(body, `"`), strings.HasPrefix(body, `'`):
		quote = body[:1]
	default:
		return body
	}
	if len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return body
	}
	body = body[len(quote) : len(body)-len(quote)]

	if strings.Contains(prefix, "r") {
		return body
	}
	return unescape(body)
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '\'', '"':
			b.WriteByte(s[i])
		case '\n':
			// line continuation
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// CleanDoc cleans a docstring the way Python's inspect.cleandoc does:
// tabs expand, the first line is stripped, the common indentation of the
// remaining lines is removed, and blank leading and trailing lines go.
func CleanDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")

	margin := math.MaxInt
	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}
		if indent := len(line) - len(content); indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimSpace(lines[0])
	if margin < math.MaxInt {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// Dedent removes the whitespace prefix common to every non-blank line,
// like Python's textwrap.dedent.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")
	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix, first = indent, false
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}
