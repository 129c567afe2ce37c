package parser

import (
	"strconv"
	"strings"
)

// SplitRow splits a table line into cells on unescaped separators outside backtick spans.
// A backtick run opens a span only when a run of the same length closes it later in the
// line; otherwise it is literal. Outer separators are dropped. Escapes are kept verbatim.
func SplitRow(line, sep string, strip bool) []string {
	s := strings.TrimSpace(line)
	if strings.HasPrefix(s, sep) {
		s = s[len(sep):]
	}
	if strings.HasSuffix(s, sep) && !escapedAt(s, len(s)-len(sep)) {
		s = s[:len(s)-len(sep)]
	}

	var cells []string
	var cur strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			cur.WriteString(s[i : i+2])
			i += 2
		case c == '`':
			end, ok := codeSpanEnd(s, i)
			if !ok {
				end = i + tickRun(s, i)
			}
			cur.WriteString(s[i:end])
			i = end
		case strings.HasPrefix(s[i:], sep):
			cells = append(cells, cur.String())
			cur.Reset()
			i += len(sep)
		default:
			cur.WriteByte(c)
			i++
		}
	}
	cells = append(cells, cur.String())

	for i := range cells {
		if strip {
			cells[i] = strings.TrimSpace(cells[i])
		} else {
			// Only the single space of padding that Render adds
			cells[i] = strings.TrimPrefix(strings.TrimSuffix(cells[i], " "), " ")
		}
	}
	return cells
}

// escapedAt reports whether the byte at pos is preceded by an odd run of backslashes.
func escapedAt(s string, pos int) bool {
	n := 0
	for i := pos - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// tickRun returns the length of the backtick run starting at i.
func tickRun(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	return n
}

// codeSpanEnd returns the index just past the run that closes the backtick span opened at i.
func codeSpanEnd(s string, i int) (int, bool) {
	n := tickRun(s, i)
	for j := i + n; j < len(s); {
		if s[j] != '`' {
			j++
			continue
		}
		m := tickRun(s, j)
		if m == n {
			return j + m, true
		}
		j += m
	}
	return 0, false
}

// LineBreak stands in for a line break inside a table cell.
const LineBreak = "<br>"

// EncodeCell turns a raw value into cell text that parses back to itself. Line breaks
// become LineBreak, and raw pipes and unpaired backticks are escaped. Pipes inside closed
// backtick spans and already escaped characters are left alone. With strip the
// surrounding whitespace is dropped, as the parser would drop it.
func EncodeCell(value string, strip bool) string {
	if strip {
		value = strings.TrimSpace(value)
	}
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	value = strings.ReplaceAll(value, "\n", LineBreak)
	return escapeCell(value)
}

var cellDecoder = strings.NewReplacer(
	`\|`, "|",
	"\\`", "`",
	LineBreak, "\n",
	"<br/>", "\n",
	"<br />", "\n",
)

// DecodeCell turns cell text back into a plain value for consumers outside Markdown.
func DecodeCell(value string) string {
	return cellDecoder.Replace(value)
}

func escapeCell(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 4)
	for i := 0; i < len(value); {
		c := value[i]
		switch {
		case c == '\\' && i+1 < len(value):
			// Already escaped, keep the pair as is
			b.WriteString(value[i : i+2])
			i += 2
		case c == '`':
			if end, ok := codeSpanEnd(value, i); ok {
				b.WriteString(value[i:end])
				i = end
				continue
			}
			n := tickRun(value, i)
			b.WriteString(strings.Repeat("\\`", n))
			i += n
		case c == '|':
			b.WriteString(`\|`)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// ParseNumber parses a cell as a number, ignoring thousands separators.
func ParseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseValue attempts to parse a cell value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func ParseValue(s string) any {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
