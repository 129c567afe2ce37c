package parser

import (
	"reflect"
	"testing"
)

func TestSplitRow(t *testing.T) {
	tests := []struct {
		input    string
		strip    bool
		expected []string
	}{
		{"| A | B |", true, []string{"A", "B"}},
		{"|  | x |", true, []string{"", "x"}},
		{`| a \| b | c |`, true, []string{`a \| b`, "c"}},
		{"| `a|b` | c |", true, []string{"`a|b`", "c"}},
		{"A | B", true, []string{"A", "B"}},
		{"|  x  | y |", false, []string{" x ", "y"}},
		{`| trailing \|`, true, []string{`trailing \|`}},
		{"| it`s | 2 | 3 |", true, []string{"it`s", "2", "3"}},
		{"| ``a|b`` | `c |", true, []string{"``a|b``", "`c"}},
		{"| ``a` | b |", true, []string{"``a`", "b"}},
		{"| it\\`s | `x|y` |", true, []string{"it\\`s", "`x|y`"}},
	}

	for _, tt := range tests {
		result := SplitRow(tt.input, "|", tt.strip)
		if !reflect.DeepEqual(result, tt.expected) {
			t.Errorf("SplitRow(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestEncodeCell(t *testing.T) {
	tests := []struct {
		input    string
		strip    bool
		expected string
	}{
		{"plain", true, "plain"},
		{"a|b", true, `a\|b`},
		{`a\|b`, true, `a\|b`},
		{"`x|y` and z|w", true, "`x|y` and z\\|w"},
		{"||", true, `\|\|`},
		{"", true, ""},
		{"line1\nline2", true, "line1<br>line2"},
		{"a\r\nb\rc", true, "a<br>b<br>c"},
		{"it`s", true, "it\\`s"},
		{"``a` b", true, "\\`\\`a\\` b"},
		{"`a` b`", true, "`a` b\\`"},
		{" padded \n", true, "padded"},
		{" padded ", false, " padded "},
	}

	for _, tt := range tests {
		result := EncodeCell(tt.input, tt.strip)
		if result != tt.expected {
			t.Errorf("EncodeCell(%q, %v) = %q, expected %q", tt.input, tt.strip, result, tt.expected)
		}
	}
}

func TestDecodeCell(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`a\|b`, "a|b"},
		{"line1<br>line2<br/>line3", "line1\nline2\nline3"},
		{"it\\`s", "it`s"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if result := DecodeCell(tt.input); result != tt.expected {
			t.Errorf("DecodeCell(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestEncodedCellsSplitBack(t *testing.T) {
	values := []string{"it`s", "a|b", "`x|y`", "two\nlines", "``", `back\`, "<b>", ""}
	for _, v := range values {
		line := "| " + EncodeCell(v, true) + " | end |"
		cells := SplitRow(line, "|", true)
		if len(cells) != 2 || cells[0] != EncodeCell(v, true) || cells[1] != "end" {
			t.Errorf("SplitRow(%q) = %q, expected [%q end]", line, cells, EncodeCell(v, true))
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"1,234.5", 1234.5, true},
		{" 42 ", 42, true},
		{"-3", -3, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		result, ok := ParseNumber(tt.input)
		if ok != tt.ok || result != tt.expected {
			t.Errorf("ParseNumber(%q) = %v, %v, expected %v, %v", tt.input, result, ok, tt.expected, tt.ok)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"hello", "hello"},
		{"", ""},
	}

	for _, tt := range tests {
		result := ParseValue(tt.input)
		if result != tt.expected {
			t.Errorf("ParseValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}
