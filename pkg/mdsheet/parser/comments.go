package parser

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Scope names the owner of a metadata sentinel comment.
type Scope string

const (
	ScopeWorkbook Scope = "workbook"
	ScopeSheet    Scope = "sheet"
	ScopeTable    Scope = "table"
)

const (
	commentPrefix = "<!-- md-spreadsheet-"
	commentSuffix = "-->"
	metadataTag   = "-metadata:"
)

// Comment renders a sentinel comment carrying v as JSON.
// HTML escaping is disabled so the payload stays readable in the buffer.
func Comment(scope Scope, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	payload := strings.TrimRight(buf.String(), "\n")
	return commentPrefix + string(scope) + metadataTag + " " + payload + " " + commentSuffix, nil
}

// ParseComment recognizes a single-line sentinel comment and returns its scope and payload.
func ParseComment(line string) (Scope, []byte, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, commentPrefix) || !strings.HasSuffix(s, commentSuffix) {
		return "", nil, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(s, commentPrefix), commentSuffix)
	idx := strings.Index(body, metadataTag)
	if idx <= 0 {
		return "", nil, false
	}
	scope := Scope(body[:idx])
	switch scope {
	case ScopeWorkbook, ScopeSheet, ScopeTable:
	default:
		return "", nil, false
	}
	payload := strings.TrimSpace(body[idx+len(metadataTag):])
	if !json.Valid([]byte(payload)) {
		return "", nil, false
	}
	return scope, []byte(payload), true
}
