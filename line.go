// FILE: lixenwraith/propbind/line.go
package propbind

import (
	"errors"
	"strings"
)

const (
	// DefaultCommentSign starts a comment line in line-format stores.
	DefaultCommentSign = "#"

	keywordStatic = "static"
	keywordField  = "field"
)

// errNoAssignment marks a non-comment line without '='.
var errNoAssignment = errors.New("line has no '=' sign")

// parseLine parses one physical line of the form
//
//	[static] [field] <dotted.path> = <raw value>
//
// Blank and comment lines come back as passthrough entries. The key clause
// ends at the first '='; the raw value may contain further '=' signs.
func parseLine(raw, commentSign string) (*Entry, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, commentSign) {
		return &Entry{Passthrough: true, Source: trimmed}, nil
	}

	key, value, found := strings.Cut(trimmed, "=")
	if !found {
		return nil, errNoAssignment
	}

	tokens := strings.Fields(key)
	if len(tokens) == 0 {
		return nil, errors.New("line has no property path before '='")
	}

	entry := &Entry{
		Path:   tokens[len(tokens)-1],
		Value:  ParseValue(strings.TrimSpace(value)),
		Source: trimmed,
	}
	// A lone token is always the path, even if it reads "static" or "field".
	if len(tokens) > 1 {
		for _, token := range tokens {
			switch token {
			case keywordStatic:
				entry.IsStatic = true
			case keywordField:
				entry.IsField = true
			}
		}
	}
	return entry, nil
}

// formatLine is the inverse of parseLine. Passthrough entries are written
// back as their source text; bindings are rebuilt in canonical form.
func formatLine(e *Entry) string {
	if e.Passthrough {
		return e.Source
	}

	var b strings.Builder
	if e.IsStatic {
		b.WriteString(keywordStatic + " ")
	}
	if e.IsField {
		b.WriteString(keywordField + " ")
	}
	b.WriteString(e.Path)
	b.WriteString(" =")
	if value := FormatValue(e.Value); value != "" {
		b.WriteString(" ")
		b.WriteString(value)
	}
	return b.String()
}
