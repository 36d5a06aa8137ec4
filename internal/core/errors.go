package core

import (
	"sort"
	"strings"
)

// Validation messages, keyed the way the API reports them.
const (
	MsgBlank       = "can't be blank"
	MsgNotANumber  = "is not a number"
	MsgTaken       = "has already been taken"
	MsgNotIncluded = "is not included in the list"
	MsgInvalid     = "is invalid"
)

// FieldErrors maps a field name to its validation failure messages. It
// is the payload of every 422 response.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Any reports whether at least one field failed validation.
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

// Error formats the failures as "field msg; field msg", fields sorted
// for stable output.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, f := range fields {
		for j, msg := range e[f] {
			if i > 0 || j > 0 {
				b.WriteString("; ")
			}
			b.WriteString(f)
			b.WriteString(" ")
			b.WriteString(msg)
		}
	}
	return b.String()
}
