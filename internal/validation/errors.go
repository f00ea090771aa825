package validation

import (
	"fmt"
	"sort"
	"strings"
)

// NonFieldErrors is the key for failures that do not belong to one input field.
const NonFieldErrors = "non_field_errors"

// Messages shared by the serializers.
const (
	MsgRequired      = "This field is required."
	MsgBlank         = "This field may not be blank."
	MsgNull          = "This field may not be null."
	MsgInvalidNumber = "A valid number is required."
	MsgInvalidInt    = "A valid integer is required."
)

// Errors maps an input field to the messages describing why it was rejected.
// It is rendered as-is in 400 responses.
type Errors map[string][]string

// New returns an empty Errors.
func New() Errors {
	return Errors{}
}

// Field returns Errors holding a single message for field.
func Field(field, msg string) Errors {
	return Errors{field: {msg}}
}

// Add appends msg to field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Merge copies every message of other into e.
func (e Errors) Merge(other Errors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

// Has reports whether field already carries a message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Err returns nil when e is empty so callers can write `return errs.Err()`.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
