package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies a domain failure for the web layer's status mapping.
type ErrorKind string

// Error kinds.
const (
	// KindValidation marks inputs that violate model invariants.
	KindValidation ErrorKind = "validation"
	// KindState marks operations inadmissible in the current lifecycle state.
	KindState ErrorKind = "state"
	// KindAuth marks a principal lacking an effective permission.
	KindAuth ErrorKind = "auth"
	// KindNotFound marks an absent row, or an author mismatch on private
	// reads (intentionally indistinguishable to avoid existence disclosure).
	KindNotFound ErrorKind = "not_found"
	// KindInfra marks storage, template, or rendering infrastructure failures.
	KindInfra ErrorKind = "infra"
)

// Error is the structured domain error carrying an optional set of
// field-level messages.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, strings.Join(parts, "; "))
}

// WithField attaches a field-level message and returns the error.
func (e *Error) WithField(field, message string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string, 1)
	}
	e.Fields[field] = message
	return e
}

// Validationf builds a VALIDATION error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Statef builds a STATE error.
func Statef(format string, args ...any) *Error {
	return &Error{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}

// Authf builds an AUTH error.
func Authf(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NOT_FOUND error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Infraf builds an INFRA error wrapping an underlying cause message.
func Infraf(format string, args ...any) *Error {
	return &Error{Kind: KindInfra, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind, defaulting to KindInfra for foreign errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	var rv RuleViolationError
	if errors.As(err, &rv) {
		return KindValidation
	}
	return KindInfra
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
