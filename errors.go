package pgmodel

import (
	"fmt"
	"strings"
)

// ParseError occurs when the text of a composite value cannot be decoded. This includes malformed quoting or nesting
// and a number of fields that does not match the projection. Text is the raw text received for the value.
type ParseError struct {
	TypeName string
	Text     string
	err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot decode %s from %q: %v", e.TypeName, e.Text, e.err)
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// TypeMismatchError occurs when a value given to an entity codec is neither a record of the codec's entity type nor a
// field map.
type TypeMismatchError struct {
	TypeName string // name of the PostgreSQL type being encoded
	Expected string // name of the entity type of the codec
	Value    any
}

func (e *TypeMismatchError) Error() string {
	if r, ok := e.Value.(*Record); ok && r != nil && r.Type() != nil {
		return fmt.Sprintf("cannot encode record of type %s as %s: expected a record of type %s or a map[string]any", r.Type().Name, e.TypeName, e.Expected)
	}
	return fmt.Sprintf("cannot encode %T as %s: expected a record of type %s or a map[string]any", e.Value, e.TypeName, e.Expected)
}

// UnknownFieldError occurs when a field name is not defined by a structure, projection, hydration plan or record.
type UnknownFieldError struct {
	Field     string
	Owner     string
	Available []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("field %q is not defined in %s. Defined fields are {%s}", e.Field, e.Owner, strings.Join(e.Available, ", "))
}

// NoCodecError occurs when the declared type of a field has no codec in the type map. It wraps the
// *pgtype.UnregisteredTypeError returned by the type map.
type NoCodecError struct {
	Field    string
	TypeName string
	err      error
}

func (e *NoCodecError) Error() string {
	return fmt.Sprintf("no codec for field %q of type %s: %v", e.Field, e.TypeName, e.err)
}

func (e *NoCodecError) Unwrap() error {
	return e.err
}

// FieldError annotates an error from the codec of a single field with the field name.
type FieldError struct {
	Field string
	err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.err)
}

func (e *FieldError) Unwrap() error {
	return e.err
}
