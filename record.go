package pgmodel

import (
	"fmt"
	"maps"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is a set of bit flags describing a record relative to the database.
type Status int

const (
	// StatusNone is the status of a record that is not known to the database.
	StatusNone Status = 0
	// StatusExists is set when a record was read from or written to the database.
	StatusExists Status = 1
	// StatusModified is set when a field of a record was changed since its last known state.
	StatusModified Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusExists:
		return "exists"
	case StatusModified:
		return "modified"
	case StatusExists | StatusModified:
		return "exists|modified"
	default:
		return fmt.Sprintf("invalid status %d", int(s))
	}
}

// ComputedField is a read-only field whose value is derived from the other fields of a record.
type ComputedField struct {
	Name  string
	Value func(r *Record) any
}

// EntityType describes a kind of record. Records of different entity types never share an identity even when their
// primary keys are equal. EntityType values are compared by pointer: two values sharing a Name are still distinct types
// and their records get distinct identities.
type EntityType struct {
	Name     string
	Computed []ComputedField
}

func (t *EntityType) computedField(name string) (ComputedField, bool) {
	if t == nil {
		return ComputedField{}, false
	}
	for _, c := range t.Computed {
		if c.Name == name {
			return c, true
		}
	}
	return ComputedField{}, false
}

// Record is a hydrated entity: a set of named values of an entity type and a status. A Record is not safe for
// concurrent use.
type Record struct {
	entityType *EntityType
	values     map[string]any
	status     Status
	modified   []string
}

// NewRecord returns a record of type t holding a copy of values. Its status is StatusNone.
func NewRecord(t *EntityType, values map[string]any) *Record {
	r := &Record{entityType: t, values: make(map[string]any, len(values))}
	maps.Copy(r.values, values)
	return r
}

func (r *Record) Type() *EntityType {
	return r.entityType
}

// Get returns the value of the field or computed field name. It fails if there is no such field.
func (r *Record) Get(name string) (any, error) {
	if v, present := r.values[name]; present {
		return v, nil
	}
	if c, ok := r.entityType.computedField(name); ok {
		return c.Value(r), nil
	}

	return nil, r.unknownField(name)
}

// Value returns the value of the field name or nil if it is not set.
func (r *Record) Value(name string) any {
	return r.values[name]
}

// Set sets the field name to value and marks the record modified.
func (r *Record) Set(name string, value any) {
	r.values[name] = value
	r.touchField(name)
}

// Has reports whether the field name is set. A field set to nil is set.
func (r *Record) Has(name string) bool {
	_, present := r.values[name]
	return present
}

// Clear removes the field name and marks the record modified.
func (r *Record) Clear(name string) {
	delete(r.values, name)
	r.touchField(name)
}

// Add appends value to the array field name. An unset or nil field becomes a one element array.
func (r *Record) Add(name string, value any) error {
	switch current := r.values[name].(type) {
	case nil:
		r.values[name] = []any{value}
	case []any:
		r.values[name] = append(current, value)
	default:
		return fmt.Errorf("cannot add to field %q: %T is not []any", name, current)
	}

	r.touchField(name)
	return nil
}

// Fields returns the named fields. With no names every field that is set is returned. Computed fields may be named.
func (r *Record) Fields(names ...string) (map[string]any, error) {
	if len(names) == 0 {
		return maps.Clone(r.values), nil
	}

	fields := make(map[string]any, len(names))
	for _, name := range names {
		v, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		fields[name] = v
	}
	return fields, nil
}

// FieldNames returns the sorted names of the fields that are set.
func (r *Record) FieldNames() []string {
	return slices.Sorted(maps.Keys(r.values))
}

// Hydrate sets every field of values. The status is not changed.
func (r *Record) Hydrate(values map[string]any) *Record {
	maps.Copy(r.values, values)
	return r
}

var lowerCaser = cases.Lower(language.Und)

// Convert hydrates r with values after lower casing the field names. This matches the folding PostgreSQL applies to
// unquoted identifiers.
func (r *Record) Convert(values map[string]any) *Record {
	converted := make(map[string]any, len(values))
	for k, v := range values {
		converted[lowerCaser.String(k)] = v
	}
	return r.Hydrate(converted)
}

// Extract returns the fields and computed fields of r as a map. Nested records, including records in []any values,
// are extracted recursively. Records must not form cycles; use Ref for back references.
func (r *Record) Extract() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = extractValue(v)
	}
	if r.entityType != nil {
		for _, c := range r.entityType.Computed {
			out[c.Name] = extractValue(c.Value(r))
		}
	}
	return out
}

func extractValue(v any) any {
	switch v := v.(type) {
	case *Record:
		if v == nil {
			return nil
		}
		return v.Extract()
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = extractValue(v[i])
		}
		return out
	default:
		return v
	}
}

func (r *Record) Status() Status {
	return r.status
}

// SetStatus replaces the status of r. Clearing StatusModified forgets the modified columns.
func (r *Record) SetStatus(s Status) *Record {
	r.status = s
	if s&StatusModified == 0 {
		r.modified = nil
	}
	return r
}

// Touch marks r modified.
func (r *Record) Touch() *Record {
	r.status |= StatusModified
	return r
}

// ModifiedColumns returns the names of the fields changed since r was last marked unmodified, in order of first
// change.
func (r *Record) ModifiedColumns() []string {
	return slices.Clone(r.modified)
}

func (r *Record) touchField(name string) {
	r.Touch()
	if !slices.Contains(r.modified, name) {
		r.modified = append(r.modified, name)
	}
}

func (r *Record) unknownField(name string) error {
	owner := "record"
	if r.entityType != nil {
		owner = "record of type " + r.entityType.Name
	}

	available := r.FieldNames()
	if r.entityType != nil {
		for _, c := range r.entityType.Computed {
			available = append(available, c.Name)
		}
	}
	return &UnknownFieldError{Field: name, Owner: owner, Available: available}
}

// Ref refers to a record by entity type and primary key values without holding it. It is resolved through
// IdentityMapper.Resolve. Records referring back to records that refer to them should hold a Ref instead of the
// record itself.
type Ref struct {
	Type *EntityType
	Key  map[string]any
}
