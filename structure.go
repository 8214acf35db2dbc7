package pgmodel

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// RowStructure describes a relation or composite type: its name, its fields in declaration order with their
// PostgreSQL type names and the fields forming its primary key. A type name ending in "[]" declares an array field.
type RowStructure struct {
	relation   string
	fieldNames []string
	fieldTypes map[string]string
	primaryKey []string
}

// NewRowStructure returns an empty structure.
func NewRowStructure() *RowStructure {
	return &RowStructure{fieldTypes: make(map[string]string)}
}

// AddField declares a field. A field that is already declared keeps its position and gets the new type.
func (s *RowStructure) AddField(name, typeName string) error {
	if name == "" {
		return errors.New("field name cannot be empty")
	}
	if typeName == "" {
		return fmt.Errorf("type of field %q cannot be empty", name)
	}

	if _, present := s.fieldTypes[name]; !present {
		s.fieldNames = append(s.fieldNames, name)
	}
	s.fieldTypes[name] = typeName

	return nil
}

// SetDefinition adds every field of definition. Fields are added in the sorted order of their names since a map has
// no order. Use AddField to control the order.
func (s *RowStructure) SetDefinition(definition map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(definition)) {
		if err := s.AddField(name, definition[name]); err != nil {
			return err
		}
	}
	return nil
}

// Inherits adds every field of other after the fields already declared. This models table inheritance.
func (s *RowStructure) Inherits(other *RowStructure) error {
	for _, name := range other.fieldNames {
		if err := s.AddField(name, other.fieldTypes[name]); err != nil {
			return err
		}
	}
	return nil
}

// SetRelation sets the name of the relation or composite type, possibly schema qualified.
func (s *RowStructure) SetRelation(relation string) {
	s.relation = relation
}

func (s *RowStructure) Relation() string {
	return s.relation
}

// SetPrimaryKey sets the fields forming the primary key. Every name must be a declared field. An empty primary key
// means records of this structure have no identity.
func (s *RowStructure) SetPrimaryKey(names ...string) error {
	for _, name := range names {
		if !s.HasField(name) {
			return s.unknownField(name)
		}
	}

	s.primaryKey = slices.Clone(names)
	return nil
}

func (s *RowStructure) PrimaryKey() []string {
	return slices.Clone(s.primaryKey)
}

// FieldNames returns the declared field names in declaration order.
func (s *RowStructure) FieldNames() []string {
	return slices.Clone(s.fieldNames)
}

func (s *RowStructure) HasField(name string) bool {
	_, present := s.fieldTypes[name]
	return present
}

// TypeFor returns the declared type of the field name.
func (s *RowStructure) TypeFor(name string) (string, error) {
	typeName, present := s.fieldTypes[name]
	if !present {
		return "", s.unknownField(name)
	}
	return typeName, nil
}

// Definition returns a copy of the field name to type mapping.
func (s *RowStructure) Definition() map[string]string {
	return maps.Clone(s.fieldTypes)
}

func (s *RowStructure) unknownField(name string) error {
	owner := "structure"
	if s.relation != "" {
		owner = "structure " + s.relation
	}
	return &UnknownFieldError{Field: name, Owner: owner, Available: s.FieldNames()}
}
