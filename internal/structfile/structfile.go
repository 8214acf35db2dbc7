// Package structfile loads entity structures from YAML definition files.
//
// A file lists entities in dependency order. An entity may inherit the fields of an entity defined before it.
//
//	entities:
//	  - name: ComplexNumber
//	    relation: pomm_test.complex_number
//	    aliases: [complex_number]
//	    fields:
//	      - {name: real, type: float8}
//	      - {name: imaginary, type: float8}
//	  - name: ComplexFixture
//	    relation: complex_fixture
//	    primary_key: [id, version_id]
//	    fields:
//	      - {name: id, type: int4}
//	      - {name: version_id, type: int4}
//	      - {name: complex_number, type: complex_number}
//	      - {name: complex_numbers, type: "complex_number[]"}
package structfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgmodel"
	"gopkg.in/yaml.v3"
)

type file struct {
	Entities []entity `yaml:"entities"`
}

type entity struct {
	Name       string   `yaml:"name"`
	Relation   string   `yaml:"relation"`
	Aliases    []string `yaml:"aliases"`
	Inherits   string   `yaml:"inherits"`
	PrimaryKey []string `yaml:"primary_key"`
	Fields     []field  `yaml:"fields"`
}

type field struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Entity is an entity type with its structure and the extra names it is registered under.
type Entity struct {
	Type      *pgmodel.EntityType
	Structure *pgmodel.RowStructure
	Aliases   []string
}

// Load reads the definition file at path.
func Load(path string) ([]Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading structure file: %w", err)
	}

	entities, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entities, nil
}

// Parse reads definitions from r. Unknown keys are an error.
func Parse(r io.Reader) ([]Entity, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	byName := make(map[string]*pgmodel.RowStructure, len(f.Entities))
	entities := make([]Entity, 0, len(f.Entities))
	for i, e := range f.Entities {
		if e.Name == "" {
			return nil, fmt.Errorf("entity %d has no name", i)
		}
		if _, ok := byName[e.Name]; ok {
			return nil, fmt.Errorf("entity %s is defined twice", e.Name)
		}

		s, err := e.structure(byName)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", e.Name, err)
		}

		byName[e.Name] = s
		entities = append(entities, Entity{
			Type:      &pgmodel.EntityType{Name: e.Name},
			Structure: s,
			Aliases:   e.Aliases,
		})
	}

	return entities, nil
}

func (e *entity) structure(defined map[string]*pgmodel.RowStructure) (*pgmodel.RowStructure, error) {
	s := pgmodel.NewRowStructure()
	s.SetRelation(e.Relation)

	if e.Inherits != "" {
		parent, ok := defined[e.Inherits]
		if !ok {
			return nil, fmt.Errorf("inherits %s which is not defined before it", e.Inherits)
		}
		if err := s.Inherits(parent); err != nil {
			return nil, err
		}
	}

	for _, f := range e.Fields {
		if err := s.AddField(f.Name, f.Type); err != nil {
			return nil, err
		}
	}

	if len(e.PrimaryKey) > 0 {
		if err := s.SetPrimaryKey(e.PrimaryKey...); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Register registers every entity in session.
func Register(session *pgmodel.Session, entities []Entity) {
	for _, e := range entities {
		session.RegisterEntity(e.Type, e.Structure, e.Aliases...)
	}
}
