package pgmodel

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/jackc/pgmodel/pgtype"
)

type projectionField struct {
	expression string
	typeName   string // empty for untyped fields
}

// Projection is the list of output fields of a query. Each field has a SQL expression and, unless it is computed by an
// expression with no codec, a declared type. Expressions refer to fields with the %:name:% token which is replaced by
// the quoted field name, optionally prefixed with a table alias.
type Projection struct {
	entityType *EntityType
	names      []string
	fields     map[string]projectionField
}

// NewProjection returns a projection of every field of structure for records of type t. structure may be nil for an
// initially empty projection.
func NewProjection(t *EntityType, structure *RowStructure) *Projection {
	p := &Projection{
		entityType: t,
		fields:     make(map[string]projectionField),
	}

	if structure != nil {
		for _, name := range structure.fieldNames {
			p.names = append(p.names, name)
			p.fields[name] = projectionField{expression: fieldToken(name), typeName: structure.fieldTypes[name]}
		}
	}

	return p
}

func fieldToken(name string) string {
	return "%:" + name + ":%"
}

func (p *Projection) EntityType() *EntityType {
	return p.entityType
}

// Clone returns a copy of p that can be modified independently.
func (p *Projection) Clone() *Projection {
	fields := make(map[string]projectionField, len(p.fields))
	for k, v := range p.fields {
		fields[k] = v
	}

	return &Projection{
		entityType: p.entityType,
		names:      slices.Clone(p.names),
		fields:     fields,
	}
}

// SetField adds or replaces the field name. typeName may be empty for an untyped field whose value is passed through
// unconverted.
func (p *Projection) SetField(name, expression, typeName string) error {
	if name == "" {
		return errors.New("field name cannot be empty")
	}
	if expression == "" {
		return errors.New("field expression cannot be empty")
	}

	if _, present := p.fields[name]; !present {
		p.names = append(p.names, name)
	}
	p.fields[name] = projectionField{expression: expression, typeName: typeName}

	return nil
}

// SetFieldType changes the declared type of an existing field.
func (p *Projection) SetFieldType(name, typeName string) error {
	f, present := p.fields[name]
	if !present {
		return p.unknownField(name)
	}

	f.typeName = typeName
	p.fields[name] = f
	return nil
}

// UnsetField removes the field name. Removing a field that is not present is not an error.
func (p *Projection) UnsetField(name string) {
	if _, present := p.fields[name]; !present {
		return
	}

	delete(p.fields, name)
	p.names = slices.DeleteFunc(p.names, func(s string) bool { return s == name })
}

func (p *Projection) HasField(name string) bool {
	_, present := p.fields[name]
	return present
}

// FieldNames returns the field names in projection order.
func (p *Projection) FieldNames() []string {
	return slices.Clone(p.names)
}

// FieldTypes returns the declared type of every field as set, array suffix included. Untyped fields map to "".
func (p *Projection) FieldTypes() map[string]string {
	types := make(map[string]string, len(p.fields))
	for name, f := range p.fields {
		types[name] = f.typeName
	}
	return types
}

// FieldType returns the declared type of the field name with any array suffix removed. The result is "" for an
// untyped field.
func (p *Projection) FieldType(name string) (string, error) {
	f, present := p.fields[name]
	if !present {
		return "", p.unknownField(name)
	}
	return strings.TrimSuffix(f.typeName, pgtype.ArraySuffix), nil
}

// IsArray reports whether the declared type of the field name is an array type.
func (p *Projection) IsArray(name string) (bool, error) {
	f, present := p.fields[name]
	if !present {
		return false, p.unknownField(name)
	}
	return strings.HasSuffix(f.typeName, pgtype.ArraySuffix), nil
}

// FieldWithTableAlias returns the expression of the field name with every field token replaced.
func (p *Projection) FieldWithTableAlias(name, tableAlias string) (string, error) {
	f, present := p.fields[name]
	if !present {
		return "", p.unknownField(name)
	}
	return replaceFieldTokens(f.expression, tableAlias), nil
}

// FieldsWithTableAlias returns the expression of every field, in projection order, with every field token replaced.
func (p *Projection) FieldsWithTableAlias(tableAlias string) []string {
	exprs := make([]string, len(p.names))
	for i, name := range p.names {
		exprs[i] = replaceFieldTokens(p.fields[name].expression, tableAlias)
	}
	return exprs
}

// FormatFields returns the comma separated expressions of every field.
func (p *Projection) FormatFields(tableAlias string) string {
	return strings.Join(p.FieldsWithTableAlias(tableAlias), ", ")
}

// FormatFieldsWithFieldAlias returns the comma separated expressions of every field each followed by as "<name>". The
// result is suitable for a SELECT or RETURNING list.
func (p *Projection) FormatFieldsWithFieldAlias(tableAlias string) string {
	exprs := p.FieldsWithTableAlias(tableAlias)

	var sb strings.Builder
	for i, name := range p.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(exprs[i])
		sb.WriteString(` as "`)
		sb.WriteString(fieldAliasReplacer.Replace(name))
		sb.WriteByte('"')
	}
	return sb.String()
}

func (p *Projection) String() string {
	return p.FormatFieldsWithFieldAlias("")
}

func (p *Projection) unknownField(name string) error {
	owner := "projection"
	if p.entityType != nil {
		owner = "projection of " + p.entityType.Name
	}
	return &UnknownFieldError{Field: name, Owner: owner, Available: p.FieldNames()}
}

var (
	fieldTokenRegexp   = regexp.MustCompile(`%:(.*?):%`)
	fieldAliasReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
)

func replaceFieldTokens(expression, tableAlias string) string {
	prefix := ""
	if tableAlias != "" {
		prefix = tableAlias + "."
	}

	return fieldTokenRegexp.ReplaceAllStringFunc(expression, func(token string) string {
		name := token[2 : len(token)-2]
		return prefix + `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	})
}
