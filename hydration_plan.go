package pgmodel

import (
	"fmt"

	"github.com/jackc/pgmodel/pgtype"
)

// HydrationPlan binds a projection to the codecs of a type map. The codec of every typed field is resolved once when
// the plan is built. Fields with an array type use an array codec over the element type.
type HydrationPlan struct {
	projection *Projection
	typeMap    *pgtype.Map
	codecs     map[string]pgtype.Codec
	typeNames  map[string]string // type name passed to the codec, array suffix included
}

// NewHydrationPlan resolves the codec of every typed field of projection in m. It fails with a *NoCodecError if a
// type is not registered.
func NewHydrationPlan(projection *Projection, m *pgtype.Map) (*HydrationPlan, error) {
	plan := &HydrationPlan{
		projection: projection,
		typeMap:    m,
		codecs:     make(map[string]pgtype.Codec, len(projection.names)),
		typeNames:  make(map[string]string, len(projection.names)),
	}

	for _, name := range projection.names {
		typeName := projection.fields[name].typeName
		if typeName == "" {
			continue
		}

		var codec pgtype.Codec
		var err error
		if isArray, _ := projection.IsArray(name); isArray {
			elementName, _ := projection.FieldType(name)
			codec, err = m.ResolveArray(elementName)
		} else {
			codec, err = m.Resolve(typeName)
		}
		if err != nil {
			return nil, &NoCodecError{Field: name, TypeName: typeName, err: err}
		}

		plan.codecs[name] = codec
		plan.typeNames[name] = typeName
	}

	return plan, nil
}

func (p *HydrationPlan) Projection() *Projection {
	return p.projection
}

// FieldType returns the element type of the field name. See Projection.FieldType.
func (p *HydrationPlan) FieldType(name string) (string, error) {
	return p.projection.FieldType(name)
}

// IsArray reports whether the field name has an array type.
func (p *HydrationPlan) IsArray(name string) (bool, error) {
	return p.projection.IsArray(name)
}

// ConverterForField returns the codec resolved for the field name. It fails if the field is unknown or untyped.
func (p *HydrationPlan) ConverterForField(name string) (pgtype.Codec, error) {
	codec, ok := p.codecs[name]
	if !ok {
		return nil, p.unknownField(name)
	}
	return codec, nil
}

// Convert decodes the text of every typed field in values. NULL is a nil slice. Untyped fields and keys that are not
// fields of the projection are kept as a string, or nil for NULL.
func (p *HydrationPlan) Convert(values map[string][]byte) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for name, src := range values {
		codec, ok := p.codecs[name]
		if !ok {
			if src == nil {
				out[name] = nil
			} else {
				out[name] = string(src)
			}
			continue
		}

		v, err := codec.DecodeText(p.typeMap, p.typeNames[name], src)
		if err != nil {
			return nil, &FieldError{Field: name, err: err}
		}
		out[name] = v
	}

	return out, nil
}

// Hydrate converts values and returns a new record of the projection's entity type holding them.
func (p *HydrationPlan) Hydrate(values map[string][]byte) (*Record, error) {
	converted, err := p.Convert(values)
	if err != nil {
		return nil, err
	}
	return NewRecord(p.projection.entityType, converted), nil
}

// Dry encodes every typed field in values as a SQL expression. Other values are kept as is when they are strings,
// become NULL when nil and are formatted with fmt otherwise.
func (p *HydrationPlan) Dry(values map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for name, v := range values {
		codec, ok := p.codecs[name]
		if !ok {
			switch v := v.(type) {
			case nil:
				out[name] = "NULL"
			case string:
				out[name] = v
			default:
				out[name] = fmt.Sprint(v)
			}
			continue
		}

		s, err := codec.EncodeSQL(p.typeMap, p.typeNames[name], v)
		if err != nil {
			return nil, &FieldError{Field: name, err: err}
		}
		out[name] = s
	}

	return out, nil
}

// Freeze encodes every typed field in values in the standard text format. NULL is a nil slice. Other values are kept
// as text.
func (p *HydrationPlan) Freeze(values map[string]any) (map[string][]byte, error) {
	out := make(map[string][]byte, len(values))
	for name, v := range values {
		codec, ok := p.codecs[name]
		if !ok {
			switch v := v.(type) {
			case nil:
				out[name] = nil
			case []byte:
				out[name] = v
			case string:
				out[name] = []byte(v)
			default:
				out[name] = []byte(fmt.Sprint(v))
			}
			continue
		}

		buf, err := codec.EncodeText(p.typeMap, p.typeNames[name], v, nil)
		if err != nil {
			return nil, &FieldError{Field: name, err: err}
		}
		out[name] = buf
	}

	return out, nil
}

func (p *HydrationPlan) unknownField(name string) error {
	owner := "hydration plan"
	if p.projection.entityType != nil {
		owner = "hydration plan of " + p.projection.entityType.Name
	}

	available := make([]string, 0, len(p.codecs))
	for _, n := range p.projection.names {
		if _, ok := p.codecs[n]; ok {
			available = append(available, n)
		}
	}
	return &UnknownFieldError{Field: name, Owner: owner, Available: available}
}
