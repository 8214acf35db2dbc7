package pgmodel

import (
	"context"
	"fmt"

	"github.com/jackc/pgmodel/pgtype"
)

// EntityCodec is the pgtype.Codec of a composite type whose values are records of one entity type. Decoded records
// are admitted to an IdentityMapper so that every decode of the same primary key returns the same record.
//
// Fields of a composite type that are themselves composite types, or arrays of them, are decoded and encoded by the
// codecs registered for those types in the type map. Registering an EntityCodec for each of them makes decoding and
// encoding recurse through the whole record graph.
type EntityCodec struct {
	entityType *EntityType
	structure  *RowStructure
	projection *Projection
	mapper     *IdentityMapper
	strict     bool

	logger   Logger
	logLevel LogLevel

	plans map[*pgtype.Map]*HydrationPlan
}

// NewEntityCodec returns a codec for records of type t with the fields of structure. mapper may be nil in which case
// decoded records are never merged.
func NewEntityCodec(t *EntityType, structure *RowStructure, mapper *IdentityMapper) *EntityCodec {
	return &EntityCodec{
		entityType: t,
		structure:  structure,
		projection: NewProjection(t, structure),
		mapper:     mapper,
	}
}

func (c *EntityCodec) EntityType() *EntityType {
	return c.entityType
}

func (c *EntityCodec) Structure() *RowStructure {
	return c.structure
}

// Projection returns a copy of the projection of every field of the structure. It can be modified and passed to
// DecodeProjection.
func (c *EntityCodec) Projection() *Projection {
	return c.projection.Clone()
}

// plan returns the hydration plan of the structure in m. Plans are built on first use so codecs of nested types may
// be registered in any order.
func (c *EntityCodec) plan(m *pgtype.Map) (*HydrationPlan, error) {
	if plan, ok := c.plans[m]; ok {
		return plan, nil
	}

	plan, err := NewHydrationPlan(c.projection, m)
	if err != nil {
		return nil, err
	}

	if c.plans == nil {
		c.plans = make(map[*pgtype.Map]*HydrationPlan)
	}
	c.plans[m] = plan
	return plan, nil
}

func (c *EntityCodec) resetPlans() {
	c.plans = nil
}

// DecodeText decodes the text of a composite value into a *Record. Both SQL NULL and a composite with no field text
// such as () decode to nil. The record is admitted to the identity mapper and the kept record is returned.
func (c *EntityCodec) DecodeText(m *pgtype.Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	plan, err := c.plan(m)
	if err != nil {
		return nil, err
	}

	r, err := c.decode(plan, typeName, src)
	if r == nil || err != nil {
		return nil, err
	}

	return c.CacheRecord(r), nil
}

// DecodeProjection decodes src with a caller supplied projection instead of the projection of the structure. The
// fields of src must match projection in number and order.
func (c *EntityCodec) DecodeProjection(m *pgtype.Map, projection *Projection, src []byte) (*Record, error) {
	if src == nil {
		return nil, nil
	}

	plan, err := NewHydrationPlan(projection, m)
	if err != nil {
		return nil, err
	}

	r, err := c.decode(plan, c.sqlTypeName(""), src)
	if r == nil || err != nil {
		return nil, err
	}

	return c.CacheRecord(r), nil
}

func (c *EntityCodec) decode(plan *HydrationPlan, typeName string, src []byte) (*Record, error) {
	inner, ok, err := pgtype.StripCompositeParens(src)
	if err != nil {
		return nil, c.parseError(typeName, src, err)
	}
	if !ok {
		return nil, nil
	}

	fields, err := pgtype.ParseCompositeFields(inner)
	if err != nil {
		return nil, c.parseError(typeName, src, err)
	}

	names := plan.projection.names
	if len(fields) != len(names) {
		return nil, c.parseError(typeName, src, fmt.Errorf("got %d fields, projection has %d (%v)", len(fields), len(names), names))
	}

	values := make(map[string][]byte, len(names))
	for i, name := range names {
		values[name] = fields[i]
	}

	r, err := plan.Hydrate(values)
	if err != nil {
		err = fmt.Errorf("cannot decode %s: %w", typeName, err)
		c.log(LogLevelError, "decode failed", map[string]any{"type": typeName, "text": logText(src), "err": err})
		return nil, err
	}

	return r, nil
}

func (c *EntityCodec) parseError(typeName string, src []byte, err error) error {
	c.log(LogLevelError, "decode failed", map[string]any{"type": typeName, "text": logText(src), "err": err})
	return &ParseError{TypeName: typeName, Text: string(src), err: err}
}

// CacheRecord admits r to the identity mapper and returns the record kept for its identity.
func (c *EntityCodec) CacheRecord(r *Record) *Record {
	if c.mapper == nil {
		return r
	}

	kept, merged := c.mapper.admit(r, c.structure.primaryKey)
	if merged {
		c.log(LogLevelTrace, "merged record", map[string]any{"entity": c.entityType.Name, "fields": r.FieldNames()})
	}
	return kept
}

// Ref returns a reference to r by its primary key. ok is false if r has no identity.
func (c *EntityCodec) Ref(r *Record) (ref Ref, ok bool) {
	pk := c.structure.primaryKey
	if len(pk) == 0 {
		return Ref{}, false
	}

	key := make(map[string]any, len(pk))
	for _, name := range pk {
		v, present := r.values[name]
		if !present {
			return Ref{}, false
		}
		key[name] = v
	}
	return Ref{Type: c.entityType, Key: key}, true
}

// EncodeSQL encodes value as row(...)::type where each field is a typed SQL expression. value must be a *Record of
// the codec's entity type or a map[string]any. Only the fields that are both set and declared in the structure are
// encoded, in structure order. nil is encoded as NULL::type.
func (c *EntityCodec) EncodeSQL(m *pgtype.Map, typeName string, value any) (string, error) {
	sqlTypeName := c.sqlTypeName(typeName)

	names, values, err := c.selectFields(sqlTypeName, value)
	if err != nil {
		return "", err
	}
	if names == nil {
		return "NULL::" + sqlTypeName, nil
	}

	plan, err := c.plan(m)
	if err != nil {
		return "", err
	}

	dried, err := plan.Dry(values)
	if err != nil {
		c.log(LogLevelError, "encode failed", map[string]any{"type": sqlTypeName, "err": err})
		return "", fmt.Errorf("cannot encode %s: %w", sqlTypeName, err)
	}

	fields := make([]string, len(names))
	for i, name := range names {
		fields[i] = dried[name]
	}

	return pgtype.EncodeCompositeSQL(fields, sqlTypeName), nil
}

// EncodeText appends the standard composite text format (f1,f2,...) of value to buf. The fields are selected as by
// EncodeSQL. nil is SQL NULL and returns a nil slice.
func (c *EntityCodec) EncodeText(m *pgtype.Map, typeName string, value any, buf []byte) ([]byte, error) {
	sqlTypeName := c.sqlTypeName(typeName)

	names, values, err := c.selectFields(sqlTypeName, value)
	if err != nil {
		return nil, err
	}
	if names == nil {
		return nil, nil
	}

	plan, err := c.plan(m)
	if err != nil {
		return nil, err
	}

	frozen, err := plan.Freeze(values)
	if err != nil {
		c.log(LogLevelError, "encode failed", map[string]any{"type": sqlTypeName, "err": err})
		return nil, fmt.Errorf("cannot encode %s: %w", sqlTypeName, err)
	}

	fields := make([][]byte, len(names))
	for i, name := range names {
		fields[i] = frozen[name]
	}

	return pgtype.EncodeCompositeText(buf, fields), nil
}

// selectFields returns the names and values of the fields of value to encode. names is nil when value is NULL.
func (c *EntityCodec) selectFields(typeName string, value any) (names []string, values map[string]any, err error) {
	var fields map[string]any

	switch v := value.(type) {
	case nil:
		return nil, nil, nil
	case *Record:
		if v == nil {
			return nil, nil, nil
		}
		if v.entityType != c.entityType {
			return nil, nil, &TypeMismatchError{TypeName: typeName, Expected: c.entityType.Name, Value: value}
		}
		fields = v.values
	case map[string]any:
		if v == nil {
			return nil, nil, nil
		}
		fields = v
	default:
		return nil, nil, &TypeMismatchError{TypeName: typeName, Expected: c.entityType.Name, Value: value}
	}

	if c.strict {
		for name := range fields {
			if !c.structure.HasField(name) {
				return nil, nil, c.structure.unknownField(name)
			}
		}
	}

	names = make([]string, 0, len(fields))
	values = make(map[string]any, len(fields))
	for _, name := range c.structure.fieldNames {
		if v, present := fields[name]; present {
			names = append(names, name)
			values[name] = v
		}
	}

	return names, values, nil
}

// sqlTypeName is the type name used in casts. The relation of the structure is preferred over the name the codec was
// resolved under since that may be an alias such as the entity type name.
func (c *EntityCodec) sqlTypeName(typeName string) string {
	if c.structure.relation != "" {
		return c.structure.relation
	}
	return typeName
}

func (c *EntityCodec) log(level LogLevel, msg string, data map[string]any) {
	if c.logger == nil || level > c.logLevel {
		return
	}
	c.logger.Log(context.Background(), level, msg, data)
}
