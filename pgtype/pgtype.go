package pgtype

import (
	"fmt"
	"sort"
	"strings"
)

// Codec converts between the PostgreSQL text representation of one type and Go values. typeName is the name the codec
// was resolved under. It is needed because one codec can serve several types (int2, int4 and int8 share a codec) and
// because the SQL form carries the type name.
type Codec interface {
	// DecodeText decodes src into a Go value. src is nil for SQL NULL, in which case nil is returned.
	DecodeText(m *Map, typeName string, src []byte) (any, error)

	// EncodeSQL encodes value as a typed SQL expression that can be embedded in a query such as int4 '1'. A nil value
	// is encoded as NULL::typeName.
	EncodeSQL(m *Map, typeName string, value any) (string, error)

	// EncodeText appends the standard text format of value to buf. This is the format PostgreSQL itself uses for
	// values sent as parameters. If value is SQL NULL, nil is returned.
	EncodeText(m *Map, typeName string, value any, buf []byte) (newBuf []byte, err error)
}

// ArraySuffix is the marker appended to a type name to denote an array of that type.
const ArraySuffix = "[]"

// UnregisteredTypeError is returned when a type name has no codec registered in a Map.
type UnregisteredTypeError struct {
	Name string
}

func (e *UnregisteredTypeError) Error() string {
	return fmt.Sprintf("no codec registered for type %q", e.Name)
}

// Map is the map of PostgreSQL type names to codecs. A Map is not safe for concurrent use while codecs are being
// registered.
type Map struct {
	nameToCodec map[string]Codec
}

// NewMap creates a Map with all the builtin codecs registered.
func NewMap() *Map {
	m := &Map{nameToCodec: make(map[string]Codec, 64)}
	registerDefaultCodecs(m)
	return m
}

// RegisterCodec registers codec under name and every alias. An existing registration with the same name is replaced.
func (m *Map) RegisterCodec(name string, codec Codec, aliases ...string) {
	m.nameToCodec[name] = codec
	for _, alias := range aliases {
		m.nameToCodec[alias] = codec
	}
}

// Codec returns the codec registered for name.
func (m *Map) Codec(name string) (Codec, bool) {
	c, ok := m.nameToCodec[name]
	return c, ok
}

// Resolve returns the codec registered for name. If name carries the array suffix an ArrayCodec over the element
// codec is returned.
func (m *Map) Resolve(name string) (Codec, error) {
	if strings.HasSuffix(name, ArraySuffix) {
		return m.ResolveArray(strings.TrimSuffix(name, ArraySuffix))
	}

	if c, ok := m.nameToCodec[name]; ok {
		return c, nil
	}

	return nil, &UnregisteredTypeError{Name: name}
}

// ResolveArray returns an ArrayCodec for arrays of elementName.
func (m *Map) ResolveArray(elementName string) (Codec, error) {
	elem, err := m.Resolve(elementName)
	if err != nil {
		return nil, err
	}

	return &ArrayCodec{ElementName: elementName, Element: elem}, nil
}

// TypeNames returns the sorted names of all registered types.
func (m *Map) TypeNames() []string {
	names := make([]string, 0, len(m.nameToCodec))
	for name := range m.nameToCodec {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DecodeText resolves the codec for typeName and decodes src with it.
func (m *Map) DecodeText(typeName string, src []byte) (any, error) {
	c, err := m.Resolve(typeName)
	if err != nil {
		return nil, err
	}

	return c.DecodeText(m, typeName, src)
}

// EncodeSQL resolves the codec for typeName and encodes value with it.
func (m *Map) EncodeSQL(typeName string, value any) (string, error) {
	c, err := m.Resolve(typeName)
	if err != nil {
		return "", err
	}

	return c.EncodeSQL(m, typeName, value)
}

func registerDefaultCodecs(m *Map) {
	m.RegisterCodec("bool", BoolCodec{}, "boolean")
	m.RegisterCodec("int2", IntCodec{BitSize: 16}, "smallint", "smallserial")
	m.RegisterCodec("int4", IntCodec{BitSize: 32}, "integer", "int", "serial", "oid")
	m.RegisterCodec("int8", IntCodec{BitSize: 64}, "bigint", "bigserial")
	m.RegisterCodec("float4", FloatCodec{BitSize: 32}, "real")
	m.RegisterCodec("float8", FloatCodec{BitSize: 64}, "double precision")
	m.RegisterCodec("numeric", NumericCodec{}, "decimal")
	m.RegisterCodec("text", TextCodec{}, "varchar", "character varying", "bpchar", "char", "character", "name", "citext", "unknown")
	m.RegisterCodec("bytea", ByteaCodec{})
	m.RegisterCodec("uuid", UUIDCodec{})
	m.RegisterCodec("date", DateCodec{})
	m.RegisterCodec("timestamp", TimestampCodec{}, "timestamp without time zone")
	m.RegisterCodec("timestamptz", TimestamptzCodec{}, "timestamp with time zone")
	m.RegisterCodec("json", JSONCodec{})
	m.RegisterCodec("jsonb", JSONCodec{})
	m.RegisterCodec("hstore", HstoreCodec{})
}

// nullSQL is the SQL form of a NULL value of typeName.
func nullSQL(typeName string) string {
	return "NULL::" + typeName
}
