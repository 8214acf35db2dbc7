package pgmodel

import (
	"context"

	"github.com/jackc/pgmodel/pgtype"
)

// Session is a working set. It owns a type map, the entity codecs registered in it and the identity mapper they
// share. Records decoded through the same Session with the same entity type and primary key are the same *Record.
// Sessions are independent of each other. A Session is not safe for concurrent use.
type Session struct {
	config   *Config
	typeMap  *pgtype.Map
	mapper   *IdentityMapper
	entities map[*EntityType]*EntityCodec
	plans    map[*Projection]*HydrationPlan
}

// NewSession creates a Session with the builtin codecs registered. config may be nil. The Session keeps a copy of
// config.
func NewSession(config *Config) *Session {
	if config == nil {
		config = &Config{}
	}
	c := *config
	config = &c
	if config.LogLevel == 0 {
		config.LogLevel = LogLevelInfo
	}

	return &Session{
		config:   config,
		typeMap:  pgtype.NewMap(),
		mapper:   NewIdentityMapper(),
		entities: make(map[*EntityType]*EntityCodec),
		plans:    make(map[*Projection]*HydrationPlan),
	}
}

func (s *Session) Config() *Config {
	return s.config
}

func (s *Session) TypeMap() *pgtype.Map {
	return s.typeMap
}

func (s *Session) IdentityMapper() *IdentityMapper {
	return s.mapper
}

// RegisterEntity registers an entity codec for records of type t under the relation of structure, the name of t and
// every alias.
func (s *Session) RegisterEntity(t *EntityType, structure *RowStructure, aliases ...string) *EntityCodec {
	codec := NewEntityCodec(t, structure, s.mapper)
	codec.strict = s.config.StrictRecords
	codec.logger = s.config.Logger
	codec.logLevel = s.config.LogLevel

	names := make([]string, 0, len(aliases)+2)
	if structure.Relation() != "" {
		names = append(names, structure.Relation())
	}
	if t.Name != "" && t.Name != structure.Relation() {
		names = append(names, t.Name)
	}
	names = append(names, aliases...)

	if len(names) > 0 {
		s.RegisterCodec(names[0], codec, names[1:]...)
	}
	s.entities[t] = codec

	s.log(LogLevelDebug, "registered entity", map[string]any{"entity": t.Name, "names": names, "primary_key": structure.PrimaryKey()})
	return codec
}

// EntityCodec returns the codec registered for records of type t.
func (s *Session) EntityCodec(t *EntityType) (*EntityCodec, bool) {
	c, ok := s.entities[t]
	return c, ok
}

// RegisterCodec registers codec in the type map. Cached hydration plans are dropped since they may have resolved a
// codec that is now replaced.
func (s *Session) RegisterCodec(name string, codec pgtype.Codec, aliases ...string) {
	s.typeMap.RegisterCodec(name, codec, aliases...)

	clear(s.plans)
	for _, c := range s.entities {
		c.resetPlans()
	}
}

// HydrationPlan returns the hydration plan of projection in the type map of s. Plans are cached per projection.
func (s *Session) HydrationPlan(projection *Projection) (*HydrationPlan, error) {
	if plan, ok := s.plans[projection]; ok {
		return plan, nil
	}

	plan, err := NewHydrationPlan(projection, s.typeMap)
	if err != nil {
		s.log(LogLevelError, "cannot build hydration plan", map[string]any{"err": err})
		return nil, err
	}

	s.plans[projection] = plan
	return plan, nil
}

// Decode decodes src, the text of a value of type typeName. A nil src is SQL NULL.
func (s *Session) Decode(typeName string, src []byte) (any, error) {
	v, err := s.typeMap.DecodeText(typeName, src)
	if err != nil {
		s.log(LogLevelError, "decode failed", map[string]any{"type": typeName, "text": logText(src), "err": err})
		return nil, err
	}
	return v, nil
}

// EncodeSQL encodes v as a SQL expression of type typeName.
func (s *Session) EncodeSQL(typeName string, v any) (string, error) {
	sql, err := s.typeMap.EncodeSQL(typeName, v)
	if err != nil {
		s.log(LogLevelError, "encode failed", map[string]any{"type": typeName, "err": err})
		return "", err
	}
	return sql, nil
}

// EncodeText encodes v in the standard text format of type typeName. SQL NULL is a nil slice.
func (s *Session) EncodeText(typeName string, v any) ([]byte, error) {
	codec, err := s.typeMap.Resolve(typeName)
	if err != nil {
		s.log(LogLevelError, "encode failed", map[string]any{"type": typeName, "err": err})
		return nil, err
	}

	buf, err := codec.EncodeText(s.typeMap, typeName, v, nil)
	if err != nil {
		s.log(LogLevelError, "encode failed", map[string]any{"type": typeName, "err": err})
		return nil, err
	}
	return buf, nil
}

// ClearIdentityCache forgets every record kept by the identity mapper. Subsequent decodes return new records.
func (s *Session) ClearIdentityCache() {
	n := s.mapper.Len()
	s.mapper.Clear()
	s.log(LogLevelInfo, "cleared identity cache", map[string]any{"records": n})
}

func (s *Session) log(level LogLevel, msg string, data map[string]any) {
	if s.config.Logger == nil || level > s.config.LogLevel {
		return
	}
	s.config.Logger.Log(context.Background(), level, msg, data)
}
