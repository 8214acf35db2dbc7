package pgmodel

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"
)

// IdentityMapper keeps at most one record per entity type and primary key. A record admitted with the identity of a
// record already kept is merged into the kept record which is returned in its place. An IdentityMapper belongs to a
// single working set and is not safe for concurrent use.
type IdentityMapper struct {
	instances map[string]*Record
}

func NewIdentityMapper() *IdentityMapper {
	return &IdentityMapper{instances: make(map[string]*Record)}
}

// Signature returns the identity of r given the primary key field names pk. ok is false when pk is empty or r does not
// hold every field of pk.
func Signature(r *Record, pk []string) (signature string, ok bool) {
	if len(pk) == 0 {
		return "", false
	}

	key := make(map[string]any, len(pk))
	for _, name := range pk {
		v, present := r.values[name]
		if !present {
			return "", false
		}
		key[name] = v
	}

	return keySignature(r.entityType, key), true
}

// keySignature hashes the entity type and the key fields sorted by name. The type contributes its name and its
// address, so two EntityType values declared with the same name never share an identity. Length prefixes keep
// different field boundaries from producing the same input.
func keySignature(t *EntityType, key map[string]any) string {
	var buf []byte
	typeName, typeID := "", ""
	if t != nil {
		typeName = t.Name
		typeID = fmt.Sprintf("%p", t)
	}
	buf = appendSignaturePart(buf, typeName)
	buf = appendSignaturePart(buf, typeID)

	names := make([]string, 0, len(key))
	for name := range key {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		buf = appendSignaturePart(buf, name)
		buf = appendSignaturePart(buf, signatureValue(key[name]))
	}

	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

func appendSignaturePart(buf []byte, s string) []byte {
	buf = strconv.AppendInt(buf, int64(len(s)), 10)
	buf = append(buf, ':')
	return append(buf, s...)
}

// signatureValue formats a key value so that equal values decoded from the same column always format the same. The
// leading letter keeps a NULL key from matching the text "<nil>".
func signatureValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "n"
	case []byte:
		return "b" + hex.EncodeToString(v)
	case time.Time:
		return "t" + v.UTC().Format(time.RFC3339Nano)
	case *Record:
		return fmt.Sprintf("r%p", v)
	default:
		return "v" + fmt.Sprint(v)
	}
}

// Fetch admits r and returns the record kept for its identity. If r has no identity it is returned unchanged. If the
// identity is new r is kept, marked StatusExists and returned. Otherwise the fields of r are copied into the kept
// record, overwriting fields present in both, and the kept record is returned.
func (m *IdentityMapper) Fetch(r *Record, pk []string) *Record {
	kept, _ := m.admit(r, pk)
	return kept
}

// admit is Fetch that also reports whether r was merged into a record already kept.
func (m *IdentityMapper) admit(r *Record, pk []string) (kept *Record, merged bool) {
	signature, ok := Signature(r, pk)
	if !ok {
		return r, false
	}

	if existing, present := m.instances[signature]; present {
		if existing != r {
			existing.Hydrate(r.values)
		}
		return existing, true
	}

	r.status |= StatusExists
	m.instances[signature] = r
	return r, false
}

// Lookup returns the record kept for signature.
func (m *IdentityMapper) Lookup(signature string) (*Record, bool) {
	r, ok := m.instances[signature]
	return r, ok
}

// Resolve returns the record kept for the identity ref refers to.
func (m *IdentityMapper) Resolve(ref Ref) (*Record, bool) {
	if len(ref.Key) == 0 {
		return nil, false
	}
	return m.Lookup(keySignature(ref.Type, ref.Key))
}

// Clear forgets every kept record. Records already returned are not affected.
func (m *IdentityMapper) Clear() {
	clear(m.instances)
}

// Len returns the number of kept records.
func (m *IdentityMapper) Len() int {
	return len(m.instances)
}
