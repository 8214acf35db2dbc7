package pgtype

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HstoreCodec handles hstore. Values decode to map[string]*string where a nil value is NULL. map[string]string is also
// accepted for encoding.
type HstoreCodec struct{}

func (HstoreCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	keys, values, err := parseHstore(string(src))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", typeName, err)
	}

	h := make(map[string]*string, len(keys))
	for i, k := range keys {
		h[k] = values[i]
	}
	return h, nil
}

func (c HstoreCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c HstoreCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (HstoreCodec) formatText(value any) (string, bool, error) {
	var pairs map[string]*string

	switch value := value.(type) {
	case nil:
		return "", true, nil
	case map[string]*string:
		if value == nil {
			return "", true, nil
		}
		pairs = value
	case map[string]string:
		if value == nil {
			return "", true, nil
		}
		pairs = make(map[string]*string, len(value))
		for k, v := range value {
			v := v
			pairs[k] = &v
		}
	default:
		return "", false, fmt.Errorf("unsupported type %T", value)
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteHstoreElement(k))
		sb.WriteString("=>")
		if v := pairs[k]; v == nil {
			sb.WriteString("NULL")
		} else {
			sb.WriteString(quoteHstoreElement(*v))
		}
	}

	return sb.String(), false, nil
}

var quoteHstoreReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteHstoreElement(src string) string {
	return `"` + quoteHstoreReplacer.Replace(src) + `"`
}

const (
	hsPre = iota
	hsKey
	hsSep
	hsVal
	hsNul
	hsNext
)

type hstoreParser struct {
	str string
	pos int
}

func newHSP(in string) *hstoreParser {
	return &hstoreParser{
		pos: 0,
		str: in,
	}
}

func (p *hstoreParser) Consume() (r rune, end bool) {
	if p.pos >= len(p.str) {
		end = true
		return
	}
	r, w := utf8.DecodeRuneInString(p.str[p.pos:])
	p.pos += w
	return
}

// parseHstore parses the text format of an hstore into keys and values. A nil value is NULL.
func parseHstore(s string) (k []string, v []*string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, nil
	}

	buf := bytes.Buffer{}
	keys := []string{}
	values := []*string{}
	p := newHSP(s)

	r, end := p.Consume()
	state := hsPre

	for !end {
		switch state {
		case hsPre:
			if r == '"' {
				state = hsKey
			} else {
				err = errors.New("string does not begin with \"")
			}
		case hsKey:
			switch r {
			case '"': // end of the key
				keys = append(keys, buf.String())
				buf = bytes.Buffer{}
				state = hsSep
			case '\\':
				n, end := p.Consume()
				if end {
					err = errors.New("found EOS in key, expecting character or \"")
				} else {
					buf.WriteRune(n)
				}
			default:
				buf.WriteRune(r)
			}
		case hsSep:
			for r == ' ' {
				r, _ = p.Consume()
			}
			if r == '=' {
				r, end = p.Consume()
				switch {
				case end:
					err = errors.New("found EOS after '=', expecting '>'")
				case r == '>':
					r, end = p.Consume()
					for !end && r == ' ' {
						r, end = p.Consume()
					}
					switch {
					case end:
						err = errors.New("found EOS after '=>', expecting '\"' or 'NULL'")
					case r == '"':
						state = hsVal
					case r == 'N':
						state = hsNul
					default:
						err = fmt.Errorf("invalid character '%c' after '=>', expecting '\"' or 'NULL'", r)
					}
				default:
					err = fmt.Errorf("invalid character after '=', expecting '>'")
				}
			} else {
				err = fmt.Errorf("invalid character '%c' after key, expecting '='", r)
			}
		case hsVal:
			switch r {
			case '"': // end of the value
				val := buf.String()
				values = append(values, &val)
				buf = bytes.Buffer{}
				state = hsNext
			case '\\':
				n, end := p.Consume()
				if end {
					err = errors.New("found EOS in value, expecting character or \"")
				} else {
					buf.WriteRune(n)
				}
			default:
				buf.WriteRune(r)
			}
		case hsNul:
			nulBuf := make([]rune, 3)
			nulBuf[0] = r
			for i := 1; i < 3; i++ {
				r, end = p.Consume()
				if end {
					return nil, nil, errors.New("found EOS in NULL value")
				}
				nulBuf[i] = r
			}
			if nulBuf[0] == 'U' && nulBuf[1] == 'L' && nulBuf[2] == 'L' {
				values = append(values, nil)
				state = hsNext
			} else {
				err = fmt.Errorf("invalid NULL value: 'N%s'", string(nulBuf))
			}
		case hsNext:
			if r == ',' {
				r, end = p.Consume()
				for !end && unicode.IsSpace(r) {
					r, end = p.Consume()
				}
				switch {
				case end:
					err = errors.New("found EOS after ',', expecting '\"'")
				case r == '"':
					state = hsKey
				default:
					err = fmt.Errorf("invalid character '%c' after ',', expecting '\"'", r)
				}
			} else {
				err = fmt.Errorf("invalid character '%c' after value, expecting ','", r)
			}
		}

		if err != nil {
			return nil, nil, err
		}
		r, end = p.Consume()
	}
	if state != hsNext {
		return nil, nil, errors.New("improperly formatted hstore")
	}

	return keys, values, nil
}
