package pgtype

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Information on the text format of PostgreSQL arrays can be found in src/backend/utils/adt/arrayfuncs.c. Of
// particular interest are the array_in and array_out functions.

type ArrayDimension struct {
	Length     int32
	LowerBound int32
}

// TextArray is an array parsed from text format whose elements are still undecoded. Elements are flattened in row
// major order. A nil element is NULL.
type TextArray struct {
	Elements   [][]byte
	Dimensions []ArrayDimension
}

type arrayParser struct {
	src []byte
	rp  int
}

func (p *arrayParser) errorf(format string, args ...any) error {
	return &ParseError{Text: string(p.src), Pos: p.rp, Msg: fmt.Sprintf(format, args...)}
}

func (p *arrayParser) next() (byte, bool) {
	if p.rp >= len(p.src) {
		return 0, false
	}
	ch := p.src[p.rp]
	p.rp++
	return ch, true
}

func (p *arrayParser) skipWhitespace() {
	for p.rp < len(p.src) && isSpace(p.src[p.rp]) {
		p.rp++
	}
}

// ParseArrayText parses the text format of an array.
func ParseArrayText(src []byte) (*TextArray, error) {
	ta := &TextArray{Elements: [][]byte{}}
	p := &arrayParser{src: src}

	p.skipWhitespace()

	ch, ok := p.next()
	if !ok {
		return nil, p.errorf("unexpected end of input")
	}

	var explicitDimensions []ArrayDimension

	// Array has explicit dimensions
	if ch == '[' {
		p.rp--
		for {
			ch, ok = p.next()
			if !ok {
				return nil, p.errorf("unexpected end of input")
			}

			if ch == '=' {
				break
			} else if ch != '[' {
				return nil, p.errorf("expected '[' or '=' got %q", ch)
			}

			lower, err := p.parseInteger()
			if err != nil {
				return nil, err
			}

			if ch, ok = p.next(); !ok || ch != ':' {
				return nil, p.errorf("expected ':'")
			}

			upper, err := p.parseInteger()
			if err != nil {
				return nil, err
			}

			if ch, ok = p.next(); !ok || ch != ']' {
				return nil, p.errorf("expected ']'")
			}

			if upper < lower {
				return nil, p.errorf("upper bound %d is less than lower bound %d", upper, lower)
			}
			length := int64(upper) - int64(lower) + 1
			if length > math.MaxInt32 {
				return nil, p.errorf("dimension length %d out of range", length)
			}

			explicitDimensions = append(explicitDimensions, ArrayDimension{LowerBound: lower, Length: int32(length)})
		}

		p.skipWhitespace()
		ch, ok = p.next()
		if !ok {
			return nil, p.errorf("unexpected end of input")
		}
	}

	if ch != '{' {
		return nil, p.errorf("expected '{' got %q", ch)
	}

	implicitDimensions := []ArrayDimension{{LowerBound: 1, Length: 0}}

	// Consume all initial opening brackets. This provides number of dimensions.
	for {
		p.skipWhitespace()
		ch, ok = p.next()
		if !ok {
			return nil, p.errorf("unexpected end of input")
		}

		if ch == '{' {
			implicitDimensions[len(implicitDimensions)-1].Length = 1
			implicitDimensions = append(implicitDimensions, ArrayDimension{LowerBound: 1})
		} else {
			p.rp--
			break
		}
	}
	currentDim := len(implicitDimensions) - 1
	counterDim := currentDim

	for {
		p.skipWhitespace()
		ch, ok = p.next()
		if !ok {
			return nil, p.errorf("unterminated array")
		}

		switch ch {
		case '{':
			if currentDim == counterDim {
				implicitDimensions[currentDim].Length++
			}
			currentDim++
		case ',':
		case '}':
			currentDim--
			if currentDim < counterDim {
				counterDim = currentDim
			}
		default:
			p.rp--
			value, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			if currentDim == counterDim {
				implicitDimensions[currentDim].Length++
			}
			ta.Elements = append(ta.Elements, value)
		}

		if currentDim < 0 {
			break
		}
	}

	p.skipWhitespace()

	if p.rp < len(p.src) {
		return nil, p.errorf("unexpected trailing data %q", p.src[p.rp:])
	}

	if len(explicitDimensions) > 0 {
		ta.Dimensions = explicitDimensions
	} else {
		ta.Dimensions = implicitDimensions
		if len(ta.Dimensions) == 1 && ta.Dimensions[0].Length == 0 {
			ta.Dimensions = []ArrayDimension{}
		}
	}

	if n := cardinality(ta.Dimensions, len(ta.Elements)); n != len(ta.Elements) {
		return nil, p.errorf("dimensions call for %d elements but array has %d", n, len(ta.Elements))
	}

	return ta, nil
}

// cardinality returns the number of elements dimensions describe. The count stops growing once it passes limit.
func cardinality(dimensions []ArrayDimension, limit int) int {
	if len(dimensions) == 0 {
		return 0
	}
	n := 1
	for _, d := range dimensions {
		n *= int(d.Length)
		if n > limit {
			return n
		}
	}
	return n
}

func (p *arrayParser) parseValue() ([]byte, error) {
	if p.src[p.rp] == '"' {
		p.rp++
		return p.parseQuotedValue()
	}

	value := make([]byte, 0, 8)
	for {
		ch, ok := p.next()
		if !ok {
			return nil, p.errorf("unterminated array")
		}

		switch ch {
		case ',', '}':
			p.rp--
			value = bytes.TrimRight(value, " \t\n\r\v\f")
			if len(value) == 4 && strings.EqualFold(string(value), "null") {
				return nil, nil
			}
			return value, nil
		case '{', '"':
			return nil, p.errorf("unexpected %q in unquoted element", ch)
		case '\\':
			if ch, ok = p.next(); !ok {
				return nil, p.errorf("dangling escape")
			}
		}

		value = append(value, ch)
	}
}

func (p *arrayParser) parseQuotedValue() ([]byte, error) {
	start := p.rp - 1
	value := make([]byte, 0, 16)

	for {
		ch, ok := p.next()
		if !ok {
			p.rp = start
			return nil, p.errorf("unterminated quoted element")
		}

		switch ch {
		case '\\':
			if ch, ok = p.next(); !ok {
				return nil, p.errorf("dangling escape")
			}
		case '"':
			return value, nil
		}
		value = append(value, ch)
	}
}

func (p *arrayParser) parseInteger() (int32, error) {
	start := p.rp
	if p.rp < len(p.src) && p.src[p.rp] == '-' {
		p.rp++
	}
	for p.rp < len(p.src) && '0' <= p.src[p.rp] && p.src[p.rp] <= '9' {
		p.rp++
	}

	n, err := strconv.ParseInt(string(p.src[start:p.rp]), 10, 32)
	if err != nil {
		return 0, p.errorf("invalid dimension bound: %v", err)
	}
	return int32(n), nil
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// EncodeArrayText appends a one-dimensional array in text format to buf. A nil element is NULL.
func EncodeArrayText(buf []byte, elements [][]byte) []byte {
	buf = append(buf, '{')
	for i, e := range elements {
		if i > 0 {
			buf = append(buf, ',')
		}
		if e == nil {
			buf = append(buf, "NULL"...)
		} else {
			buf = appendQuotedArrayElementIfNeeded(buf, e)
		}
	}
	return append(buf, '}')
}

func appendQuotedArrayElementIfNeeded(buf, src []byte) []byte {
	if len(src) > 0 && !(len(src) == 4 && strings.EqualFold(string(src), "null")) && !bytes.ContainsAny(src, "{},\"\\ \t\n\r\v\f") {
		return append(buf, src...)
	}

	buf = append(buf, '"')
	for _, ch := range src {
		if ch == '"' || ch == '\\' {
			buf = append(buf, '\\')
		}
		buf = append(buf, ch)
	}
	return append(buf, '"')
}

// ArrayCodec is a codec for arrays of any element type. Decoded arrays are []any. Multi-dimensional arrays decode
// into nested []any.
type ArrayCodec struct {
	ElementName string
	Element     Codec
}

func (c *ArrayCodec) arrayTypeName() string {
	return c.ElementName + ArraySuffix
}

func (c *ArrayCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	ta, err := ParseArrayText(src)
	if err != nil {
		return nil, err
	}

	elements := make([]any, len(ta.Elements))
	for i, e := range ta.Elements {
		elements[i], err = c.Element.DecodeText(m, c.ElementName, e)
		if err != nil {
			return nil, fmt.Errorf("%s element %d: %w", c.arrayTypeName(), i, err)
		}
	}

	if len(ta.Dimensions) > 1 {
		return reshapeArray(elements, ta.Dimensions), nil
	}

	return elements, nil
}

func reshapeArray(elements []any, dimensions []ArrayDimension) []any {
	if len(dimensions) == 1 {
		return elements
	}

	n := int(dimensions[0].Length)
	out := make([]any, n)
	if n == 0 {
		return out
	}

	size := len(elements) / n
	for i := 0; i < n; i++ {
		out[i] = reshapeArray(elements[i*size:(i+1)*size], dimensions[1:])
	}
	return out
}

// arrayElements returns the elements of value which must be a slice or an array. ok is false when value is a nil
// slice.
func arrayElements(value any) (elements []any, ok bool, err error) {
	if elements, ok := value.([]any); ok {
		return elements, elements != nil, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, false, nil
		}
	case reflect.Array:
	default:
		return nil, false, fmt.Errorf("cannot encode %T as an array", value)
	}

	elements = make([]any, rv.Len())
	for i := range elements {
		elements[i] = rv.Index(i).Interface()
	}
	return elements, true, nil
}

func (c *ArrayCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	if value == nil {
		return nullSQL(c.arrayTypeName()), nil
	}

	elements, ok, err := arrayElements(value)
	if err != nil {
		return "", err
	}
	if !ok {
		return nullSQL(c.arrayTypeName()), nil
	}

	parts := make([]string, len(elements))
	for i, e := range elements {
		parts[i], err = c.Element.EncodeSQL(m, c.ElementName, e)
		if err != nil {
			return "", fmt.Errorf("%s element %d: %w", c.arrayTypeName(), i, err)
		}
	}

	return fmt.Sprintf("ARRAY[%s]::%s", strings.Join(parts, ","), c.arrayTypeName()), nil
}

func (c *ArrayCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	if value == nil {
		return nil, nil
	}

	elements, ok, err := arrayElements(value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	encoded := make([][]byte, len(elements))
	for i, e := range elements {
		encoded[i], err = c.Element.EncodeText(m, c.ElementName, e, nil)
		if err != nil {
			return nil, fmt.Errorf("%s element %d: %w", c.arrayTypeName(), i, err)
		}
	}

	return EncodeArrayText(buf, encoded), nil
}
