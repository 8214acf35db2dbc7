package pgtype

import (
	"bytes"
	"fmt"
	"strings"
)

// ParseError is returned when composite or array text is malformed. Text is the offending input.
type ParseError struct {
	Text string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q at position %d: %s", e.Text, e.Pos, e.Msg)
}

// StripCompositeParens removes surrounding whitespace and the outer parentheses of a composite value. ok is false when
// nothing remains, which means no record rather than a record with all fields NULL.
func StripCompositeParens(src []byte) (inner []byte, ok bool, err error) {
	src = bytes.TrimSpace(src)
	if len(src) == 0 {
		return nil, false, nil
	}

	if src[0] != '(' {
		return nil, false, &ParseError{Text: string(src), Msg: "composite text format must start with '('"}
	}
	if len(src) < 2 || src[len(src)-1] != ')' {
		return nil, false, &ParseError{Text: string(src), Pos: len(src) - 1, Msg: "composite text format must end with ')'"}
	}

	inner = src[1 : len(src)-1]
	if len(inner) == 0 {
		return nil, false, nil
	}

	return inner, true, nil
}

// CompositeTextScanner iterates over the fields of the text of a composite value with the outer parentheses already
// removed.
type CompositeTextScanner struct {
	src []byte
	rp  int

	fieldBytes []byte
	done       bool
	err        error
}

// NewCompositeTextScanner returns a scanner over inner, the text between the outer parentheses of a composite value.
func NewCompositeTextScanner(inner []byte) *CompositeTextScanner {
	return &CompositeTextScanner{src: inner, done: len(inner) == 0}
}

// Next advances the scanner to the next field. It returns false after the last field is read or an error occurs. After
// Next returns false, the Err method can be called to check if any errors occurred.
func (cfs *CompositeTextScanner) Next() bool {
	if cfs.err != nil || cfs.done {
		return false
	}

	var (
		field  []byte
		quoted bool
		depth  int
	)

	for {
		if cfs.rp == len(cfs.src) {
			if depth != 0 {
				cfs.fail("unbalanced nesting")
				return false
			}
			cfs.done = true
			break
		}

		ch := cfs.src[cfs.rp]

		if ch == ',' && depth == 0 {
			cfs.rp++
			break
		}

		if depth > 0 {
			switch ch {
			case '"':
				if !cfs.copyNestedQuoted(&field) {
					return false
				}
				continue
			case '\\':
				if cfs.rp+1 == len(cfs.src) {
					cfs.rp++
					cfs.fail("dangling escape")
					return false
				}
				field = append(field, ch, cfs.src[cfs.rp+1])
				cfs.rp += 2
				continue
			}
		}

		switch ch {
		case '"':
			quoted = true
			cfs.rp++
			if field == nil {
				field = make([]byte, 0, 16)
			}
			if !cfs.readQuoted(&field) {
				return false
			}
			continue
		case '\\':
			cfs.rp++
			if cfs.rp == len(cfs.src) {
				cfs.fail("dangling escape")
				return false
			}
			ch = cfs.src[cfs.rp]
		case '(', '{':
			depth++
		case ')', '}':
			depth--
			if depth < 0 {
				cfs.fail("unbalanced nesting")
				return false
			}
		}

		field = append(field, ch)
		cfs.rp++
	}

	if field == nil && quoted {
		field = []byte{}
	}
	cfs.fieldBytes = field

	return true
}

// readQuoted consumes a quoted section up to and including the closing quote. The opening quote has already been
// consumed.
func (cfs *CompositeTextScanner) readQuoted(field *[]byte) bool {
	start := cfs.rp - 1
	for {
		if cfs.rp == len(cfs.src) {
			cfs.rp = start
			cfs.fail("unterminated quoted field")
			return false
		}

		ch := cfs.src[cfs.rp]
		switch ch {
		case '"':
			if cfs.rp+1 < len(cfs.src) && cfs.src[cfs.rp+1] == '"' {
				*field = append(*field, '"')
				cfs.rp += 2
				continue
			}
			cfs.rp++
			return true
		case '\\':
			cfs.rp++
			if cfs.rp == len(cfs.src) {
				cfs.fail("dangling escape")
				return false
			}
			ch = cfs.src[cfs.rp]
		}

		*field = append(*field, ch)
		cfs.rp++
	}
}

// copyNestedQuoted copies a quoted section inside a nested segment verbatim, quotes and escapes included, so the
// nested value keeps its own quoting. Parens and braces inside the quotes do not count toward nesting depth.
func (cfs *CompositeTextScanner) copyNestedQuoted(field *[]byte) bool {
	start := cfs.rp
	*field = append(*field, '"')
	cfs.rp++
	for {
		if cfs.rp == len(cfs.src) {
			cfs.rp = start
			cfs.fail("unterminated quoted field")
			return false
		}

		ch := cfs.src[cfs.rp]
		switch ch {
		case '"':
			if cfs.rp+1 < len(cfs.src) && cfs.src[cfs.rp+1] == '"' {
				*field = append(*field, '"', '"')
				cfs.rp += 2
				continue
			}
			*field = append(*field, '"')
			cfs.rp++
			return true
		case '\\':
			if cfs.rp+1 == len(cfs.src) {
				cfs.rp++
				cfs.fail("dangling escape")
				return false
			}
			*field = append(*field, ch, cfs.src[cfs.rp+1])
			cfs.rp += 2
			continue
		}

		*field = append(*field, ch)
		cfs.rp++
	}
}

func (cfs *CompositeTextScanner) fail(msg string) {
	cfs.err = &ParseError{Text: string(cfs.src), Pos: cfs.rp, Msg: msg}
}

// Bytes returns the bytes of the field most recently read by Next. It is nil if the field is NULL.
func (cfs *CompositeTextScanner) Bytes() []byte {
	return cfs.fieldBytes
}

// Err returns any error encountered by the scanner.
func (cfs *CompositeTextScanner) Err() error {
	return cfs.err
}

// ParseCompositeFields splits inner, the text between the outer parentheses of a composite value, into its raw
// fields. A nil field is NULL.
func ParseCompositeFields(inner []byte) ([][]byte, error) {
	var fields [][]byte
	s := NewCompositeTextScanner(inner)
	for s.Next() {
		fields = append(fields, s.Bytes())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return fields, nil
}

// EncodeCompositeSQL joins fields, each already encoded as a typed SQL expression, into a row constructor cast to
// typeName.
func EncodeCompositeSQL(fields []string, typeName string) string {
	return fmt.Sprintf("row(%s)::%s", strings.Join(fields, ","), typeName)
}

// EncodeCompositeText appends fields in the standard composite text format to buf. A nil field is NULL.
func EncodeCompositeText(buf []byte, fields [][]byte) []byte {
	buf = append(buf, '(')
	for i, f := range fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		if f != nil {
			buf = appendQuotedCompositeFieldIfNeeded(buf, f)
		}
	}
	return append(buf, ')')
}

func appendQuotedCompositeFieldIfNeeded(buf, src []byte) []byte {
	if len(src) > 0 && !bytes.ContainsAny(src, "(),\"\\ \t\n\r\v\f") {
		return append(buf, src...)
	}

	buf = append(buf, '"')
	for _, ch := range src {
		if ch == '"' || ch == '\\' {
			buf = append(buf, ch)
		}
		buf = append(buf, ch)
	}
	return append(buf, '"')
}
