// Package sanitize quotes values as SQL literals.
package sanitize

import (
	"encoding/hex"
	"slices"
	"strings"
)

// QuoteString appends str to dst as a single quoted SQL string literal. Single quotes are doubled. Backslashes are
// copied verbatim which is only correct with standard_conforming_strings on, the default since PostgreSQL 9.1.
func QuoteString(dst []byte, str string) []byte {
	const quote = '\''

	dst = slices.Grow(dst, len(str)+strings.Count(str, "'")+2)
	dst = append(dst, quote)
	for i := 0; i < len(str); i++ {
		if str[i] == quote {
			dst = append(dst, quote, quote)
		} else {
			dst = append(dst, str[i])
		}
	}
	dst = append(dst, quote)

	return dst
}

// QuoteBytes appends buf to dst as a single quoted bytea literal in hex format.
func QuoteBytes(dst, buf []byte) []byte {
	if len(buf) == 0 {
		return append(dst, `'\x'`...)
	}

	dst = slices.Grow(dst, 3+hex.EncodedLen(len(buf))+1)
	dst = append(dst, `'\x`...)
	dst = hex.AppendEncode(dst, buf)
	dst = append(dst, '\'')

	return dst
}

// TypedLiteral returns typeName followed by text quoted as a string literal, e.g. int4 '1'. PostgreSQL resolves this
// form by passing the literal to the input function of typeName.
func TypedLiteral(typeName, text string) string {
	buf := make([]byte, 0, len(typeName)+len(text)+3)
	buf = append(buf, typeName...)
	buf = append(buf, ' ')
	buf = QuoteString(buf, text)
	return string(buf)
}
