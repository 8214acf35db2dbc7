package sanitize_test

import (
	"testing"

	"github.com/jackc/pgmodel/internal/sanitize"
	"github.com/stretchr/testify/assert"
)

func TestQuoteString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "''"},
		{in: "foo", want: "'foo'"},
		{in: "it's", want: "'it''s'"},
		{in: `back\slash`, want: `'back\slash'`},
		{in: "''", want: "''''''"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(sanitize.QuoteString(nil, tt.in)), "%q", tt.in)
	}
}

func TestQuoteBytes(t *testing.T) {
	assert.Equal(t, `'\x'`, string(sanitize.QuoteBytes(nil, nil)))
	assert.Equal(t, `'\x00ff10'`, string(sanitize.QuoteBytes(nil, []byte{0x00, 0xff, 0x10})))
	assert.Equal(t, `prefix'\x01'`, string(sanitize.QuoteBytes([]byte("prefix"), []byte{0x01})))
}

func TestTypedLiteral(t *testing.T) {
	assert.Equal(t, "int4 '1'", sanitize.TypedLiteral("int4", "1"))
	assert.Equal(t, "varchar 'O''Brien'", sanitize.TypedLiteral("varchar", "O'Brien"))
	assert.Equal(t, "timestamptz '2014-10-24 12:44:40.021324+00:00'", sanitize.TypedLiteral("timestamptz", "2014-10-24 12:44:40.021324+00:00"))
}
