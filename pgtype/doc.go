// Package pgtype converts between Go values and the PostgreSQL text formats.
/*
The primary type is the Map type. It is a map of PostgreSQL type names to a Codec. A Codec is responsible for
converting between Go values and one PostgreSQL type in three directions: decoding the text format sent by the server,
encoding a typed SQL expression such as int4 '1' that can be embedded in a query, and encoding the standard text
format used when the value is sent as a query parameter. NewMap creates a Map with the common builtin types already
registered. Additional types can be registered with Map.RegisterCodec under any number of names.

Composite Support

Composite values (rows) use the text format (f1,f2,...). ParseCompositeFields splits the text between the outer
parentheses into raw fields. An unquoted empty field is NULL and is returned as nil. A quoted empty field ("") is the
empty string and is returned as a non-nil empty slice. Inside quotes "" is a literal quote and a backslash escapes the
next character. EncodeCompositeSQL builds the row(...)::type form and EncodeCompositeText the (f1,f2,...) form.

pgtype does not know the field names or types of a composite. That is the job of a codec registered for the composite
type such as the entity codec of the pgmodel package.

Array Support

ArrayCodec implements support for arrays. If pgtype supports type T then Map.Resolve("T[]") returns an ArrayCodec
over the codec of T. Arrays decode into []any. Multi-dimensional arrays decode into nested []any.

Third Party Types

numeric decodes into github.com/shopspring/decimal.Decimal and uuid into github.com/gofrs/uuid.UUID. See the
ext/apdnumeric package for a numeric codec using github.com/cockroachdb/apd.
*/
package pgtype
