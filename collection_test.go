package pgmodel_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jackc/pgmodel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows serves rows of text values as if they were read from a connection. The buffer returned by RawValues is
// overwritten on every call to Next like the buffer of a real connection.
type fakeRows struct {
	fields []pgconn.FieldDescription
	rows   [][][]byte
	i      int
	raw    [][]byte
	closed bool
	err    error
}

func newFakeRows(columns []string, rows ...[]string) *fakeRows {
	r := &fakeRows{}
	for _, name := range columns {
		r.fields = append(r.fields, pgconn.FieldDescription{Name: name, Format: pgx.TextFormatCode})
	}
	for _, row := range rows {
		values := make([][]byte, len(row))
		for i, v := range row {
			if v != "NULL" {
				values[i] = []byte(v)
			}
		}
		r.rows = append(r.rows, values)
	}
	return r
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) Scan(dest ...any) error                       { return errors.New("not supported") }
func (r *fakeRows) Values() ([]any, error)                       { return nil, errors.New("not supported") }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.i >= len(r.rows) {
		r.closed = true
		return false
	}

	for _, v := range r.raw {
		for i := range v {
			v[i] = 'X'
		}
	}
	r.raw = make([][]byte, len(r.rows[r.i]))
	for i, v := range r.rows[r.i] {
		if v != nil {
			r.raw[i] = bytes.Clone(v)
		}
	}
	r.i++
	return true
}

func (r *fakeRows) RawValues() [][]byte {
	return r.raw
}

func TestCollectionHydratesAndCaches(t *testing.T) {
	session := pgmodel.NewSession(nil)
	codec := session.RegisterEntity(articleType, articleStructure(t))

	rows := newFakeRows([]string{"id", "title", "views"},
		[]string{"1", "first", "10"},
		[]string{"2", "second", "NULL"},
		[]string{"1", "first again", "11"},
	)

	c, err := pgmodel.NewCollection(session, rows, codec.Projection())
	require.NoError(t, err)

	var records []*pgmodel.Record
	for c.Next() {
		records = append(records, c.Record())
	}
	require.NoError(t, c.Err())
	require.Len(t, records, 3)

	assert.Same(t, records[0], records[2])
	assert.Equal(t, "first again", records[0].Value("title"))
	assert.Equal(t, int64(11), records[0].Value("views"))
	assert.Equal(t, pgmodel.StatusExists, records[0].Status())
	assert.Nil(t, records[1].Value("views"))
	assert.True(t, records[1].Has("views"))
	assert.True(t, rows.closed)
}

func TestCollectionFilters(t *testing.T) {
	session := pgmodel.NewSession(nil)
	codec := session.RegisterEntity(articleType, articleStructure(t))

	rows := newFakeRows([]string{"id", "title", "views"},
		[]string{"1", "first", "10"},
		[]string{"2", "second", "20"},
	)

	c, err := pgmodel.NewCollection(session, rows, codec.Projection())
	require.NoError(t, err)

	c.RegisterFilter(func(values map[string][]byte) (map[string][]byte, error) {
		values["title"] = bytes.ToUpper(values["title"])
		return values, nil
	})
	c.RegisterFilter(func(values map[string][]byte) (map[string][]byte, error) {
		values["source"] = []byte("filter")
		return values, nil
	})

	require.True(t, c.Next())
	assert.Equal(t, "FIRST", c.Record().Value("title"))
	assert.Equal(t, "filter", c.Record().Value("source"))

	c.ClearFilters()
	require.True(t, c.Next())
	assert.Equal(t, "second", c.Record().Value("title"))
	assert.False(t, c.Record().Has("source"))

	assert.False(t, c.Next())
	require.NoError(t, c.Err())
}

func TestCollectionFilterError(t *testing.T) {
	session := pgmodel.NewSession(nil)
	codec := session.RegisterEntity(articleType, articleStructure(t))

	rows := newFakeRows([]string{"id", "title", "views"}, []string{"1", "first", "10"})
	c, err := pgmodel.NewCollection(session, rows, codec.Projection())
	require.NoError(t, err)

	filterErr := errors.New("rejected")
	c.RegisterFilter(func(values map[string][]byte) (map[string][]byte, error) { return nil, filterErr })

	assert.False(t, c.Next())
	assert.ErrorIs(t, c.Err(), filterErr)
	assert.Nil(t, c.Record())
	assert.True(t, rows.closed)
}

func TestCollectionExtractAndSlice(t *testing.T) {
	session := pgmodel.NewSession(nil)
	codec := session.RegisterEntity(articleType, articleStructure(t))
	columns := []string{"id", "title", "views"}

	c, err := pgmodel.NewCollection(session, newFakeRows(columns,
		[]string{"1", "a", "1"},
		[]string{"2", "b", "2"},
	), codec.Projection())
	require.NoError(t, err)

	extracted, err := c.Extract()
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"id": int32(1), "title": "a", "views": int64(1)},
		{"id": int32(2), "title": "b", "views": int64(2)},
	}, extracted)

	c, err = pgmodel.NewCollection(session, newFakeRows(columns,
		[]string{"1", "a", "1"},
		[]string{"3", "c", "NULL"},
	), codec.Projection())
	require.NoError(t, err)

	titles, err := c.Slice("title")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "c"}, titles)

	rows := newFakeRows(columns, []string{"1", "a", "1"})
	c, err = pgmodel.NewCollection(session, rows, codec.Projection())
	require.NoError(t, err)

	_, err = c.Slice("nope")
	var unknown *pgmodel.UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.True(t, rows.closed)
}

func TestCollectionComputedColumn(t *testing.T) {
	session := pgmodel.NewSession(nil)
	codec := session.RegisterEntity(articleType, articleStructure(t))

	p := codec.Projection()
	require.NoError(t, p.SetField("popular", "%:views:% > 100", "bool"))
	assert.Equal(t, `"id" as "id", "title" as "title", "views" as "views", "views" > 100 as "popular"`, p.String())

	c, err := pgmodel.NewCollection(session, newFakeRows([]string{"id", "title", "views", "popular"},
		[]string{"1", "a", "150", "t"},
	), p)
	require.NoError(t, err)

	require.True(t, c.Next())
	assert.Equal(t, true, c.Record().Value("popular"))
}

func TestCollectionRejectsBinaryFormat(t *testing.T) {
	session := pgmodel.NewSession(nil)
	codec := session.RegisterEntity(articleType, articleStructure(t))

	rows := newFakeRows([]string{"id", "title", "views"})
	rows.fields[0].Format = pgx.BinaryFormatCode

	_, err := pgmodel.NewCollection(session, rows, codec.Projection())
	require.Error(t, err)
	assert.True(t, rows.closed)
}

func TestCollectionHydrateError(t *testing.T) {
	session := pgmodel.NewSession(nil)
	codec := session.RegisterEntity(articleType, articleStructure(t))

	c, err := pgmodel.NewCollection(session, newFakeRows([]string{"id", "title", "views"},
		[]string{"one", "a", "1"},
	), codec.Projection())
	require.NoError(t, err)

	assert.False(t, c.Next())
	var fieldErr *pgmodel.FieldError
	require.ErrorAs(t, c.Err(), &fieldErr)
	assert.Equal(t, "id", fieldErr.Field)
}

func TestCollectionRowsError(t *testing.T) {
	session := pgmodel.NewSession(nil)
	codec := session.RegisterEntity(articleType, articleStructure(t))

	rows := newFakeRows([]string{"id", "title", "views"})
	rows.err = errors.New("connection lost")

	c, err := pgmodel.NewCollection(session, rows, codec.Projection())
	require.NoError(t, err)
	assert.False(t, c.Next())
	assert.EqualError(t, c.Err(), "connection lost")
}
