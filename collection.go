package pgmodel

import (
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
)

// RowFilter transforms the raw text values of a row before it is hydrated. A NULL value is a nil slice.
type RowFilter func(values map[string][]byte) (map[string][]byte, error)

// Collection hydrates the rows of a query into records. The query must return its columns in the text format, for
// example by running it with pgx.QueryExecModeSimpleProtocol or pgx.QueryResultFormats{pgx.TextFormatCode}. Every
// record is admitted to the identity mapper of the session when its entity type is registered.
type Collection struct {
	session *Session
	rows    pgx.Rows
	plan    *HydrationPlan
	entity  *EntityCodec
	columns []string
	filters []RowFilter

	record *Record
	err    error
}

// NewCollection returns a Collection over rows hydrated with projection. It fails if a column is in the binary format.
// rows is closed if NewCollection fails.
func NewCollection(session *Session, rows pgx.Rows, projection *Projection) (*Collection, error) {
	plan, err := session.HydrationPlan(projection)
	if err != nil {
		rows.Close()
		return nil, err
	}

	fds := rows.FieldDescriptions()
	columns := make([]string, len(fds))
	for i, fd := range fds {
		if fd.Format != pgx.TextFormatCode {
			rows.Close()
			return nil, fmt.Errorf("column %q is not in text format", fd.Name)
		}
		columns[i] = fd.Name
	}

	c := &Collection{
		session: session,
		rows:    rows,
		plan:    plan,
		columns: columns,
	}
	if projection.entityType != nil {
		c.entity, _ = session.EntityCodec(projection.entityType)
	}

	return c, nil
}

// RegisterFilter adds f to the filters applied, in registration order, to every following row.
func (c *Collection) RegisterFilter(f RowFilter) *Collection {
	c.filters = append(c.filters, f)
	return c
}

// ClearFilters removes every filter.
func (c *Collection) ClearFilters() *Collection {
	c.filters = nil
	return c
}

// Next hydrates the next row. It returns false when there are no more rows or an error occurred. Check Err after
// Next returns false.
func (c *Collection) Next() bool {
	c.record = nil
	if c.err != nil {
		return false
	}

	if !c.rows.Next() {
		return false
	}

	r, err := c.hydrateRow(c.rows.RawValues())
	if err != nil {
		c.err = err
		c.rows.Close()
		return false
	}

	c.record = r
	return true
}

func (c *Collection) hydrateRow(raw [][]byte) (*Record, error) {
	if len(raw) != len(c.columns) {
		return nil, fmt.Errorf("row has %d values, expected %d", len(raw), len(c.columns))
	}

	// RawValues is only valid until the next call to Next.
	values := make(map[string][]byte, len(raw))
	for i, name := range c.columns {
		values[name] = slices.Clone(raw[i])
	}

	for _, f := range c.filters {
		var err error
		values, err = f(values)
		if err != nil {
			return nil, err
		}
	}

	r, err := c.plan.Hydrate(values)
	if err != nil {
		c.session.log(LogLevelError, "cannot hydrate row", map[string]any{"err": err})
		return nil, err
	}

	if c.entity != nil {
		r = c.entity.CacheRecord(r)
	}
	return r, nil
}

// Record returns the record hydrated by the last call to Next.
func (c *Collection) Record() *Record {
	return c.record
}

// Err returns the first error that occurred while hydrating or reading rows.
func (c *Collection) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

// Close closes the underlying rows. It is safe to call Close more than once.
func (c *Collection) Close() {
	c.rows.Close()
}

// Extract reads the remaining rows and returns each record extracted to a map. The rows are closed.
func (c *Collection) Extract() ([]map[string]any, error) {
	defer c.Close()

	var out []map[string]any
	for c.Next() {
		out = append(out, c.record.Extract())
	}
	return out, c.Err()
}

// Slice reads the remaining rows and returns the value of the field name of each record. The rows are closed.
func (c *Collection) Slice(name string) ([]any, error) {
	defer c.Close()

	if !c.plan.projection.HasField(name) {
		return nil, c.plan.projection.unknownField(name)
	}

	var out []any
	for c.Next() {
		out = append(out, c.record.Value(name))
	}
	return out, c.Err()
}
