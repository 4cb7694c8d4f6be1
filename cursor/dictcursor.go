package cursor

// DictCursor re-presents each row as a column-name→value mapping instead
// of a positional sequence. The statement lifecycle is untouched; only
// the fetch shape changes.
type DictCursor struct {
	*Cursor
}

// NewDict creates a DictCursor over the given connection.
func NewDict(conn Conn, opts ...Option) *DictCursor {
	return &DictCursor{Cursor: New(conn, opts...)}
}

// FetchOne returns the next row keyed by column name.
func (c *DictCursor) FetchOne() (map[string]any, bool, error) {
	row, ok, err := c.Cursor.FetchOne()
	if err != nil || !ok {
		return nil, ok, err
	}
	return c.rekey(row), true, nil
}

// FetchAll returns every row keyed by column name, in result order.
func (c *DictCursor) FetchAll() ([]map[string]any, error) {
	rows, err := c.Cursor.FetchAll()
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}
	records := make([]map[string]any, len(rows))
	for i, row := range rows {
		records[i] = c.rekey(row)
	}
	return records, nil
}

func (c *DictCursor) rekey(row []any) map[string]any {
	cols := c.Columns()
	record := make(map[string]any, len(cols))
	for i, name := range cols {
		record[name] = row[i]
	}
	return record
}
