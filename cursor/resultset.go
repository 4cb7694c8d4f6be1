package cursor

import "github.com/tuannm99/gluedbapi/statement"

// ResultSet is the tabular result of one successful statement. It is
// built once from the parsed payload and never mutated; a new execute
// replaces it wholesale.
type ResultSet struct {
	columns  []statement.Column
	rows     []map[string]any
	rowcount int64
}

// newResultSet materializes the payload. Rows keep the name→value shape
// of the wire format, but every described column is present (defaulting
// to nil) so positional projection always matches the description order.
func newResultSet(p *statement.Payload) *ResultSet {
	rs := &ResultSet{
		columns:  p.Description,
		rowcount: p.Rowcount,
		rows:     make([]map[string]any, 0, len(p.Results)),
	}
	for _, r := range p.Results {
		row := make(map[string]any, len(p.Description))
		for _, col := range p.Description {
			row[col.Name] = r.Data[col.Name]
		}
		rs.rows = append(rs.rows, row)
	}
	return rs
}

// Columns returns the column names in description order.
func (rs *ResultSet) Columns() []string {
	if len(rs.columns) == 0 {
		return nil
	}
	names := make([]string, len(rs.columns))
	for i, c := range rs.columns {
		names[i] = c.Name
	}
	return names
}

// Description returns the (name, type) column descriptors.
func (rs *ResultSet) Description() []statement.Column { return rs.columns }

// Len is the number of materialized rows.
func (rs *ResultSet) Len() int { return len(rs.rows) }

// RowCount is the row count the remote wrapper reported for the result.
func (rs *ResultSet) RowCount() int64 { return rs.rowcount }

// Row projects row i into positional form following the description
// order. ok is false past the last row.
func (rs *ResultSet) Row(i int) (row []any, ok bool) {
	if i < 0 || i >= len(rs.rows) {
		return nil, false
	}
	row = make([]any, len(rs.columns))
	for j, col := range rs.columns {
		row[j] = rs.rows[i][col.Name]
	}
	return row, true
}
