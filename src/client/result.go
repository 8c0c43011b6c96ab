package client

import (
	"database/sql"
)

// Row is one result row, column values in result-set order.
type Row []interface{}

// Column describes one column of a result set or of a described query.
type Column struct {
	Name         string
	DatabaseType string
	Nullable     bool
	Precision    int64
	Scale        int64
	Length       int64
}

// ResultSet is a fully fetched result: ordered rows paired with the column
// metadata they were produced under.
type ResultSet struct {
	Columns []Column
	Rows    []Row
}

// Names returns the column names of the result set in order.
func (rs *ResultSet) Names() []string {
	names := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		names[i] = c.Name
	}
	return names
}

// Maps returns the rows as dict-mapped records keyed by column name.
func (rs *ResultSet) Maps() []map[string]interface{} {
	names := rs.Names()
	out := make([]map[string]interface{}, len(rs.Rows))
	for i, row := range rs.Rows {
		m := make(map[string]interface{}, len(names))
		for j, name := range names {
			if j < len(row) {
				m[name] = row[j]
			}
		}
		out[i] = m
	}
	return out
}

// columnsFromTypes converts database/sql column metadata into Columns,
// preserving order.
func columnsFromTypes(types []*sql.ColumnType) []Column {
	cols := make([]Column, len(types))
	for i, ct := range types {
		col := Column{
			Name:         ct.Name(),
			DatabaseType: ct.DatabaseTypeName(),
		}
		if nullable, ok := ct.Nullable(); ok {
			col.Nullable = nullable
		}
		if precision, scale, ok := ct.DecimalSize(); ok {
			col.Precision = precision
			col.Scale = scale
		}
		if length, ok := ct.Length(); ok {
			col.Length = length
		}
		cols[i] = col
	}
	return cols
}
