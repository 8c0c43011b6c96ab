package client

import (
	"context"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/copdips/snowkit/src/sqlsplit"
)

// ExecuteScript runs a multi-statement script in a single round trip and
// returns one fully fetched result set per statement, in statement order.
// The statement count the driver requires is derived by splitting the script
// client-side.
func (s *Session) ExecuteScript(ctx context.Context, script string) ([]ResultSet, error) {
	if s.closed.Load() {
		return nil, NewUsageError("session is closed")
	}

	stmts, err := sqlsplit.Split(script)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, nil
	}

	mctx, err := sf.WithMultiStatement(ctx, len(stmts))
	if err != nil {
		return nil, err
	}

	c := s.client
	var spanCtx *spanContext
	if c.observability != nil {
		mctx, spanCtx = c.observability.startQuerySpan(mctx, "db.script", script, c.config.Observability)
	}

	rows, err := s.conn.QueryxContext(mctx, script)
	if err != nil {
		if c.observability != nil {
			c.observability.finishQuerySpan(spanCtx, &ResultSummary{QueryText: script, StatementType: "SCRIPT"}, err, c.config.Observability)
		}
		c.logAt(LogLevelError, LogCategoryQuery, "Script execution failed", "session_id", s.id, "statements", len(stmts), "error", err)
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var (
		results []ResultSet
		total   int64
	)
	for {
		rs, err := collectResultSet(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rs)
		total += int64(len(rs.Rows))
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if c.observability != nil {
		c.observability.finishQuerySpan(spanCtx, &ResultSummary{
			QueryText:     script,
			RowsFetched:   total,
			StatementType: "SCRIPT",
		}, nil, c.config.Observability)
	}
	if c.config.Logging != nil && c.config.Logging.LogQueryTiming {
		c.logAt(LogLevelInfo, LogCategoryQuery, "Script executed", "session_id", s.id, "statements", len(stmts), "rows", total)
	}
	return results, nil
}

// ExecuteEach splits the script and runs its statements one at a time on the
// session's cursor, returning one result set per statement. Execution stops
// at the first failing statement.
func (s *Session) ExecuteEach(ctx context.Context, script string) ([]ResultSet, error) {
	if s.closed.Load() {
		return nil, NewUsageError("session is closed")
	}

	stmts, err := sqlsplit.Split(script)
	if err != nil {
		return nil, err
	}

	var results []ResultSet
	for _, stmt := range stmts {
		if err := s.cursor.Execute(ctx, stmt); err != nil {
			return results, err
		}
		rows, err := s.cursor.FetchAll()
		if err != nil {
			return results, err
		}
		results = append(results, ResultSet{
			Columns: s.cursor.Description(),
			Rows:    rows,
		})
	}
	return results, nil
}

// collectResultSet drains the current result set of rows into a ResultSet.
func collectResultSet(rows *sqlx.Rows) (ResultSet, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return ResultSet{}, err
	}
	rs := ResultSet{Columns: columnsFromTypes(types)}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return ResultSet{}, err
		}
		rs.Rows = append(rs.Rows, Row(vals))
	}
	if err := rows.Err(); err != nil {
		return ResultSet{}, err
	}
	return rs, nil
}
