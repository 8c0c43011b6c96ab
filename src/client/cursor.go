package client

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"
)

// Cursor executes statements on its session's connection and iterates their
// results. One statement is live at a time; executing again closes the prior
// result stream.
type Cursor struct {
	sess    *Session
	rows    *sqlx.Rows
	cols    []Column
	queryID string
	closed  bool
}

func newCursor(s *Session) *Cursor {
	return &Cursor{sess: s}
}

// Execute runs a statement synchronously. Column metadata and the driver's
// query-tracking identifier are available afterwards via Description and
// QueryID.
func (cur *Cursor) Execute(ctx context.Context, query string, args ...interface{}) error {
	if cur.closed {
		return NewUsageError("cursor is closed")
	}

	c := cur.sess.client
	var spanCtx *spanContext
	if c.observability != nil {
		ctx, spanCtx = c.observability.startQuerySpan(ctx, "db.query", query, c.config.Observability)
	}

	qidCh := make(chan string, 1)
	qctx := sf.WithQueryIDChan(ctx, qidCh)

	start := time.Now()
	err := cur.open(qctx, query, args...)
	cur.queryID = drainQueryID(qidCh)

	summary := &ResultSummary{
		QueryText:     query,
		QueryID:       cur.queryID,
		ExecutionTime: time.Since(start),
		StatementType: inferStatementType(query),
	}
	if c.observability != nil {
		c.observability.finishQuerySpan(spanCtx, summary, err, c.config.Observability)
	}

	if err != nil {
		c.logAt(LogLevelError, LogCategoryQuery, "Query failed", "session_id", cur.sess.id, "error", err)
		return err
	}
	if c.config.Logging != nil && c.config.Logging.LogQueryTiming {
		c.logAt(LogLevelInfo, LogCategoryQuery, "Query executed", "session_id", cur.sess.id, "query_id", cur.queryID, "duration", summary.ExecutionTime)
	}
	return nil
}

// ExecuteAsync submits a statement for out-of-band execution and returns the
// query-tracking identifier before any results exist. Retrieve results later
// with FetchByQueryID or probe progress with Session.QueryStatus.
func (cur *Cursor) ExecuteAsync(ctx context.Context, query string) (string, error) {
	if cur.closed {
		return "", NewUsageError("cursor is closed")
	}

	c := cur.sess.client
	var spanCtx *spanContext
	if c.observability != nil {
		ctx, spanCtx = c.observability.startQuerySpan(ctx, "db.query.submit", query, c.config.Observability)
	}

	qidCh := make(chan string, 1)
	qctx := sf.WithAsyncMode(sf.WithQueryIDChan(ctx, qidCh))

	start := time.Now()
	rows, err := cur.sess.conn.QueryxContext(qctx, query)
	if rows != nil {
		// only the identifier matters; the result stays on the server
		_ = rows.Close()
	}
	qid := drainQueryID(qidCh)
	if err == nil && qid == "" {
		err = NewUsageError("driver did not report a query id")
	}
	cur.queryID = qid

	summary := &ResultSummary{
		QueryText:     query,
		QueryID:       qid,
		ExecutionTime: time.Since(start),
		StatementType: inferStatementType(query),
	}
	if c.observability != nil {
		c.observability.finishQuerySpan(spanCtx, summary, err, c.config.Observability)
		if err == nil {
			c.observability.recordSessionEvent("async_submit", c.config.Observability, nil)
		}
	}

	if err != nil {
		c.logAt(LogLevelError, LogCategoryAsync, "Async submission failed", "session_id", cur.sess.id, "error", err)
		return "", err
	}
	if c.config.Logging != nil && c.config.Logging.LogAsyncEvents {
		c.logAt(LogLevelDebug, LogCategoryAsync, "Query submitted", "session_id", cur.sess.id, "query_id", qid)
	}
	return qid, nil
}

// FetchByQueryID loads the result of a previously submitted query by its
// tracking identifier. The wait for completion happens inside the driver; no
// polling is done here.
func (cur *Cursor) FetchByQueryID(ctx context.Context, queryID string) error {
	if cur.closed {
		return NewUsageError("cursor is closed")
	}

	c := cur.sess.client
	var spanCtx *spanContext
	if c.observability != nil {
		ctx, spanCtx = c.observability.startQuerySpan(ctx, "db.query.fetch", queryID, c.config.Observability)
	}

	start := time.Now()
	err := cur.open(sf.WithFetchResultByID(ctx, queryID), "")
	cur.queryID = queryID

	summary := &ResultSummary{
		QueryID:       queryID,
		ExecutionTime: time.Since(start),
		StatementType: "QUERY",
	}
	if c.observability != nil {
		c.observability.finishQuerySpan(spanCtx, summary, err, c.config.Observability)
	}

	if err != nil {
		c.logAt(LogLevelError, LogCategoryAsync, "Fetch by query id failed", "session_id", cur.sess.id, "query_id", queryID, "error", err)
		return err
	}
	if c.config.Logging != nil && c.config.Logging.LogAsyncEvents {
		c.logAt(LogLevelDebug, LogCategoryAsync, "Result retrieved", "session_id", cur.sess.id, "query_id", queryID, "duration", summary.ExecutionTime)
	}
	return nil
}

// Describe returns the column metadata a query would produce, without
// executing it. The cursor's open result set, if any, is untouched.
func (cur *Cursor) Describe(ctx context.Context, query string) ([]Column, error) {
	if cur.closed {
		return nil, NewUsageError("cursor is closed")
	}

	rows, err := cur.sess.conn.QueryxContext(sf.WithDescribeOnly(ctx), query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	return columnsFromTypes(types), nil
}

// open replaces the cursor's result stream with a freshly executed one.
func (cur *Cursor) open(ctx context.Context, query string, args ...interface{}) error {
	if cur.rows != nil {
		_ = cur.rows.Close()
		cur.rows = nil
		cur.cols = nil
	}

	rows, err := cur.sess.conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return err
	}
	cur.rows = rows

	types, err := rows.ColumnTypes()
	if err != nil {
		_ = rows.Close()
		cur.rows = nil
		return err
	}
	cur.cols = columnsFromTypes(types)
	return nil
}

// FetchOne returns the next row, or ErrNoRows when the result set is
// exhausted.
func (cur *Cursor) FetchOne() (Row, error) {
	if err := cur.fetchable(); err != nil {
		return nil, err
	}
	if !cur.rows.Next() {
		if err := cur.rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRows
	}
	vals, err := cur.rows.SliceScan()
	if err != nil {
		return nil, err
	}
	cur.countRows(1)
	return Row(vals), nil
}

// FetchAll returns all remaining rows in order.
func (cur *Cursor) FetchAll() ([]Row, error) {
	if err := cur.fetchable(); err != nil {
		return nil, err
	}
	var out []Row
	for cur.rows.Next() {
		vals, err := cur.rows.SliceScan()
		if err != nil {
			return nil, err
		}
		out = append(out, Row(vals))
	}
	if err := cur.rows.Err(); err != nil {
		return nil, err
	}
	cur.countRows(int64(len(out)))
	return out, nil
}

// FetchOneMap returns the next row keyed by column name, or ErrNoRows when
// the result set is exhausted.
func (cur *Cursor) FetchOneMap() (map[string]interface{}, error) {
	if err := cur.fetchable(); err != nil {
		return nil, err
	}
	if !cur.rows.Next() {
		if err := cur.rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRows
	}
	m := map[string]interface{}{}
	if err := cur.rows.MapScan(m); err != nil {
		return nil, err
	}
	cur.countRows(1)
	return m, nil
}

// FetchAllMaps returns all remaining rows keyed by column name.
func (cur *Cursor) FetchAllMaps() ([]map[string]interface{}, error) {
	if err := cur.fetchable(); err != nil {
		return nil, err
	}
	var out []map[string]interface{}
	for cur.rows.Next() {
		m := map[string]interface{}{}
		if err := cur.rows.MapScan(m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := cur.rows.Err(); err != nil {
		return nil, err
	}
	cur.countRows(int64(len(out)))
	return out, nil
}

// Description returns the column metadata of the current result set, in the
// same order as row values.
func (cur *Cursor) Description() []Column {
	return cur.cols
}

// QueryID returns the tracking identifier of the last executed or submitted
// statement.
func (cur *Cursor) QueryID() string {
	return cur.queryID
}

// NextResultSet advances to the next result set of a multi-statement
// execution, refreshing the cursor's column metadata.
func (cur *Cursor) NextResultSet() bool {
	if cur.rows == nil {
		return false
	}
	if !cur.rows.NextResultSet() {
		return false
	}
	if types, err := cur.rows.ColumnTypes(); err == nil {
		cur.cols = columnsFromTypes(types)
	}
	return true
}

// Close releases the cursor's result stream. Closing an already-closed
// cursor is a no-op.
func (cur *Cursor) Close() error {
	if cur.closed {
		return nil
	}
	cur.closed = true
	if cur.rows == nil {
		return nil
	}
	err := cur.rows.Close()
	cur.rows = nil
	return err
}

func (cur *Cursor) fetchable() error {
	if cur.closed {
		return NewUsageError("cursor is closed")
	}
	if cur.rows == nil {
		return NewUsageError("no open result set; execute a query first")
	}
	return nil
}

func (cur *Cursor) countRows(n int64) {
	c := cur.sess.client
	if c.observability != nil && n > 0 && c.config.Observability.EnableMetrics {
		c.observability.rowsFetched.Add(context.Background(), n, withMetricAttrs(c.config.Observability))
	}
}

// drainQueryID performs a non-blocking read of the driver's query id channel.
// The driver reports the id before the query call returns; drivers that never
// report one leave the identifier empty.
func drainQueryID(ch <-chan string) string {
	select {
	case id := <-ch:
		return id
	default:
		return ""
	}
}
