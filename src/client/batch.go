package client

import (
	"context"
	"database/sql/driver"

	"github.com/apache/arrow-go/v18/arrow"
	sf "github.com/snowflakedb/gosnowflake"
)

// FetchArrowBatches executes a query and streams its result as columnar
// batches, yielding each record to fn in result order. The records are owned
// by fn for the duration of the call; retain them with Retain if they must
// outlive it. Returns the number of records yielded.
func (cur *Cursor) FetchArrowBatches(ctx context.Context, query string, fn func(arrow.Record) error) (int, error) {
	if cur.closed {
		return 0, NewUsageError("cursor is closed")
	}

	c := cur.sess.client
	var spanCtx *spanContext
	if c.observability != nil {
		ctx, spanCtx = c.observability.startQuerySpan(ctx, "db.query.batches", query, c.config.Observability)
	}

	count := 0
	err := cur.sess.conn.Raw(func(dc interface{}) error {
		qc, ok := dc.(driver.QueryerContext)
		if !ok {
			return NewUsageError("driver connection does not support direct queries")
		}

		rows, err := qc.QueryContext(sf.WithArrowBatches(ctx), query, nil)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		sfRows, ok := rows.(sf.SnowflakeRows)
		if !ok {
			return NewUsageError("driver rows do not expose tabular batches")
		}
		cur.queryID = sfRows.GetQueryID()

		batches, err := sfRows.GetArrowBatches()
		if err != nil {
			return err
		}
		for _, batch := range batches {
			records, err := batch.Fetch()
			if err != nil {
				return err
			}
			for _, rec := range *records {
				count++
				if err := fn(rec); err != nil {
					rec.Release()
					return err
				}
				rec.Release()
			}
		}
		return nil
	})

	if c.observability != nil {
		c.observability.finishQuerySpan(spanCtx, &ResultSummary{
			QueryText:     query,
			QueryID:       cur.queryID,
			StatementType: inferStatementType(query),
		}, err, c.config.Observability)
		c.observability.recordBatches(int64(count), c.config.Observability)
	}
	if err != nil {
		c.logAt(LogLevelError, LogCategoryBatch, "Batch fetch failed", "session_id", cur.sess.id, "error", err)
		return count, err
	}
	if c.config.Logging != nil && c.config.Logging.LogQueryTiming {
		c.logAt(LogLevelInfo, LogCategoryBatch, "Batches fetched", "session_id", cur.sess.id, "query_id", cur.queryID, "batches", count)
	}
	return count, nil
}

// FetchArrowAll executes a query and returns its whole result as columnar
// records, concatenation order matching the batched variant. The caller owns
// the returned records and must Release them.
func (cur *Cursor) FetchArrowAll(ctx context.Context, query string) ([]arrow.Record, error) {
	var records []arrow.Record
	_, err := cur.FetchArrowBatches(ctx, query, func(rec arrow.Record) error {
		rec.Retain()
		records = append(records, rec)
		return nil
	})
	if err != nil {
		for _, rec := range records {
			rec.Release()
		}
		return nil, err
	}
	return records, nil
}

// RecordStrings renders a record's cells as display strings, one slice per
// row, NULL for null cells.
func RecordStrings(rec arrow.Record) [][]string {
	nRows := int(rec.NumRows())
	nCols := int(rec.NumCols())
	out := make([][]string, nRows)
	for i := 0; i < nRows; i++ {
		row := make([]string, nCols)
		for j := 0; j < nCols; j++ {
			col := rec.Column(j)
			if col.IsNull(i) {
				row[j] = "NULL"
			} else {
				row[j] = col.ValueStr(i)
			}
		}
		out[i] = row
	}
	return out
}
