package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/copdips/snowkit/src/internal/testutil"
)

func newClientOrSkip(t *testing.T) *Client {
	t.Helper()
	if !testutil.HasCredentials() {
		t.Skip("warehouse not available")
	}

	path := filepath.Join(t.TempDir(), "connections.toml")
	if err := os.WriteFile(path, []byte(testutil.ProfileTOML("integration")), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ProfilePath = path
	cfg.QueryTag = "snowkit-integration"
	c, err := NewClientWithConfig("integration", cfg)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestIntegrationSelectOne(t *testing.T) {
	c := newClientOrSkip(t)

	err := c.WithSession(context.Background(), func(ctx context.Context, sess *Session) error {
		cur := sess.Cursor()
		if err := cur.Execute(ctx, "select 1"); err != nil {
			return err
		}
		row, err := cur.FetchOne()
		if err != nil {
			return err
		}
		if len(row) != 1 {
			t.Errorf("expected one column, got %d", len(row))
		}
		if cur.QueryID() == "" {
			t.Error("expected a query id after execution")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestIntegrationDescribeMatchesExecution(t *testing.T) {
	c := newClientOrSkip(t)

	err := c.WithSession(context.Background(), func(ctx context.Context, sess *Session) error {
		cur := sess.Cursor()
		query := "select current_role() as role_name"

		desc, err := cur.Describe(ctx, query)
		if err != nil {
			return err
		}
		if len(desc) != 1 {
			t.Fatalf("expected one described column, got %d", len(desc))
		}

		if err := cur.Execute(ctx, query); err != nil {
			return err
		}
		m, err := cur.FetchOneMap()
		if err != nil {
			return err
		}
		if _, ok := m[desc[0].Name]; !ok {
			t.Errorf("described column %q missing from row keys %v", desc[0].Name, m)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestIntegrationAsyncMatchesSync(t *testing.T) {
	c := newClientOrSkip(t)

	query := "select seq4() as n from table(generator(rowcount => 5)) order by n"
	var syncRows, asyncRows []Row

	err := c.WithSession(context.Background(), func(ctx context.Context, sess *Session) error {
		cur := sess.Cursor()
		if err := cur.Execute(ctx, query); err != nil {
			return err
		}
		var err error
		syncRows, err = cur.FetchAll()
		if err != nil {
			return err
		}

		qid, err := cur.ExecuteAsync(ctx, query)
		if err != nil {
			return err
		}
		if err := cur.FetchByQueryID(ctx, qid); err != nil {
			return err
		}
		asyncRows, err = cur.FetchAll()
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(syncRows) != len(asyncRows) {
		t.Fatalf("sync returned %d rows, async %d", len(syncRows), len(asyncRows))
	}
	for i := range syncRows {
		if len(syncRows[i]) != len(asyncRows[i]) {
			t.Errorf("row %d: column count mismatch", i)
		}
	}
}

func TestIntegrationBatchesMatchWholeFetch(t *testing.T) {
	c := newClientOrSkip(t)

	query := "select seq4() as n from table(generator(rowcount => 100))"
	err := c.WithSession(context.Background(), func(ctx context.Context, sess *Session) error {
		cur := sess.Cursor()
		if err := cur.Execute(ctx, query); err != nil {
			return err
		}
		rows, err := cur.FetchAll()
		if err != nil {
			return err
		}

		var batched int64
		_, err = cur.FetchArrowBatches(ctx, query, func(rec arrow.Record) error {
			batched += rec.NumRows()
			return nil
		})
		if err != nil {
			return err
		}
		if int64(len(rows)) != batched {
			t.Errorf("whole fetch returned %d rows, batches carried %d", len(rows), batched)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestIntegrationRollbackOnDriverError(t *testing.T) {
	c := newClientOrSkip(t)

	err := c.WithSession(context.Background(), func(ctx context.Context, sess *Session) error {
		return sess.Cursor().Execute(ctx, "select * from table_that_does_not_exist_snowkit")
	})
	if err == nil {
		t.Fatal("expected a driver error")
	}
	sfErr, ok := AsDriverError(err)
	if !ok {
		t.Fatalf("expected a driver error, got %T: %v", err, err)
	}
	if sfErr.Number == 0 || sfErr.SQLState == "" {
		t.Errorf("driver error missing diagnostics: %+v", sfErr)
	}
}
