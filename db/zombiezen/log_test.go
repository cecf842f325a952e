package zombiezen

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gitinsky/gatekeeper/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func TestLogStoreInsertBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")

	store, err := NewLogStore(path)
	if err != nil {
		t.Fatal(err)
	}

	batch := []db.Log{
		{Level: 0, Message: "started", JsonData: `{"addr":":8080"}`, Created: "2026-04-01T10:00:00Z"},
		{Level: 8, Message: "delivery failed", Created: "2026-04-01T10:00:01Z"},
	}
	if err := store.InsertBatch(batch); err != nil {
		t.Fatal(err)
	}
	if err := store.InsertBatch(nil); err != nil {
		t.Errorf("empty batch must be a no-op: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	// Re-open and count what was persisted.
	pool, err := sqlitex.NewPool("file:"+path, sqlitex.PoolOptions{PoolSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Put(conn)

	var count int64
	err = sqlitex.Execute(conn, `SELECT COUNT(*) FROM logs`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("persisted %d rows, want 2", count)
	}
}
