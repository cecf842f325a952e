package zombiezen

import (
	"fmt"

	"github.com/gitinsky/gatekeeper/db"
	"zombiezen.com/go/sqlite/sqlitex"
)

type Db struct {
	pool *sqlitex.Pool
}

// Verify interface implementations
var _ db.DbIdentity = (*Db)(nil)
var _ db.DbAudit = (*Db)(nil)
var _ db.DbJanitor = (*Db)(nil)

// New creates a new Db instance using an existing pool provided by the user.
// The lifecycle of the pool is managed externally; this type does not close it.
func New(pool *sqlitex.Pool) (*Db, error) {
	if pool == nil {
		return nil, fmt.Errorf("provided pool cannot be nil")
	}
	return &Db{pool: pool}, nil
}

// NewPool opens a sqlite pool with the pragmas the store relies on.
// WAL keeps readers unblocked while a write transaction holds the lock.
func NewPool(path string, size int) (*sqlitex.Pool, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", path)
	pool, err := sqlitex.NewPool(dsn, sqlitex.PoolOptions{PoolSize: size})
	if err != nil {
		return nil, fmt.Errorf("failed to open database pool: %w", err)
	}
	return pool, nil
}
