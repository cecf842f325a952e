package zombiezen

import (
	"fmt"

	"github.com/gitinsky/gatekeeper/db"
	"github.com/gitinsky/gatekeeper/migrations"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// LogStore writes batched log records to a dedicated SQLite file on a single
// connection. It is owned by the log daemon; not safe for concurrent use.
type LogStore struct {
	conn *sqlite.Conn
}

var _ db.DbLog = (*LogStore)(nil)

// NewLogStore opens a connection for log writes with performance pragmas.
func NewLogStore(dbPath string) (*LogStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=off", dbPath)

	conn, err := sqlite.OpenConn(dsn, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open logging connection: %w", err)
	}

	if err := ApplyMigrations(conn, migrations.LogSchema()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to apply log schema: %w", err)
	}
	return &LogStore{conn: conn}, nil
}

// InsertBatch writes a batch of log entries inside an explicit transaction
// that is rolled back on any error.
func (s *LogStore) InsertBatch(batch []db.Log) error {
	if len(batch) == 0 {
		return nil
	}

	err := sqlitex.Execute(s.conn, "BEGIN IMMEDIATE;", nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = sqlitex.Execute(s.conn, "ROLLBACK;", nil)
		}
	}()

	stmt, err := s.conn.Prepare("INSERT INTO logs (level, message, data, created) VALUES ($level, $message, $data, $created)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Finalize()

	for _, entry := range batch {
		stmt.SetInt64("$level", entry.Level)
		stmt.SetText("$message", entry.Message)
		stmt.SetText("$data", entry.JsonData)
		stmt.SetText("$created", entry.Created)

		if _, err = stmt.Step(); err != nil {
			stmt.Reset()
			return fmt.Errorf("failed to execute statement for record (msg: %q): %w", entry.Message, err)
		}
		stmt.Reset()
	}

	if err = sqlitex.Execute(s.conn, "COMMIT;", nil); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *LogStore) Close() error {
	return s.conn.Close()
}
