package db

// Log is one persisted log record. Created is RFC3339 UTC text.
type Log struct {
	Level    int64
	Message  string
	JsonData string
	Created  string
}

// DbLog defines the interface for database operations related to logs.
type DbLog interface {
	// InsertBatch inserts a batch of log entries into the database.
	InsertBatch(batch []Log) error
	// Close closes the underlying database connection.
	Close() error
}
