package zombiezen

import (
	"context"
	"fmt"
	"time"

	"github.com/gitinsky/gatekeeper/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// InsertInteraction appends one interaction record.
func (d *Db) InsertInteraction(it db.Interaction) error {
	if it.ID == "" || it.ExternalID == "" {
		return fmt.Errorf("%w: id, external_id", db.ErrMissingFields)
	}

	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO interaction_log (id, external_id, query, response, response_time_ms, created)
		VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				it.ID,
				it.ExternalID,
				it.Query,
				it.Response,
				it.ResponseTimeMs,
				db.TimeFormat(it.Created),
			},
		})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return fmt.Errorf("interaction insert failed: %w: %w", db.ErrConstraintUnique, err)
		}
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

// GetStats returns identity counts by status and the interaction total.
func (d *Db) GetStats() (*db.Stats, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	stats := &db.Stats{IdentitiesByStatus: make(map[db.Status]int64)}

	err = sqlitex.Execute(conn,
		`SELECT status, COUNT(*) FROM identities GROUP BY status`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				status, err := db.ParseStatus(stmt.ColumnText(0))
				if err != nil {
					return err
				}
				stats.IdentitiesByStatus[status] = stmt.ColumnInt64(1)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to count identities: %w", err)
	}

	err = sqlitex.Execute(conn,
		`SELECT COUNT(*) FROM interaction_log`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stats.Interactions = stmt.ColumnInt64(0)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}

	return stats, nil
}

// PruneInteractions deletes interaction rows created before cutoff.
func (d *Db) PruneInteractions(cutoff time.Time) (int64, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return 0, err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM interaction_log WHERE created < ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{db.TimeFormat(cutoff)},
		})
	if err != nil {
		return 0, fmt.Errorf("failed to prune interactions: %w", err)
	}
	return int64(conn.Changes()), nil
}
