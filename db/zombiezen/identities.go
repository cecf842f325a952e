package zombiezen

import (
	"context"
	"fmt"
	"time"

	"github.com/gitinsky/gatekeeper/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// newIdentityFromStmt creates an Identity struct from a SQLite statement.
// Nullable time columns come back as "" and stay zero.
func newIdentityFromStmt(stmt *sqlite.Stmt) (*db.Identity, error) {
	status, err := db.ParseStatus(stmt.GetText("status"))
	if err != nil {
		return nil, fmt.Errorf("error parsing status: %w", err)
	}

	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	id := &db.Identity{
		ExternalID:  stmt.GetText("external_id"),
		Name:        stmt.GetText("name"),
		Email:       stmt.GetText("email"),
		Status:      status,
		PendingCode: stmt.GetText("pending_code"),
		Created:     created,
		IsAdmin:     stmt.GetInt64("is_admin") != 0,
	}

	for _, col := range []struct {
		name string
		dst  *time.Time
	}{
		{"code_expires_at", &id.CodeExpiresAt},
		{"verified_at", &id.VerifiedAt},
		{"last_activity_at", &id.LastActivityAt},
	} {
		if s := stmt.GetText(col.name); s != "" {
			t, err := db.TimeParse(s)
			if err != nil {
				return nil, fmt.Errorf("error parsing %s time: %w", col.name, err)
			}
			*col.dst = t
		}
	}

	return id, nil
}

const identityColumns = `external_id, name, email, status, pending_code, code_expires_at, verified_at, last_activity_at, created, is_admin`

// GetByExternalID retrieves an identity by its external id.
// A nil identity with nil error indicates no matching record was found.
func (d *Db) GetByExternalID(externalID string) (*db.Identity, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var id *db.Identity
	err = sqlitex.Execute(conn,
		`SELECT `+identityColumns+` FROM identities WHERE external_id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				id, err = newIdentityFromStmt(stmt)
				return err
			},
			Args: []interface{}{externalID},
		})
	if err != nil {
		return nil, err
	}
	return id, nil
}

// GetByEmail retrieves the identity bound to a normalized email address, or
// (nil, nil) when the email is unclaimed.
func (d *Db) GetByEmail(email string) (*db.Identity, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var id *db.Identity
	err = sqlitex.Execute(conn,
		`SELECT `+identityColumns+` FROM identities WHERE email = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				id, err = newIdentityFromStmt(stmt)
				return err
			},
			Args: []interface{}{email},
		})
	if err != nil {
		return nil, err
	}
	return id, nil
}

// UpsertPending creates or overwrites the identity row for a new
// verification attempt. The claim check and the write run inside one
// IMMEDIATE transaction; the UNIQUE(email) index backstops the check against
// a concurrent claim through another connection.
func (d *Db) UpsertPending(p db.PendingUpsert) error {
	if p.ExternalID == "" || p.Email == "" || p.Code == "" || p.CodeExpiresAt.IsZero() {
		return fmt.Errorf("%w: external_id, email, code, code_expires_at", db.ErrMissingFields)
	}

	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	if err = sqlitex.Execute(conn, "BEGIN IMMEDIATE;", nil); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = sqlitex.Execute(conn, "ROLLBACK;", nil)
		}
	}()

	var claimedBy string
	err = sqlitex.Execute(conn,
		`SELECT external_id FROM identities WHERE email = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				claimedBy = stmt.ColumnText(0)
				return nil
			},
			Args: []interface{}{p.Email},
		})
	if err != nil {
		return fmt.Errorf("failed to check email claim: %w", err)
	}
	if claimedBy != "" && claimedBy != p.ExternalID {
		err = db.ErrEmailClaimed
		return err
	}

	now := db.TimeFormat(p.Now)
	err = sqlitex.Execute(conn,
		`INSERT INTO identities (external_id, name, email, status, pending_code, code_expires_at, last_activity_at, created)
		VALUES (?, ?, ?, 'pending', ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			status = 'pending',
			pending_code = excluded.pending_code,
			code_expires_at = excluded.code_expires_at,
			last_activity_at = excluded.last_activity_at`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				p.ExternalID,
				p.Name,
				p.Email,
				p.Code,
				db.TimeFormat(p.CodeExpiresAt),
				now,
				now,
			},
		})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			err = fmt.Errorf("%w: %w", db.ErrEmailClaimed, db.ErrConstraintUnique)
		} else {
			err = fmt.Errorf("failed to upsert identity: %w", err)
		}
		return err
	}

	if err = sqlitex.Execute(conn, "COMMIT;", nil); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ConsumeCode flips a pending identity to verified when the submitted code
// matches and is unexpired at now. Flip, verified_at and code clear are a
// single statement, so a code is usable at most once.
func (d *Db) ConsumeCode(externalID, code string, now time.Time) (bool, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return false, err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE identities
		SET status = 'verified',
			verified_at = ?,
			pending_code = NULL,
			code_expires_at = NULL
		WHERE external_id = ?
			AND status = 'pending'
			AND pending_code = ?
			AND code_expires_at > ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{db.TimeFormat(now), externalID, code, db.TimeFormat(now)},
		})
	if err != nil {
		return false, fmt.Errorf("failed to consume code: %w", err)
	}
	return conn.Changes() > 0, nil
}

// ExpireSession downgrades a verified identity to pending when its last
// activity is before cutoff. The WHERE guard makes the downgrade safe under
// concurrent checks; verified_at is retained historically.
func (d *Db) ExpireSession(externalID string, cutoff time.Time) (bool, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return false, err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE identities
		SET status = 'pending'
		WHERE external_id = ?
			AND status = 'verified'
			AND last_activity_at < ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{externalID, db.TimeFormat(cutoff)},
		})
	if err != nil {
		return false, fmt.Errorf("failed to expire session: %w", err)
	}
	return conn.Changes() > 0, nil
}

// Touch updates the last activity timestamp. A missing row is a no-op.
func (d *Db) Touch(externalID string, now time.Time) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE identities SET last_activity_at = ? WHERE external_id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{db.TimeFormat(now), externalID},
		})
	if err != nil {
		return fmt.Errorf("failed to touch identity: %w", err)
	}
	return nil
}

// SetAdmin flips the stored admin flag.
func (d *Db) SetAdmin(externalID string, isAdmin bool) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE identities SET is_admin = ? WHERE external_id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{isAdmin, externalID},
		})
	if err != nil {
		return fmt.Errorf("failed to set admin flag: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrIdentityNotFound
	}
	return nil
}

// SetStatus writes the status column directly. Administrative surface only;
// clearing a pending code on revocation keeps the row consistent.
func (d *Db) SetStatus(externalID string, status db.Status) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE identities
		SET status = ?,
			pending_code = CASE WHEN ? = 'revoked' THEN NULL ELSE pending_code END,
			code_expires_at = CASE WHEN ? = 'revoked' THEN NULL ELSE code_expires_at END
		WHERE external_id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{string(status), string(status), string(status), externalID},
		})
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrIdentityNotFound
	}
	return nil
}

// ClearDeadCodes nulls pending codes whose expiry passed before cutoff.
// Expiry is checked at submit time, so this only reclaims storage.
func (d *Db) ClearDeadCodes(cutoff time.Time) (int64, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return 0, err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE identities
		SET pending_code = NULL,
			code_expires_at = NULL
		WHERE pending_code IS NOT NULL
			AND code_expires_at < ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{db.TimeFormat(cutoff)},
		})
	if err != nil {
		return 0, fmt.Errorf("failed to clear dead codes: %w", err)
	}
	return int64(conn.Changes()), nil
}
