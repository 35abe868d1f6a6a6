// Package sqlite provides a SQLite-backed implementation of the
// app.WaitlistStore port. Ids are persisted as raw 16-byte UUIDv7 values;
// translation to and from the external "<prefix>_<body>" form happens only
// at this boundary, through a resource id column adapter.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/haukened/waitlist/internal/app"
	"github.com/haukened/waitlist/internal/domain"
	"github.com/haukened/waitlist/internal/resourceid"

	// registers the "sqlite3" driver and exposes its error codes
	"github.com/mattn/go-sqlite3"
)

var _ app.WaitlistStore = (*Store)(nil)

// IDColumn is the column adapter plus the insert-time default generator.
// resourceid.Column satisfies it.
type IDColumn interface {
	resourceid.ColumnAdapter
	Default() (string, error)
}

// Store implements app.WaitlistStore using SQLite (via database/sql). It is
// safe for concurrent use; database/sql manages connection pooling and
// serialization.
type Store struct {
	db *sql.DB
	id IDColumn
}

// New constructs a Store, initializing the required schema if absent.
func New(db *sql.DB, id IDColumn) (*Store, error) {
	if db == nil || id == nil {
		return nil, errors.New("sqlite store requires db and id column")
	}
	s := &Store{db: db, id: id}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

// The table is WITHOUT ROWID so rows cluster on the time-ordered raw id.
func (s *Store) init() error {
	schema := `CREATE TABLE IF NOT EXISTS waitlist (
id BLOB PRIMARY KEY CHECK (length(id) = 16),
email TEXT NOT NULL UNIQUE,
created_at INTEGER NOT NULL
) WITHOUT ROWID;`
	_, err := s.db.Exec(schema)
	return err
}

// toStorage decodes an external id, mapping codec failures to domain.ErrInvalidID.
func (s *Store) toStorage(id domain.EntryID) ([]byte, error) {
	raw, err := s.id.ToStorage(id.String())
	if err != nil {
		if domain.IsCodecError(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidID, err)
		}
		return nil, err
	}
	return raw, nil
}

// Insert stores a new entry, minting an id via the column default when e.ID is empty.
func (s *Store) Insert(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	if e.ID == "" {
		ext, err := s.id.Default()
		if err != nil {
			return domain.Entry{}, err
		}
		e.ID = domain.EntryID(ext)
	}
	raw, err := s.toStorage(e.ID)
	if err != nil {
		return domain.Entry{}, err
	}
	const q = `INSERT INTO waitlist (id, email, created_at) VALUES (?,?,?)`
	if _, err := s.db.ExecContext(ctx, q, raw, e.Email, e.CreatedAt.UnixMilli()); err != nil {
		if isUniqueEmail(err) {
			return domain.Entry{}, app.ErrAlreadyJoined
		}
		return domain.Entry{}, err
	}
	e.CreatedAt = time.UnixMilli(e.CreatedAt.UnixMilli()).UTC()
	return e, nil
}

// Get loads one entry. The returned ID is re-encoded from the stored bytes.
func (s *Store) Get(ctx context.Context, id domain.EntryID) (domain.Entry, error) {
	raw, err := s.toStorage(id)
	if err != nil {
		return domain.Entry{}, err
	}
	const q = `SELECT id, email, created_at FROM waitlist WHERE id=?`
	var (
		e         domain.Entry
		createdMs int64
	)
	row := s.db.QueryRowContext(ctx, q, raw)
	if err := row.Scan(&externalID{col: s.id, dst: &e.ID}, &e.Email, &createdMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Entry{}, app.ErrNotFound
		}
		return domain.Entry{}, err
	}
	e.CreatedAt = time.UnixMilli(createdMs).UTC()
	return e, nil
}

// Position counts entries whose raw id sorts at or before id. UUIDv7 bytes
// compare in creation order, so this is the 1-based queue position.
func (s *Store) Position(ctx context.Context, id domain.EntryID) (int64, error) {
	raw, err := s.toStorage(id)
	if err != nil {
		return 0, err
	}
	const q = `SELECT COUNT(*) FROM waitlist WHERE id <= ?`
	var n int64
	if err := s.db.QueryRowContext(ctx, q, raw).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Count returns the number of entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM waitlist`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes an entry. Returns app.ErrNotFound if nothing was deleted.
func (s *Store) Delete(ctx context.Context, id domain.EntryID) error {
	raw, err := s.toStorage(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM waitlist WHERE id=?`, raw)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return app.ErrNotFound
	}
	return nil
}

// Checkpoint runs a truncating WAL checkpoint and returns the number of
// frames moved into the database file. On a non-WAL database it is a no-op.
func (s *Store) Checkpoint(ctx context.Context) (int, error) {
	var busy, logFrames, checkpointed int
	if err := s.db.QueryRowContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`).Scan(&busy, &logFrames, &checkpointed); err != nil {
		return 0, err
	}
	if busy != 0 {
		return checkpointed, errors.New("wal checkpoint blocked by active readers")
	}
	return max(checkpointed, 0), nil
}

// Optimize refreshes query planner statistics.
func (s *Store) Optimize(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `PRAGMA optimize`)
	return err
}

// List returns up to limit entries in signup order, oldest first. A limit
// of zero or less returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	const q = `SELECT id, email, created_at FROM waitlist ORDER BY id LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Entry
	for rows.Next() {
		var (
			e         domain.Entry
			createdMs int64
		)
		if err = rows.Scan(&externalID{col: s.id, dst: &e.ID}, &e.Email, &createdMs); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// externalID is a sql.Scanner that encodes a raw id column into its external form.
type externalID struct {
	col resourceid.ColumnAdapter
	dst *domain.EntryID
}

func (x *externalID) Scan(src any) error {
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("scan id: unexpected type %T", src)
	}
	ext, err := x.col.FromStorage(raw)
	if err != nil {
		return err
	}
	*x.dst = domain.EntryID(ext)
	return nil
}

func isUniqueEmail(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
