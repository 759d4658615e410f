// Package history keeps usage snapshots of mounted filesystems in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/JohnDeved/dfmon/internal/disk"
)

// DB wraps the SQLite database holding the history.
type DB struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		taken_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_taken_at ON scans(taken_at);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL REFERENCES scans(id),
		mount_point TEXT NOT NULL,
		device TEXT NOT NULL,
		fs_type TEXT DEFAULT '',
		total INTEGER NOT NULL,
		used INTEGER NOT NULL,
		free INTEGER NOT NULL,
		inodes_total INTEGER DEFAULT 0,
		inodes_used INTEGER DEFAULT 0,
		inodes_free INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_scan ON snapshots(scan_id);
	CREATE INDEX IF NOT EXISTS idx_snapshots_mount ON snapshots(mount_point);
	`
	_, err := db.Exec(schema)
	return err
}

// Snapshot is the recorded usage of one mount during one scan.
type Snapshot struct {
	ScanID  string    `json:"scan_id"`
	TakenAt time.Time `json:"taken_at"`
	disk.Mount
}

// NewScanID returns a fresh identifier grouping the snapshots of one scan.
func NewScanID() string {
	return uuid.NewString()
}

// Record stores the usage of mounts as one scan.
func (d *DB) Record(ctx context.Context, scanID string, at time.Time, mounts []disk.Mount) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO scans (id, taken_at) VALUES (?, ?)", scanID, at.UnixMilli(),
	); err != nil {
		return fmt.Errorf("inserting scan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshots (scan_id, mount_point, device, fs_type, total, used, free,
		                        inodes_total, inodes_used, inodes_free)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range mounts {
		if _, err := stmt.ExecContext(ctx, scanID, m.MountPoint, m.Device, m.FSType,
			int64(m.Total), int64(m.Used), int64(m.Free),
			int64(m.InodesTotal), int64(m.InodesUsed), int64(m.InodesFree),
		); err != nil {
			return fmt.Errorf("inserting snapshot for %s: %w", m.MountPoint, err)
		}
	}

	return tx.Commit()
}

// Recent returns the newest snapshots first, optionally restricted to one
// mount point.
func (d *DB) Recent(ctx context.Context, mountPoint string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT s.id, s.taken_at, n.mount_point, n.device, n.fs_type, n.total, n.used, n.free,
		       n.inodes_total, n.inodes_used, n.inodes_free
		FROM snapshots n
		JOIN scans s ON s.id = n.scan_id
		WHERE ? = '' OR n.mount_point = ?
		ORDER BY s.taken_at DESC, n.mount_point
		LIMIT ?
	`, mountPoint, mountPoint, limit)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var (
			s                                   Snapshot
			takenAt                             int64
			total, used, free                   int64
			inodesTotal, inodesUsed, inodesFree int64
		)
		if err := rows.Scan(&s.ScanID, &takenAt, &s.MountPoint, &s.Device, &s.FSType,
			&total, &used, &free, &inodesTotal, &inodesUsed, &inodesFree,
		); err != nil {
			return nil, err
		}
		s.TakenAt = time.UnixMilli(takenAt)
		s.Total, s.Used, s.Free = uint64(total), uint64(used), uint64(free)
		s.InodesTotal, s.InodesUsed, s.InodesFree = uint64(inodesTotal), uint64(inodesUsed), uint64(inodesFree)
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// Prune deletes scans taken before the given time and returns how many
// scans were removed.
func (d *DB) Prune(ctx context.Context, before time.Time) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	cutoff := before.UnixMilli()
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM snapshots WHERE scan_id IN (SELECT id FROM scans WHERE taken_at < ?)", cutoff,
	); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM scans WHERE taken_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// Expire prunes scans older than keepDays before now. It does nothing when
// keepDays is not positive.
func (d *DB) Expire(ctx context.Context, now time.Time, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	return d.Prune(ctx, now.AddDate(0, 0, -keepDays))
}

// Stats summarizes the stored history.
type Stats struct {
	Scans     int
	Snapshots int
	Oldest    time.Time
}

// GetStats returns statistics about the history.
func (d *DB) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scans").Scan(&s.Scans); err != nil {
		return s, err
	}
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&s.Snapshots); err != nil {
		return s, err
	}
	var oldest sql.NullInt64
	if err := d.db.QueryRowContext(ctx, "SELECT MIN(taken_at) FROM scans").Scan(&oldest); err != nil {
		return s, err
	}
	if oldest.Valid {
		s.Oldest = time.UnixMilli(oldest.Int64)
	}
	return s, nil
}
