package settings

import (
	"context"
	"database/sql"
	"strconv"

	_ "modernc.org/sqlite"
)

// DB is a SQLite-backed key-value store for SyncSettings.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil { return nil, err }
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil { return nil, err }
	db := &DB{sql: d}
	if err := db.migrate(); err != nil { _ = d.Close(); return nil, err }
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL
	);
	`)
	return err
}

const (
	keyCredential   = "credential"
	keyHandle       = "handle"
	keyCachedUserID = "cachedUserId"
	keyInterval     = "intervalMinutes"
	keyRequestCount = "monthlyRequestCount"
	keyResetPeriod  = "lastResetPeriod"
)

// Load returns the stored settings merged over Default(). Missing or
// malformed keys keep their default value.
func (d *DB) Load(ctx context.Context) (SyncSettings, error) {
	s := Default()
	rows, err := d.sql.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil { return s, err }
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil { return s, err }
		switch k {
		case keyCredential:
			s.Credential = v
		case keyHandle:
			s.Handle = v
		case keyCachedUserID:
			s.CachedUserID = v
		case keyInterval:
			if n, err := strconv.Atoi(v); err == nil && n > 0 { s.IntervalMinutes = n }
		case keyRequestCount:
			if n, err := strconv.Atoi(v); err == nil && n >= 0 { s.MonthlyRequestCount = n }
		case keyResetPeriod:
			s.LastResetPeriod = v
		}
	}
	return s, rows.Err()
}

// Save upserts every key in one transaction so a concurrent Load never sees
// a half-written record.
func (d *DB) Save(ctx context.Context, s SyncSettings) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil { return err }
	pairs := [][2]string{
		{keyCredential, s.Credential},
		{keyHandle, s.Handle},
		{keyCachedUserID, s.CachedUserID},
		{keyInterval, strconv.Itoa(s.IntervalMinutes)},
		{keyRequestCount, strconv.Itoa(s.MonthlyRequestCount)},
		{keyResetPeriod, s.LastResetPeriod},
	}
	for _, p := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
			p[0], p[1]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
