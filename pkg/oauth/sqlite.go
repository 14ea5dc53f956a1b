package oauth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const credentialsSchema = `CREATE TABLE IF NOT EXISTS credentials (
    name          TEXT PRIMARY KEY,
    access_token  TEXT NOT NULL DEFAULT '',
    refresh_token TEXT NOT NULL DEFAULT '',
    token_type    TEXT NOT NULL DEFAULT '',
    expiry        TEXT NOT NULL DEFAULT '',
    updated_at    TEXT NOT NULL
)`

// SQLiteStore keeps the snapshot in a single-row-per-provider SQLite table.
type SQLiteStore struct {
	db   *sql.DB
	name string
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(credentialsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create credentials table: %w", err)
	}

	return &SQLiteStore{db: db, name: "youtube"}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	expiry := ""
	if !rec.Expiry.IsZero() {
		expiry = rec.Expiry.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (name, access_token, refresh_token, token_type, expiry, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET
             access_token = excluded.access_token,
             refresh_token = excluded.refresh_token,
             token_type = excluded.token_type,
             expiry = excluded.expiry,
             updated_at = excluded.updated_at`,
		s.name, rec.AccessToken, rec.RefreshToken, rec.TokenType, expiry,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Record, error) {
	var rec Record
	var expiry string
	err := s.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, token_type, expiry FROM credentials WHERE name = ?`,
		s.name,
	).Scan(&rec.AccessToken, &rec.RefreshToken, &rec.TokenType, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrTokenNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load credential: %w", err)
	}

	if expiry != "" {
		t, err := time.Parse(time.RFC3339Nano, expiry)
		if err != nil {
			return Record{}, fmt.Errorf("parse credential expiry: %w", err)
		}
		rec.Expiry = t
	}
	return rec, nil
}
