// Package analytics keeps privacy-conscious visit counts, work views and the
// contact message log in an embedded SQLite database.
package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Pure-Go SQLite driver, no cgo.
	_ "modernc.org/sqlite"
)

const (
	MemoryDSN = ":memory:"

	schemaVersion = 2

	// Retention is how long visitor rows are kept before Cleanup removes them.
	Retention = 365 * 24 * time.Hour
)

// Store wraps the analytics database.
type Store struct {
	db     *sql.DB
	salt   string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSalt fixes the IP hashing salt. By default a random salt is drawn per
// process so hashes cannot be joined across restarts.
func WithSalt(salt string) Option { return func(s *Store) { s.salt = salt } }

func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.logger = l } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// Open opens (creating if needed) the database at path and brings its schema
// up to date. Pass MemoryDSN for a throwaway store.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.salt == "" {
		salt, err := randomHex(16)
		if err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		s.salt = salt
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("analytics database path is required")
	}
	dsn := path
	memory := path == MemoryDSN
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps writes serialized and an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	s.db = db

	if !memory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Info("analytics store ready", "path", path)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// HashIP returns a truncated salted hash of ip. Raw addresses are never stored.
func (s *Store) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS version (
		id         INTEGER PRIMARY KEY CHECK(id=1),
		schema     INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}

	var cur int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		cur = 0
		if _, err := s.db.ExecContext(ctx, `INSERT INTO version (id, schema, updated_at) VALUES (1, 0, ?)`, s.now().UnixMilli()); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	}

	for cur < schemaVersion {
		next := cur + 1
		stmts, ok := migrations[next]
		if !ok {
			return fmt.Errorf("no migration to schema %d", next)
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, s.now().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		s.logger.Debug("analytics schema migrated", "schema", next)
		cur = next
	}
	return nil
}

// Timestamps are unix milliseconds, UTC.
var migrations = map[int][]string{
	1: {
		`CREATE TABLE visitors (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			hashed_ip  TEXT NOT NULL,
			user_agent TEXT NOT NULL DEFAULT '',
			path       TEXT NOT NULL DEFAULT '',
			ts         INTEGER NOT NULL
		)`,
		`CREATE INDEX idx_visitors_ts ON visitors(ts)`,
		`CREATE TABLE work_views (
			work_id   TEXT PRIMARY KEY,
			views     INTEGER NOT NULL DEFAULT 0,
			last_seen INTEGER NOT NULL
		)`,
	},
	2: {
		`CREATE TABLE messages (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			name      TEXT NOT NULL,
			email     TEXT NOT NULL,
			subject   TEXT NOT NULL,
			body      TEXT NOT NULL,
			outcome   TEXT NOT NULL,
			transport TEXT NOT NULL,
			ts        INTEGER NOT NULL
		)`,
		`CREATE INDEX idx_messages_ts ON messages(ts)`,
	},
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
