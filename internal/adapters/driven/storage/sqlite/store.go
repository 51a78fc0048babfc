// Package sqlite provides a persistent implementation of the storage
// ports backed by a single SQLite database.
//
// Unlike the in-memory stores, the build flags here survive a process
// restart and are claimed with an atomic upsert, so the single-flight
// guarantee holds across multiple processes sharing the database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driven"
)

// Ensure Store implements both storage ports.
var (
	_ driven.RepoCache    = (*Store)(nil)
	_ driven.BuildTracker = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS repo_cache (
	key        TEXT PRIMARY KEY,
	repos      TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS build_flags (
	key      TEXT PRIMARY KEY,
	building INTEGER NOT NULL DEFAULT 0
);
`

// Store is a SQLite-backed repository cache and build tracker.
type Store struct {
	db    *sql.DB
	path  string
	clock driven.Clock
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.forgecache/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".forgecache", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// WAL mode keeps concurrent readers off the writers' backs.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{
		db:    db,
		path:  dbPath,
		clock: driven.SystemClock{},
	}, nil
}

// SetClock replaces the time source. Useful for testing expiry.
func (s *Store) SetClock(clock driven.Clock) {
	s.clock = clock
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// --- driven.RepoCache ---

// Get returns the cached list for key, dropping expired rows lazily.
func (s *Store) Get(ctx context.Context, key string) ([]domain.RepositorySummary, bool, error) {
	now := s.clock.Now().UnixNano()

	var payload string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT repos, expires_at FROM repo_cache WHERE key = ?`, key,
	).Scan(&payload, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	if expiresAt <= now {
		// Guard on expires_at so a concurrent refresh is not destroyed.
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM repo_cache WHERE key = ? AND expires_at <= ?`, key, now)
		if err != nil {
			return nil, false, fmt.Errorf("pruning expired entry: %w", err)
		}
		return nil, false, nil
	}

	var repos []domain.RepositorySummary
	if err := json.Unmarshal([]byte(payload), &repos); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry: %w", err)
	}
	return repos, true, nil
}

// Set overwrites the entry for key, fresh for ttl from now.
func (s *Store) Set(ctx context.Context, key string, repos []domain.RepositorySummary, ttl time.Duration) error {
	payload, err := json.Marshal(repos)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	expiresAt := s.clock.Now().Add(ttl).UnixNano()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO repo_cache (key, repos, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET repos = excluded.repos, expires_at = excluded.expires_at`,
		key, string(payload), expiresAt)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Invalidate removes the entry for key.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM repo_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("invalidating cache entry: %w", err)
	}
	return nil
}

// --- driven.BuildTracker ---

// IsBuilding reports whether a population job currently holds key.
func (s *Store) IsBuilding(ctx context.Context, key string) (bool, error) {
	var building int
	err := s.db.QueryRowContext(ctx,
		`SELECT building FROM build_flags WHERE key = ?`, key,
	).Scan(&building)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading build flag: %w", err)
	}
	return building != 0, nil
}

// TryAcquire atomically claims key. The upsert only flips rows whose
// flag is clear, so under parallel processes exactly one caller sees a
// row change and wins.
func (s *Store) TryAcquire(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO build_flags (key, building) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET building = 1 WHERE build_flags.building = 0`,
		key)
	if err != nil {
		return false, fmt.Errorf("acquiring build flag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquiring build flag: %w", err)
	}
	return affected > 0, nil
}

// Release clears the flag for key. Idempotent.
func (s *Store) Release(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM build_flags WHERE key = ?`, key); err != nil {
		return fmt.Errorf("releasing build flag: %w", err)
	}
	return nil
}
