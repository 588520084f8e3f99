// Package prefs persists viewer preferences in SQLite: theme, last camera
// orbit and the cached capability descriptor, under versioned keys.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/gogpu/modelo/capability"
)

// ErrNotFound is returned by Get for keys with no value.
var ErrNotFound = errors.New("prefs: key not found")

// Theme values.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store is a key-value preference store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the store at path. ":memory:" gives a private
// in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("prefs: open: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("prefs: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prefs: schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("prefs: get %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("prefs: set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM prefs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("prefs: delete %s: %w", key, err)
	}
	return nil
}

// Theme returns the stored theme, ThemeDark when unset or unrecognized.
func (s *Store) Theme(ctx context.Context, key string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return ThemeDark, nil
	}
	if err != nil {
		return "", err
	}
	if v != ThemeLight {
		return ThemeDark, nil
	}
	return v, nil
}

// ToggleTheme switches between dark and light and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context, key string) (string, error) {
	cur, err := s.Theme(ctx, key)
	if err != nil {
		return "", err
	}
	next := ThemeLight
	if cur == ThemeLight {
		next = ThemeDark
	}
	if err := s.Set(ctx, key, next); err != nil {
		return "", err
	}
	return next, nil
}

// SaveDescriptor caches a capability descriptor under key.
func (s *Store) SaveDescriptor(ctx context.Context, key string, d capability.Descriptor) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("prefs: encode descriptor: %w", err)
	}
	return s.Set(ctx, key, string(b))
}

// LoadDescriptor returns the descriptor cached under key.
func (s *Store) LoadDescriptor(ctx context.Context, key string) (capability.Descriptor, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return capability.Descriptor{}, err
	}
	var d capability.Descriptor
	if err := json.Unmarshal([]byte(v), &d); err != nil {
		return capability.Descriptor{}, fmt.Errorf("prefs: decode descriptor: %w", err)
	}
	return d, nil
}

// CachedDescriptor returns the descriptor cached under key, or runs detect
// and caches its result when nothing usable is cached or refresh is set. A
// cached value that no longer decodes is replaced. cached reports whether the
// returned descriptor came from the store. A failure to write the cache is
// returned along with the fresh descriptor.
func (s *Store) CachedDescriptor(ctx context.Context, key string, refresh bool,
	detect func(context.Context) capability.Descriptor) (d capability.Descriptor, cached bool, err error) {
	if !refresh {
		if d, err = s.LoadDescriptor(ctx, key); err == nil {
			return d, true, nil
		}
	}
	d = detect(ctx)
	return d, false, s.SaveDescriptor(ctx, key, d)
}
