// Package cache provides SQLite-backed storage for raw API response
// snapshots. The cache is stored in ~/.mastostat/cache.db and lets reports
// re-render offline from the last fetched payloads. Only raw responses are
// stored, never rendered reports.
package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cache manages the cache.db SQLite database holding response snapshots.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in the given data directory.
// It initializes the schema if the database is new.
func Open(dataDir string) (*Cache, error) {
	dbPath := filepath.Join(dataDir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{db: db, dbPath: dbPath}

	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Put stores the payload for a request, replacing any previous snapshot
// of the same request against the same instance.
func (c *Cache) Put(instance, request string, payload []byte) error {
	_, err := c.db.Exec(`
		INSERT INTO snapshots (instance, request, fetched_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(instance, request) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload = excluded.payload
	`, instance, request, time.Now().UTC().Format(time.RFC3339), payload)
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Get returns the stored payload and fetch time for a request.
// A cache miss returns an error.
func (c *Cache) Get(instance, request string) ([]byte, time.Time, error) {
	var payload []byte
	var fetchedAtStr string

	err := c.db.QueryRow(`
		SELECT payload, fetched_at FROM snapshots
		WHERE instance = ? AND request = ?
	`, instance, request).Scan(&payload, &fetchedAtStr)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, fmt.Errorf("no snapshot for %s %s", instance, request)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load snapshot: %w", err)
	}

	fetchedAt, err := time.Parse(time.RFC3339, fetchedAtStr)
	if err != nil {
		fetchedAt = time.Time{}
	}

	return payload, fetchedAt, nil
}

// Clear removes all stored snapshots.
func (c *Cache) Clear() error {
	_, err := c.db.Exec("DELETE FROM snapshots")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Stats describes the cache contents.
type Stats struct {
	Snapshots int64
	Instances int64
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats

	err := c.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&stats.Snapshots)
	if err != nil {
		return nil, fmt.Errorf("count snapshots: %w", err)
	}

	err = c.db.QueryRow("SELECT COUNT(DISTINCT instance) FROM snapshots").Scan(&stats.Instances)
	if err != nil {
		return nil, fmt.Errorf("count instances: %w", err)
	}

	return &stats, nil
}
