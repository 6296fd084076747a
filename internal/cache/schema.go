package cache

// initSchema creates the snapshot table if it does not exist yet.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			instance   TEXT NOT NULL,
			request    TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			payload    BLOB NOT NULL,
			PRIMARY KEY (instance, request)
		)
	`)
	return err
}
