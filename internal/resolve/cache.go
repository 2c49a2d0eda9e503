package resolve

import (
	"database/sql"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Cache stores resolved provider categories per domain. Entries are
// written at most once per key; later writes for the same domain are
// ignored (idempotent races from concurrent lookups are harmless).
//
// The in-memory map is the source of truth for one run. An optional
// SQLite file makes the cache survive across runs as a pure performance
// layer — correctness never depends on it.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Provider
	db      *sql.DB
}

// NewCache returns a memory-only cache scoped to one run.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Provider)}
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS provider_cache (
	domain      TEXT PRIMARY KEY,
	provider    TEXT NOT NULL,
	resolved_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// NewPersistentCache opens (creating if needed) a SQLite-backed cache at
// the given path, configured for WAL mode.
func NewPersistentCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: open cache db")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "resolve: exec %s", pragma)
		}
	}
	if _, err := db.Exec(cacheMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "resolve: migrate cache db")
	}
	return &Cache{entries: make(map[string]Provider), db: db}, nil
}

// Close releases the underlying database, if any.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached provider for a domain. A persistent cache is
// consulted read-through and hydrates the in-memory map on hit.
func (c *Cache) Get(domain string) (Provider, bool) {
	c.mu.Lock()
	if p, ok := c.entries[domain]; ok {
		c.mu.Unlock()
		return p, true
	}
	c.mu.Unlock()

	if c.db == nil {
		return "", false
	}

	var provider string
	err := c.db.QueryRow(`SELECT provider FROM provider_cache WHERE domain = ?`, domain).Scan(&provider)
	if err != nil {
		return "", false
	}

	p := Provider(provider)
	c.mu.Lock()
	c.entries[domain] = p
	c.mu.Unlock()
	return p, true
}

// Put records a resolution. The first write for a domain wins; a
// persistent cache mirrors the entry best-effort.
func (c *Cache) Put(domain string, p Provider) {
	c.mu.Lock()
	if _, ok := c.entries[domain]; ok {
		c.mu.Unlock()
		return
	}
	c.entries[domain] = p
	c.mu.Unlock()

	if c.db == nil {
		return
	}
	// Mirror failures are tolerable; the run works from memory.
	_, _ = c.db.Exec(
		`INSERT INTO provider_cache (domain, provider, resolved_at) VALUES (?, ?, ?)
		 ON CONFLICT (domain) DO NOTHING`,
		domain, string(p), time.Now().UTC(),
	)
}

// Len returns the number of in-memory entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// PersistedCount returns the number of rows in the persistent layer, or 0
// for a memory-only cache.
func (c *Cache) PersistedCount() (int, error) {
	if c.db == nil {
		return 0, nil
	}
	var n int
	if err := c.db.QueryRow(`SELECT count(*) FROM provider_cache`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "resolve: count cache rows")
	}
	return n, nil
}

// Clear drops all entries from both layers.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[string]Provider)
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	if _, err := c.db.Exec(`DELETE FROM provider_cache`); err != nil {
		return eris.Wrap(err, "resolve: clear cache")
	}
	return nil
}
