package probecache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"shotlist/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Entry is a cached dimension probe.
type Entry struct {
	Path      string
	SizeBytes int64
	ModTime   time.Time
	Width     int
	Height    int
	Source    string // "decoder" or "ffprobe"
	CachedAt  time.Time
}

// Cache stores dimension probes in a SQLite database.
type Cache struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the probe cache database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Cache, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("probe cache: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dataSourceName(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite db: %w", err)
	}

	cache := &Cache{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "probecache"),
	}
	if err := cache.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// dataSourceName attaches the pragmas to the DSN so every pooled connection
// runs them, not only the first one.
func dataSourceName(path string) string {
	query := url.Values{}
	query.Add("_pragma", "busy_timeout(5000)")
	query.Add("_pragma", "journal_mode(WAL)")
	return path + "?" + query.Encode()
}

// Path returns the database file location.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Cache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return c.createSchema(ctx)
	}

	var version int
	if err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild it)",
			ErrSchemaMismatch, version, schemaVersion, c.path)
	}
	return nil
}

func (c *Cache) createSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Lookup returns the cached probe for path when size and modTime still match.
func (c *Cache) Lookup(ctx context.Context, path string, size int64, modTime time.Time) (Entry, bool, error) {
	if c == nil || c.db == nil {
		return Entry{}, false, nil
	}
	var (
		entry    Entry
		modNanos int64
		cachedAt string
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT path, size_bytes, mod_time_ns, width, height, source, cached_at
		 FROM probes WHERE path = ?`, path,
	).Scan(&entry.Path, &entry.SizeBytes, &modNanos, &entry.Width, &entry.Height, &entry.Source, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup probe %q: %w", path, err)
	}
	if entry.SizeBytes != size || modNanos != modTime.UnixNano() {
		c.logger.Debug("probe cache stale", logging.String(logging.FieldPath, path))
		return Entry{}, false, nil
	}
	entry.ModTime = time.Unix(0, modNanos)
	if parsed, parseErr := time.Parse(time.RFC3339Nano, cachedAt); parseErr == nil {
		entry.CachedAt = parsed
	}
	return entry, true, nil
}

// Store inserts or replaces the probe for entry.Path.
func (c *Cache) Store(ctx context.Context, entry Entry) error {
	if c == nil || c.db == nil {
		return nil
	}
	entry.Path = strings.TrimSpace(entry.Path)
	if entry.Path == "" {
		return errors.New("probe path cannot be empty")
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO probes (path, size_bytes, mod_time_ns, width, height, source, cached_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   size_bytes = excluded.size_bytes,
		   mod_time_ns = excluded.mod_time_ns,
		   width = excluded.width,
		   height = excluded.height,
		   source = excluded.source,
		   cached_at = excluded.cached_at`,
		entry.Path, entry.SizeBytes, entry.ModTime.UnixNano(), entry.Width, entry.Height,
		entry.Source, entry.CachedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store probe %q: %w", entry.Path, err)
	}
	return nil
}

// Count returns the number of cached probes.
func (c *Cache) Count(ctx context.Context) (int, error) {
	if c == nil || c.db == nil {
		return 0, nil
	}
	var count int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM probes").Scan(&count); err != nil {
		return 0, fmt.Errorf("count probes: %w", err)
	}
	return count, nil
}

// Prune removes entries whose files no longer exist and returns how many were dropped.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	if c == nil || c.db == nil {
		return 0, nil
	}
	rows, err := c.db.QueryContext(ctx, "SELECT path FROM probes")
	if err != nil {
		return 0, fmt.Errorf("list probes: %w", err)
	}
	var missing []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan probe path: %w", err)
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			missing = append(missing, path)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, path := range missing {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM probes WHERE path = ?", path); err != nil {
			return 0, fmt.Errorf("delete probe %q: %w", path, err)
		}
	}
	if len(missing) > 0 {
		c.logger.Debug("pruned probe cache", logging.Int("removed", len(missing)))
	}
	return len(missing), nil
}

// Clear removes every cached probe.
func (c *Cache) Clear(ctx context.Context) error {
	if c == nil || c.db == nil {
		return nil
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM probes"); err != nil {
		return fmt.Errorf("clear probes: %w", err)
	}
	return nil
}
