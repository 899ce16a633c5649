package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/model"
)

// EntryDB provides SQLite-based storage for finished crawls and their
// extracted entries.
//
// Design decision: We use a single database file for all sources rather
// than one file per source. Entries carry their crawl id, which makes
// cross-source queries and history listing simple, and backup is one
// file copy.
type EntryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures EntryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an EntryDB under dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned instead of creating an empty file.
func Open(dbDir string, opts Options) (*EntryDB, error) {
	dbPath := filepath.Join(dbDir, "docscrape.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY during entry batch inserts.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	edb := &EntryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := edb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return edb, nil
}

// Close closes the database connection.
func (edb *EntryDB) Close() error {
	return edb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (edb *EntryDB) createTables() error {
	schema := `
	-- Crawl records store one row per finished (or interrupted) crawl
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_name TEXT NOT NULL,
		base_url TEXT NOT NULL,
		index_url TEXT NOT NULL,
		version TEXT,
		pages_visited INTEGER DEFAULT 0,
		entry_count INTEGER DEFAULT 0,
		interrupted INTEGER DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_source ON crawls(source_name);
	CREATE INDEX IF NOT EXISTS idx_crawls_timestamp ON crawls(timestamp);

	-- Entries store the extracted records as JSON plus queryable columns
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id INTEGER NOT NULL REFERENCES crawls(id),
		entry_id TEXT NOT NULL,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		parent TEXT,
		url TEXT,
		entry_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_crawl ON entries(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_entries_entry_id ON entries(entry_id);
	CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(type);
	`

	_, err := edb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawl persists a finished crawl and its entries in one
// transaction. It returns the crawl id.
func (edb *EntryDB) SaveCrawl(ctx context.Context, src *config.Source, entries []model.Entry, pagesVisited int, interrupted bool) (int64, error) {
	tx, err := edb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO crawls (source_name, base_url, index_url, version, pages_visited, entry_count, interrupted)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`, src.Name, src.BaseURL, src.IndexURL, src.Version, pagesVisited, len(entries), boolToInt(interrupted))
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl: %w", err)
	}

	crawlID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read crawl id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO entries (crawl_id, entry_id, type, name, parent, url, entry_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for i := range entries {
		entryJSON, err := json.Marshal(&entries[i])
		if err != nil {
			return 0, fmt.Errorf("failed to serialize entry %s: %w", entries[i].ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			crawlID,
			entries[i].ID,
			string(entries[i].Type),
			entries[i].Name,
			entries[i].Parent,
			entries[i].Source.NormalizedURL,
			string(entryJSON),
		); err != nil {
			return 0, fmt.Errorf("failed to insert entry %s: %w", entries[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl: %w", err)
	}
	return crawlID, nil
}

// GetEntry retrieves one entry of a crawl by its dot-delimited id.
// Returns nil without error when no such entry exists. When the id is
// duplicated within the crawl, the first stored occurrence wins.
func (edb *EntryDB) GetEntry(ctx context.Context, crawlID int64, entryID string) (*model.Entry, error) {
	var entryJSON string
	err := edb.db.QueryRowContext(ctx, `
	SELECT entry_json FROM entries
	WHERE crawl_id = ? AND entry_id = ?
	ORDER BY id
	LIMIT 1
	`, crawlID, entryID).Scan(&entryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	var entry model.Entry
	if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
		return nil, fmt.Errorf("failed to parse entry: %w", err)
	}
	return &entry, nil
}

// EntriesByType retrieves all entries of one type within a crawl, in
// stored order.
func (edb *EntryDB) EntriesByType(ctx context.Context, crawlID int64, typ model.EntryType) ([]model.Entry, error) {
	rows, err := edb.db.QueryContext(ctx, `
	SELECT entry_json FROM entries
	WHERE crawl_id = ? AND type = ?
	ORDER BY id
	`, crawlID, string(typ))
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var entryJSON string
		if err := rows.Scan(&entryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		var entry model.Entry
		if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
			continue // Skip malformed rows
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CrawlMetadata summarizes one stored crawl without its entries.
type CrawlMetadata struct {
	// ID is the crawl's database identifier.
	ID int64

	// SourceName is the name of the source configuration.
	SourceName string

	// Timestamp is when the crawl was saved.
	Timestamp time.Time

	// PagesVisited is the number of pages fetched.
	PagesVisited int

	// EntryCount is the number of entries stored.
	EntryCount int

	// Interrupted reports whether the crawl was cancelled before the
	// queue drained.
	Interrupted bool
}

// ListCrawls retrieves crawl metadata for a source, newest first.
// An empty sourceName lists crawls across all sources.
func (edb *EntryDB) ListCrawls(ctx context.Context, sourceName string) ([]CrawlMetadata, error) {
	query := `
	SELECT id, source_name, timestamp, pages_visited, entry_count, interrupted
	FROM crawls
	`
	args := make([]interface{}, 0, 1)
	if sourceName != "" {
		query += " WHERE source_name = ?"
		args = append(args, sourceName)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := edb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawls: %w", err)
	}
	defer rows.Close()

	var results []CrawlMetadata
	for rows.Next() {
		var meta CrawlMetadata
		var timestamp string
		var interrupted int
		if err := rows.Scan(&meta.ID, &meta.SourceName, &timestamp, &meta.PagesVisited, &meta.EntryCount, &interrupted); err != nil {
			return nil, fmt.Errorf("failed to scan crawl metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		meta.Interrupted = interrupted != 0
		results = append(results, meta)
	}
	return results, rows.Err()
}

// ListSources returns the distinct source names with stored crawls.
func (edb *EntryDB) ListSources(ctx context.Context) ([]string, error) {
	rows, err := edb.db.QueryContext(ctx, `
	SELECT DISTINCT source_name FROM crawls
	ORDER BY source_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan source name: %w", err)
		}
		sources = append(sources, name)
	}
	return sources, rows.Err()
}

// LatestEntries retrieves the full entry set of the most recent crawl
// for a source. Returns nil without error when the source has no stored
// crawls.
func (edb *EntryDB) LatestEntries(ctx context.Context, sourceName string) ([]model.Entry, error) {
	var crawlID int64
	err := edb.db.QueryRowContext(ctx, `
	SELECT id FROM crawls
	WHERE source_name = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`, sourceName).Scan(&crawlID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest crawl: %w", err)
	}

	rows, err := edb.db.QueryContext(ctx, `
	SELECT entry_json FROM entries
	WHERE crawl_id = ?
	ORDER BY id
	`, crawlID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var entryJSON string
		if err := rows.Scan(&entryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		var entry model.Entry
		if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
			continue // Skip malformed rows
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
