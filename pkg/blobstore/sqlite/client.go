// Package sqlite provides a SQLite implementation of the blob store.
//
// SQLite is a lightweight, file-based database suitable for local development
// and small-scale deployments. Blobs are stored as rows in a single table
// keyed by path.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/evermem/evermem-go/pkg/blobstore"
)

// Client implements blobstore.Store using SQLite as the backend.
type Client struct {
	// db is the SQLite database connection.
	db *sql.DB

	// tableName is the name of the table storing blobs.
	tableName string
}

// Config contains configuration for creating a SQLite blob store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TableName is the name of the table to use. Defaults to "blobs".
	TableName string
}

// NewClient creates a new SQLite blob store client.
//
// Parameters:
//   - cfg: Configuration containing database path and table name
//
// Returns:
//   - *Client: The SQLite client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	// Create parent directory if it doesn't exist
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	table := cfg.TableName
	if table == "" {
		table = "blobs"
	}

	client := &Client{
		db:        db,
		tableName: table,
	}

	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table structure.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			path TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("sqlite store: init tables: %w", err)
	}
	return nil
}

// Get returns the blob stored at path, or blobstore.ErrNotFound if absent.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	query := fmt.Sprintf("SELECT data FROM %s WHERE path = ?", c.tableName)
	var data []byte
	err := c.db.QueryRowContext(ctx, query, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite store: get %s: %w", path, err)
	}
	return data, nil
}

// Put stores data at path, overwriting any existing blob.
func (c *Client) Put(ctx context.Context, path string, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (path, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		c.tableName)
	if _, err := c.db.ExecContext(ctx, query, path, data); err != nil {
		return fmt.Errorf("sqlite store: put %s: %w", path, err)
	}
	return nil
}

// List returns the paths of all blobs under prefix in lexicographic order.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf("SELECT path FROM %s WHERE path LIKE ? ESCAPE '\\' ORDER BY path", c.tableName)
	rows, err := c.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list %s: %w", prefix, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("sqlite store: list %s: %w", prefix, err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Exists reports whether a blob exists at path.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE path = ?", c.tableName)
	var one int
	err := c.db.QueryRowContext(ctx, query, path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite store: exists %s: %w", path, err)
	}
	return true, nil
}

// Delete removes the blob at path. Absent paths are ignored.
func (c *Client) Delete(ctx context.Context, path string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE path = ?", c.tableName)
	if _, err := c.db.ExecContext(ctx, query, path); err != nil {
		return fmt.Errorf("sqlite store: delete %s: %w", path, err)
	}
	return nil
}

// DeleteAll removes every blob under prefix.
func (c *Client) DeleteAll(ctx context.Context, prefix string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE path LIKE ? ESCAPE '\\'", c.tableName)
	if _, err := c.db.ExecContext(ctx, query, escapeLike(prefix)+"%"); err != nil {
		return fmt.Errorf("sqlite store: delete all %s: %w", prefix, err)
	}
	return nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
