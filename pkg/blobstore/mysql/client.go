// Package mysql provides a MySQL implementation of the blob store.
//
// Blobs are stored as rows in a single LONGBLOB table keyed by path. The path
// column is capped at 512 characters, which is well beyond the deepest
// profiles/{id}/{category}/{item} path Evermem writes.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/evermem/evermem-go/pkg/blobstore"
)

// Client implements blobstore.Store using MySQL as the backend.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains configuration for creating a MySQL blob store.
type Config struct {
	// Host is the database host. Defaults to "127.0.0.1".
	Host string

	// Port is the database port. Defaults to 3306.
	Port int

	// User is the database user.
	User string

	// Password is the database password.
	Password string

	// DBName is the database name.
	DBName string

	// TableName is the name of the table to use. Defaults to "blobs".
	TableName string
}

// NewClient creates a new MySQL blob store client.
//
// Parameters:
//   - cfg: Configuration containing connection settings and table name
//
// Returns:
//   - *Client: The MySQL client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		cfg.User, cfg.Password, host, port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
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
			path VARCHAR(512) PRIMARY KEY,
			data LONGBLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("mysql store: init tables: %w", err)
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
		return nil, fmt.Errorf("mysql store: get %s: %w", path, err)
	}
	return data, nil
}

// Put stores data at path, overwriting any existing blob.
func (c *Client) Put(ctx context.Context, path string, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (path, data) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data)`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query, path, data); err != nil {
		return fmt.Errorf("mysql store: put %s: %w", path, err)
	}
	return nil
}

// List returns the paths of all blobs under prefix in lexicographic order.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf("SELECT path FROM %s WHERE path LIKE ? ORDER BY path", c.tableName)
	rows, err := c.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("mysql store: list %s: %w", prefix, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("mysql store: list %s: %w", prefix, err)
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
		return false, fmt.Errorf("mysql store: exists %s: %w", path, err)
	}
	return true, nil
}

// Delete removes the blob at path. Absent paths are ignored.
func (c *Client) Delete(ctx context.Context, path string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE path = ?", c.tableName)
	if _, err := c.db.ExecContext(ctx, query, path); err != nil {
		return fmt.Errorf("mysql store: delete %s: %w", path, err)
	}
	return nil
}

// DeleteAll removes every blob under prefix.
func (c *Client) DeleteAll(ctx context.Context, prefix string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE path LIKE ?", c.tableName)
	if _, err := c.db.ExecContext(ctx, query, escapeLike(prefix)+"%"); err != nil {
		return fmt.Errorf("mysql store: delete all %s: %w", prefix, err)
	}
	return nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
