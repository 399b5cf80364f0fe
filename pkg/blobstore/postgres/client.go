// Package postgres provides a PostgreSQL implementation of the blob store.
//
// Blobs are stored as rows in a single BYTEA table keyed by path, suitable
// for deployments that already run PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/evermem/evermem-go/pkg/blobstore"
)

// Client implements blobstore.Store using PostgreSQL as the backend.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains configuration for creating a PostgreSQL blob store.
type Config struct {
	// Host is the database host. Defaults to "localhost".
	Host string

	// Port is the database port. Defaults to 5432.
	Port int

	// User is the database user.
	User string

	// Password is the database password.
	Password string

	// DBName is the database name.
	DBName string

	// TableName is the name of the table to use. Defaults to "blobs".
	TableName string

	// SSLMode is the libpq sslmode setting. Defaults to "disable".
	SSLMode string
}

// NewClient creates a new PostgreSQL blob store client.
//
// Parameters:
//   - cfg: Configuration containing connection settings and table name
//
// Returns:
//   - *Client: The PostgreSQL client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
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
			data BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("postgres store: init tables: %w", err)
	}
	return nil
}

// Get returns the blob stored at path, or blobstore.ErrNotFound if absent.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	query := fmt.Sprintf("SELECT data FROM %s WHERE path = $1", c.tableName)
	var data []byte
	err := c.db.QueryRowContext(ctx, query, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store: get %s: %w", path, err)
	}
	return data, nil
}

// Put stores data at path, overwriting any existing blob.
func (c *Client) Put(ctx context.Context, path string, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (path, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		c.tableName)
	if _, err := c.db.ExecContext(ctx, query, path, data); err != nil {
		return fmt.Errorf("postgres store: put %s: %w", path, err)
	}
	return nil
}

// List returns the paths of all blobs under prefix in lexicographic order.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf(`SELECT path FROM %s WHERE path LIKE $1 ESCAPE '\' ORDER BY path`, c.tableName)
	rows, err := c.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("postgres store: list %s: %w", prefix, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("postgres store: list %s: %w", prefix, err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Exists reports whether a blob exists at path.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE path = $1", c.tableName)
	var one int
	err := c.db.QueryRowContext(ctx, query, path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres store: exists %s: %w", path, err)
	}
	return true, nil
}

// Delete removes the blob at path. Absent paths are ignored.
func (c *Client) Delete(ctx context.Context, path string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE path = $1", c.tableName)
	if _, err := c.db.ExecContext(ctx, query, path); err != nil {
		return fmt.Errorf("postgres store: delete %s: %w", path, err)
	}
	return nil
}

// DeleteAll removes every blob under prefix.
func (c *Client) DeleteAll(ctx context.Context, prefix string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE path LIKE $1 ESCAPE '\'`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query, escapeLike(prefix)+"%"); err != nil {
		return fmt.Errorf("postgres store: delete all %s: %w", prefix, err)
	}
	return nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
