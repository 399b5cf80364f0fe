// Package redis provides a Redis implementation of the blob store.
//
// Each blob is a Redis string value under "<keyPrefix><path>". List and
// DeleteAll use SCAN rather than KEYS so large namespaces do not block the
// server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	goredis "github.com/go-redis/redis/v8"

	"github.com/evermem/evermem-go/pkg/blobstore"
)

// Client implements blobstore.Store using Redis as the backend.
type Client struct {
	rdb       *goredis.Client
	keyPrefix string
}

// Config contains configuration for creating a Redis blob store.
type Config struct {
	// Addr is the Redis address. Defaults to "127.0.0.1:6379".
	Addr string

	// Password is the Redis password (empty for no auth).
	Password string

	// DB is the Redis database number.
	DB int

	// KeyPrefix namespaces all blob keys. Defaults to "evermem:".
	KeyPrefix string
}

// NewClient creates a new Redis blob store client.
//
// Parameters:
//   - cfg: Configuration containing address, credentials and key prefix
//
// Returns:
//   - *Client: The Redis client instance
//   - error: Error if the connection cannot be established
func NewClient(cfg *Config) (*Client, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "evermem:"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("NewRedisClient: %w", err)
	}

	return &Client{
		rdb:       rdb,
		keyPrefix: keyPrefix,
	}, nil
}

func (c *Client) key(path string) string {
	return c.keyPrefix + path
}

// Get returns the blob stored at path, or blobstore.ErrNotFound if absent.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, c.key(path)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: get %s: %w", path, err)
	}
	return data, nil
}

// Put stores data at path, overwriting any existing blob.
func (c *Client) Put(ctx context.Context, path string, data []byte) error {
	if err := c.rdb.Set(ctx, c.key(path), data, 0).Err(); err != nil {
		return fmt.Errorf("redis store: put %s: %w", path, err)
	}
	return nil
}

// List returns the paths of all blobs under prefix in lexicographic order.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	match := escapeGlob(c.key(prefix)) + "*"
	var paths []string
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, match, 256).Result()
		if err != nil {
			return nil, fmt.Errorf("redis store: list %s: %w", prefix, err)
		}
		for _, k := range keys {
			paths = append(paths, strings.TrimPrefix(k, c.keyPrefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether a blob exists at path.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.key(path)).Result()
	if err != nil {
		return false, fmt.Errorf("redis store: exists %s: %w", path, err)
	}
	return n > 0, nil
}

// Delete removes the blob at path. Absent paths are ignored.
func (c *Client) Delete(ctx context.Context, path string) error {
	if err := c.rdb.Del(ctx, c.key(path)).Err(); err != nil {
		return fmt.Errorf("redis store: delete %s: %w", path, err)
	}
	return nil
}

// DeleteAll removes every blob under prefix.
func (c *Client) DeleteAll(ctx context.Context, prefix string) error {
	paths, err := c.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := c.Delete(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// escapeGlob escapes SCAN MATCH metacharacters in a key prefix.
func escapeGlob(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
