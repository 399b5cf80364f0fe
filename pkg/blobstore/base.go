// Package blobstore provides interfaces and types for object storage backends.
//
// It defines the Store interface that all storage implementations must satisfy.
// Evermem keeps every profile document, memory file and conversation log as a
// blob under a hierarchical path namespace:
//
//	profiles/{profile_id}/profile.json
//	profiles/{profile_id}/user_facts.json
//	profiles/{profile_id}/metadata/{memory_id}.json
//	profiles/{profile_id}/conversations/history.json
//	profiles/{profile_id}/{images|videos|audios|documents}/{file}
//
// The store is the sole source of truth; nothing is cached across requests.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound indicates that no blob exists at the requested path.
//
// This type is defined in the blobstore package so backends do not depend
// on the core package. Callers translate it into empty-state or an error
// according to their own policy.
var ErrNotFound = errors.New("blob not found")

// Store defines the interface for object storage backends.
//
// All storage implementations (fs, SQLite, PostgreSQL, MySQL, Redis) must
// implement this interface. Implementations must be safe for concurrent use;
// no guarantee is made about concurrent writers to the same path beyond
// last-writer-wins.
type Store interface {
	// Get returns the blob stored at path, or ErrNotFound if absent.
	Get(ctx context.Context, path string) ([]byte, error)

	// Put stores data at path, overwriting any existing blob.
	Put(ctx context.Context, path string, data []byte) error

	// List returns the paths of all blobs whose path starts with prefix,
	// in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether a blob exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the blob at path. Deleting an absent path is not an error.
	Delete(ctx context.Context, path string) error

	// DeleteAll removes every blob whose path starts with prefix.
	DeleteAll(ctx context.Context, prefix string) error

	// Close closes the store and releases resources.
	Close() error
}
