// Package storage defines the key/blob contract used to persist task
// results and task inputs.
//
// Keys are slash-separated logical paths such as
// "inputs/faulty_add/2024-01-02T03-04-05+0000". Each backend maps them onto
// its own namespace: files under a base directory, Redis keys under a
// prefix, or rows in a Postgres table.
package storage

import "context"

// Storage writes and reads opaque blobs by key.
type Storage interface {
	// WritePath stores data at key, replacing any previous value.
	WritePath(ctx context.Context, key string, data []byte) error

	// ReadPath returns the data stored at key. It returns an error wrapping
	// supremetask.ErrKeyNotFound when nothing is stored there.
	ReadPath(ctx context.Context, key string) ([]byte, error)

	// Name identifies the backend in logs.
	Name() string
}

// Lister is implemented by backends that can enumerate keys.
type Lister interface {
	// List returns every key stored under dir, sorted.
	List(ctx context.Context, dir string) ([]string, error)
}
