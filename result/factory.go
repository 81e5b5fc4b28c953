// Package result persists values returned by task runs.
//
// A Factory carries the storage, serializer and key function of one run.
// Every write produces a JSON envelope (Blob) naming the serializer used,
// so Load can decode a key without knowing how it was written.
package result

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/serializer"
	"github.com/marwan116/supreme-task/storage"
)

// KeyFunc derives the storage key for the next write.
type KeyFunc func() string

// DefaultKeyFunc returns a random 32 character hex key.
func DefaultKeyFunc() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Factory writes results for a run.
type Factory struct {
	// PersistResult controls whether CreateResult writes to storage.
	PersistResult bool

	// CacheResultInMemory keeps the value on the returned Result.
	CacheResultInMemory bool

	Serializer   serializer.Serializer
	Storage      storage.Storage
	StorageKeyFn KeyFunc
}

// Clone returns a shallow copy. Storage and serializer are shared.
func (f *Factory) Clone() *Factory {
	c := *f
	return &c
}

// WithStorageKeyFn returns a copy of f that derives keys with fn. Every
// other field is inherited unchanged.
func (f *Factory) WithStorageKeyFn(fn KeyFunc) *Factory {
	c := f.Clone()
	c.StorageKeyFn = fn
	return c
}

// CreateResult wraps v in a Result, writing it to storage only when
// PersistResult is set.
func (f *Factory) CreateResult(ctx context.Context, v any) (*Result, error) {
	if !f.PersistResult {
		return &Result{value: v, hasValue: true}, nil
	}
	return f.Write(ctx, v)
}

// Write serializes v and stores it under the next key, regardless of
// PersistResult.
func (f *Factory) Write(ctx context.Context, v any) (*Result, error) {
	if f.Storage == nil {
		return nil, supremetask.ErrNoStorage
	}
	ser := f.Serializer
	if ser == nil {
		ser = serializer.Default()
	}
	keyFn := f.StorageKeyFn
	if keyFn == nil {
		keyFn = DefaultKeyFunc
	}

	data, err := ser.Dumps(v)
	if err != nil {
		return nil, fmt.Errorf("result: serialize with %s: %w", ser.Name(), err)
	}
	blob, err := json.Marshal(Blob{Serializer: ser.Name(), Data: data, Version: BlobVersion})
	if err != nil {
		return nil, fmt.Errorf("result: encode blob: %w", err)
	}

	key := keyFn()
	if err := f.Storage.WritePath(ctx, key, blob); err != nil {
		return nil, err
	}

	r := &Result{Key: key, Serializer: ser.Name(), storage: f.Storage}
	if f.CacheResultInMemory {
		r.value, r.hasValue = v, true
	}
	return r, nil
}

// Result references a value produced by a run. The value is held in memory,
// in storage, or both.
type Result struct {
	// Key is the storage key; empty when the value was not persisted.
	Key        string
	Serializer string

	storage  storage.Storage
	value    any
	hasValue bool
}

// Persisted reports whether the value was written to storage.
func (r *Result) Persisted() bool { return r.Key != "" }

// Get stores the result value into dst, which must be a non-nil pointer.
// The in-memory value is used when present and assignable; otherwise the
// value is loaded from storage.
func (r *Result) Get(ctx context.Context, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("result: Get requires a non-nil pointer, got %T", dst)
	}
	if r.hasValue {
		if r.value == nil {
			rv.Elem().SetZero()
			return nil
		}
		vv := reflect.ValueOf(r.value)
		if vv.Type().AssignableTo(rv.Elem().Type()) {
			rv.Elem().Set(vv)
			return nil
		}
	}
	if !r.Persisted() || r.storage == nil {
		return supremetask.ErrResultNotPersisted
	}
	return Load(ctx, r.storage, r.Key, dst)
}
