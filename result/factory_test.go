package result_test

import (
	"context"
	"errors"
	"testing"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/result"
	"github.com/marwan116/supreme-task/serializer"
	"github.com/marwan116/supreme-task/storage/memory"
)

func newFactory(st *memory.Storage) *result.Factory {
	return &result.Factory{
		PersistResult:       true,
		CacheResultInMemory: true,
		Serializer:          serializer.Msgpack{},
		Storage:             st,
		StorageKeyFn:        func() string { return "results/fixed" },
	}
}

func TestWithStorageKeyFn_ReplacesOnlyKeyFn(t *testing.T) {
	st := memory.New()
	f := newFactory(st)

	c := f.WithStorageKeyFn(func() string { return "inputs/add/ts" })

	if c == f {
		t.Fatal("WithStorageKeyFn returned the receiver, want a copy")
	}
	if c.StorageKeyFn() != "inputs/add/ts" {
		t.Errorf("clone key = %q, want inputs/add/ts", c.StorageKeyFn())
	}
	if f.StorageKeyFn() != "results/fixed" {
		t.Errorf("original key changed to %q", f.StorageKeyFn())
	}
	if c.Storage != f.Storage {
		t.Error("clone storage differs from original")
	}
	if c.Serializer != f.Serializer {
		t.Error("clone serializer differs from original")
	}
	if c.PersistResult != f.PersistResult || c.CacheResultInMemory != f.CacheResultInMemory {
		t.Error("clone flags differ from original")
	}
}

func TestCreateResult_NotPersisted(t *testing.T) {
	st := memory.New()
	f := newFactory(st)
	f.PersistResult = false

	r, err := f.CreateResult(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if r.Persisted() {
		t.Error("Persisted() = true, want false")
	}
	if st.Len() != 0 {
		t.Errorf("storage has %d blobs, want 0", st.Len())
	}
	var got int
	if err := r.Get(context.Background(), &got); err != nil || got != 42 {
		t.Errorf("Get = %d, %v; want 42, nil", got, err)
	}
}

func TestCreateResult_PersistsAndLoads(t *testing.T) {
	st := memory.New()
	f := newFactory(st)
	f.CacheResultInMemory = false
	ctx := context.Background()

	r, err := f.CreateResult(ctx, map[string]int{"x": 1})
	if err != nil {
		t.Fatal(err)
	}
	if r.Key != "results/fixed" || r.Serializer != serializer.NameMsgpack {
		t.Errorf("Result = {%q, %q}, want {results/fixed, msgpack}", r.Key, r.Serializer)
	}

	var got map[string]int
	if err := r.Get(ctx, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["x"] != 1 {
		t.Errorf("Get = %v, want map[x:1]", got)
	}

	var direct map[string]int
	if err := result.Load(ctx, st, "results/fixed", &direct); err != nil || direct["x"] != 1 {
		t.Errorf("Load = %v, %v", direct, err)
	}
}

func TestWrite_IgnoresPersistFlag(t *testing.T) {
	st := memory.New()
	f := newFactory(st)
	f.PersistResult = false

	if _, err := f.Write(context.Background(), "v"); err != nil {
		t.Fatal(err)
	}
	if st.Len() != 1 {
		t.Errorf("storage has %d blobs, want 1", st.Len())
	}
}

func TestWrite_NoStorage(t *testing.T) {
	f := &result.Factory{}
	if _, err := f.Write(context.Background(), 1); !errors.Is(err, supremetask.ErrNoStorage) {
		t.Errorf("Write = %v, want ErrNoStorage", err)
	}
}

func TestWrite_DefaultKeyFunc(t *testing.T) {
	st := memory.New()
	f := &result.Factory{Storage: st}
	r, err := f.Write(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Key) != 32 {
		t.Errorf("default key %q has length %d, want 32", r.Key, len(r.Key))
	}
	if r.Serializer != serializer.NameJSON {
		t.Errorf("default serializer = %q, want json", r.Serializer)
	}
}

func TestLoad_Missing(t *testing.T) {
	var v int
	err := result.Load(context.Background(), memory.New(), "nope", &v)
	if !errors.Is(err, supremetask.ErrKeyNotFound) {
		t.Errorf("Load(missing) = %v, want ErrKeyNotFound", err)
	}
}

func TestGet_NotPersistedNoValue(t *testing.T) {
	r := &result.Result{}
	var v int
	if err := r.Get(context.Background(), &v); !errors.Is(err, supremetask.ErrResultNotPersisted) {
		t.Errorf("Get = %v, want ErrResultNotPersisted", err)
	}
}
