package local_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/storage/local"
)

func TestWriteRead_MemFs(t *testing.T) {
	mem := afero.NewMemMapFs()
	s := local.New("/results", local.WithFs(mem))
	ctx := context.Background()

	if err := s.WritePath(ctx, "inputs/faulty_add/2024-01-02T03-04-05+0000", []byte(`{"x":1}`)); err != nil {
		t.Fatalf("WritePath: %v", err)
	}

	// The file lands below the base path on the source filesystem.
	ok, err := afero.Exists(mem, "/results/inputs/faulty_add/2024-01-02T03-04-05+0000")
	if err != nil || !ok {
		t.Fatalf("expected file under base path, exists=%v err=%v", ok, err)
	}

	got, err := s.ReadPath(ctx, "inputs/faulty_add/2024-01-02T03-04-05+0000")
	if err != nil {
		t.Fatalf("ReadPath: %v", err)
	}
	if string(got) != `{"x":1}` {
		t.Errorf("ReadPath = %s, want {\"x\":1}", got)
	}
}

func TestReadMissing(t *testing.T) {
	s := local.New("/results", local.WithFs(afero.NewMemMapFs()))
	_, err := s.ReadPath(context.Background(), "inputs/none")
	if !errors.Is(err, supremetask.ErrKeyNotFound) {
		t.Errorf("ReadPath(missing) = %v, want ErrKeyNotFound", err)
	}
}

func TestList(t *testing.T) {
	s := local.New("/results", local.WithFs(afero.NewMemMapFs()))
	ctx := context.Background()
	for _, k := range []string{"inputs/add/b", "inputs/add/a", "inputs/sub/c"} {
		if err := s.WritePath(ctx, k, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := s.List(ctx, "inputs/add")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"inputs/add/a", "inputs/add/b"}
	if len(keys) != len(want) {
		t.Fatalf("List = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	none, err := s.List(ctx, "inputs/missing")
	if err != nil || len(none) != 0 {
		t.Errorf("List(missing) = %v, %v; want empty, nil", none, err)
	}
}

func TestWrite_OsFs(t *testing.T) {
	dir := t.TempDir()
	s := local.New(dir)

	if err := s.WritePath(context.Background(), "inputs/add/k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "inputs", "add", "k"))
	if err != nil {
		t.Fatalf("file not written to disk: %v", err)
	}
	if string(data) != "v" {
		t.Errorf("file contents = %q, want v", data)
	}
}
