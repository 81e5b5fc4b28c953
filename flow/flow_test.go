package flow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/flow"
	"github.com/marwan116/supreme-task/serializer"
	"github.com/marwan116/supreme-task/storage/memory"
)

func double(_ context.Context, n int) (int, error) { return n * 2, nil }

func TestNew_AppliesOptions(t *testing.T) {
	st := memory.New()
	f, err := flow.New("pipeline", double,
		flow.WithDescription("doubles"),
		flow.WithVersion("v2"),
		flow.WithFlowRunName("pipeline-{input}"),
		flow.WithTimeout(time.Minute),
		flow.WithPersistResult(true),
		flow.WithResultStorage(st),
		flow.WithResultSerializer(serializer.Msgpack{}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	o := f.Options()
	if f.Name() != "pipeline" {
		t.Errorf("Name = %q, want pipeline", f.Name())
	}
	if o.Description != "doubles" || o.Version != "v2" {
		t.Errorf("Description, Version = %q, %q", o.Description, o.Version)
	}
	if o.Timeout != time.Minute {
		t.Errorf("Timeout = %v, want 1m", o.Timeout)
	}
	if o.PersistResult == nil || !*o.PersistResult {
		t.Error("PersistResult not set to true")
	}
	if o.ResultStorage != st {
		t.Error("ResultStorage not applied")
	}
	if o.ResultSerializer.Name() != serializer.NameMsgpack {
		t.Errorf("ResultSerializer = %s, want msgpack", o.ResultSerializer.Name())
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := flow.New("", double); !errors.Is(err, supremetask.ErrInvalidConfig) {
		t.Errorf("New(empty name) = %v, want ErrInvalidConfig", err)
	}
	if _, err := flow.New("f", double, flow.WithTimeout(-time.Second)); !errors.Is(err, supremetask.ErrInvalidConfig) {
		t.Errorf("New(negative timeout) = %v, want ErrInvalidConfig", err)
	}
	if _, err := flow.New[int, int]("f", nil); !errors.Is(err, supremetask.ErrInvalidConfig) {
		t.Errorf("New(nil fn) = %v, want ErrInvalidConfig", err)
	}
}

func TestFn_RunsDirectly(t *testing.T) {
	f := flow.Must(flow.New("pipeline", double))
	got, err := f.Fn(context.Background(), 21)
	if err != nil {
		t.Fatalf("Fn: %v", err)
	}
	if got != 42 {
		t.Errorf("Fn = %d, want 42", got)
	}
}
