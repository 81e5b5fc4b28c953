package task_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/backoff"
	"github.com/marwan116/supreme-task/inputs"
	"github.com/marwan116/supreme-task/result"
	"github.com/marwan116/supreme-task/run"
	"github.com/marwan116/supreme-task/storage/memory"
	"github.com/marwan116/supreme-task/task"
	"github.com/marwan116/supreme-task/typecheck"
)

type addInput struct {
	X int `param:"x"`
	Y int `param:"y"`
}

func add(_ context.Context, in addInput) (int, error) {
	return in.X + in.Y, nil
}

// fakeRunner runs bodies inline and records the parameters of each run.
type fakeRunner struct {
	mu     sync.Mutex
	params []map[string]any
}

func (f *fakeRunner) RunTask(ctx context.Context, _ *task.Spec, params map[string]any, body task.Body) (any, error) {
	f.mu.Lock()
	f.params = append(f.params, params)
	f.mu.Unlock()
	return body(ctx)
}

func noopHook(context.Context, run.Task, *run.TaskRun, run.State) error { return nil }

func TestNew_AppendsPersistHookPerPolicy(t *testing.T) {
	tests := []struct {
		name           string
		opts           []task.Option
		wantFailure    int
		wantCompletion int
	}{
		{"default", nil, 1, 0},
		{"on_failure with user hook", []task.Option{task.WithOnFailure(noopHook)}, 2, 0},
		{"on_completion", []task.Option{task.WithStoreInputs(inputs.OnCompletion)}, 0, 1},
		{"on_completion with user hooks", []task.Option{
			task.WithStoreInputs(inputs.OnCompletion),
			task.WithOnCompletion(noopHook, noopHook),
			task.WithOnFailure(noopHook),
		}, 1, 3},
		{"never", []task.Option{task.WithStoreInputs(inputs.Never), task.WithOnFailure(noopHook)}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk, err := task.New("add", add, tt.opts...)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			spec := tk.Spec()
			if got := len(spec.OnFailure()); got != tt.wantFailure {
				t.Errorf("len(OnFailure) = %d, want %d", got, tt.wantFailure)
			}
			if got := len(spec.OnCompletion()); got != tt.wantCompletion {
				t.Errorf("len(OnCompletion) = %d, want %d", got, tt.wantCompletion)
			}
		})
	}
}

func TestNew_DefaultPolicyIsOnFailure(t *testing.T) {
	tk := task.Must(task.New("add", add))
	if got := tk.Options().StoreInputs; got != inputs.OnFailure {
		t.Errorf("StoreInputs = %q, want %q", got, inputs.OnFailure)
	}
}

func TestNew_DoesNotAliasUserHooks(t *testing.T) {
	hooks := make([]run.Hook, 1, 8)
	hooks[0] = noopHook

	tk := task.Must(task.New("add", add, task.WithOnFailure(hooks...)))
	_ = append(hooks[:1], noopHook)

	if got := len(tk.Spec().OnFailure()); got != 2 {
		t.Fatalf("len(OnFailure) = %d, want 2", got)
	}
	if got := len(tk.Options().OnFailure); got != 1 {
		t.Errorf("len(Options().OnFailure) = %d, want 1 (user hooks only)", got)
	}

	// Mutating the returned slice must not affect the task.
	got := tk.Spec().OnFailure()
	got[0] = nil
	if tk.Spec().OnFailure()[0] == nil {
		t.Error("OnFailure() returned an aliased slice")
	}
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	many := make([]time.Duration, task.MaxRetryDelays+1)
	tests := []struct {
		name string
		opts []task.Option
		want error
	}{
		{"negative retries", []task.Option{task.WithRetries(-1)}, supremetask.ErrInvalidConfig},
		{"too many delays", []task.Option{task.WithRetryDelays(many...)}, supremetask.ErrInvalidConfig},
		{"negative delay", []task.Option{task.WithRetryDelay(-time.Second)}, supremetask.ErrInvalidConfig},
		{"negative jitter", []task.Option{task.WithRetryJitterFactor(-0.5)}, supremetask.ErrInvalidConfig},
		{"delays and backoff", []task.Option{
			task.WithRetryDelay(time.Second),
			task.WithBackoff(backoff.NewConstant(time.Second)),
		}, supremetask.ErrInvalidConfig},
		{"negative timeout", []task.Option{task.WithTimeout(-time.Second)}, supremetask.ErrInvalidConfig},
		{"bad policy", []task.Option{task.WithStoreInputs("always")}, supremetask.ErrInvalidPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := task.New("add", add, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("New = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNew_RejectsEmptyNameAndNilFunc(t *testing.T) {
	if _, err := task.New("", add); !errors.Is(err, supremetask.ErrInvalidConfig) {
		t.Errorf("New(empty name) = %v, want ErrInvalidConfig", err)
	}
	if _, err := task.New[addInput, int]("add", nil); !errors.Is(err, supremetask.ErrInvalidConfig) {
		t.Errorf("New(nil fn) = %v, want ErrInvalidConfig", err)
	}
}

func TestMust_PanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must did not panic")
		}
	}()
	task.Must(task.New("add", add, task.WithRetries(-1)))
}

func TestFn_MatchesRawFunction(t *testing.T) {
	tk := task.Must(task.New("add", add))
	ctx := context.Background()

	got, err := tk.Fn(ctx, addInput{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("Fn: %v", err)
	}
	want, _ := add(ctx, addInput{X: 1, Y: 2})
	if got != want {
		t.Errorf("Fn = %d, want %d", got, want)
	}

	got, err = tk.FnMap(ctx, map[string]any{"x": 1, "y": 2})
	if err != nil {
		t.Fatalf("FnMap: %v", err)
	}
	if got != 3 {
		t.Errorf("FnMap = %d, want 3", got)
	}
}

func TestFnMap_TypeMismatchSkipsBody(t *testing.T) {
	called := false
	tk := task.Must(task.New("add", func(_ context.Context, in addInput) (int, error) {
		called = true
		return in.X + in.Y, nil
	}))

	_, err := tk.FnMap(context.Background(), map[string]any{"x": 1, "y": "2"})
	if !errors.Is(err, supremetask.ErrTypeMismatch) {
		t.Fatalf("FnMap = %v, want ErrTypeMismatch", err)
	}
	if called {
		t.Error("body ran despite a type mismatch")
	}

	var te *typecheck.Error
	if !errors.As(err, &te) {
		t.Fatalf("error type = %T, want *typecheck.Error", err)
	}
	m, ok := te.Param("y")
	if !ok {
		t.Fatalf("mismatches = %+v, want one for y", te.Mismatches)
	}
	if m.Expected != "int" || m.Actual != "string" {
		t.Errorf("mismatch = %+v, want expected int, actual string", m)
	}
	if _, ok := te.Param("x"); ok {
		t.Error("x reported as mismatched")
	}
}

func TestCall_OutsideFlowRun(t *testing.T) {
	tk := task.Must(task.New("add", add))

	if _, err := tk.Call(context.Background(), addInput{X: 1, Y: 2}); !errors.Is(err, supremetask.ErrNoFlowRun) {
		t.Errorf("Call = %v, want ErrNoFlowRun", err)
	}
	if _, err := tk.CallMap(context.Background(), map[string]any{"x": 1}); !errors.Is(err, supremetask.ErrNoFlowRun) {
		t.Errorf("CallMap = %v, want ErrNoFlowRun", err)
	}
}

func TestCall_RecordsParameters(t *testing.T) {
	tk := task.Must(task.New("add", add))
	r := &fakeRunner{}
	ctx := task.WithRunner(context.Background(), r)

	got, err := tk.Call(ctx, addInput{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != 3 {
		t.Errorf("Call = %d, want 3", got)
	}
	if len(r.params) != 1 {
		t.Fatalf("runs = %d, want 1", len(r.params))
	}
	if r.params[0]["x"] != 1 || r.params[0]["y"] != 2 {
		t.Errorf("params = %v, want map[x:1 y:2]", r.params[0])
	}
}

func TestCallMap_MismatchFailsInsideRun(t *testing.T) {
	called := false
	tk := task.Must(task.New("add", func(_ context.Context, in addInput) (int, error) {
		called = true
		return in.X + in.Y, nil
	}))
	r := &fakeRunner{}
	ctx := task.WithRunner(context.Background(), r)

	_, err := tk.CallMap(ctx, map[string]any{"x": 1, "y": "2"})
	if !errors.Is(err, supremetask.ErrTypeMismatch) {
		t.Fatalf("CallMap = %v, want ErrTypeMismatch", err)
	}
	if called {
		t.Error("body ran despite a type mismatch")
	}
	if len(r.params) != 1 {
		t.Fatalf("runs = %d, want 1", len(r.params))
	}
	if r.params[0]["y"] != "2" {
		t.Errorf("recorded y = %v, want the raw argument %q", r.params[0]["y"], "2")
	}
}

func TestMap_PreservesOrder(t *testing.T) {
	tk := task.Must(task.New("add", add))
	ctx := task.WithRunner(context.Background(), &fakeRunner{})

	outs, err := tk.Map(ctx, []addInput{{1, 1}, {2, 2}, {3, 3}, {4, 4}})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	want := []int{2, 4, 6, 8}
	for i := range want {
		if outs[i] != want[i] {
			t.Errorf("outs[%d] = %d, want %d", i, outs[i], want[i])
		}
	}
}

func TestMap_ReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	tk := task.Must(task.New("maybe", func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	}))
	r := &fakeRunner{}
	ctx := task.WithRunner(context.Background(), r)

	_, err := tk.Map(ctx, []int{1, 2, 3})
	if !errors.Is(err, boom) {
		t.Fatalf("Map = %v, want boom", err)
	}
	if len(r.params) != 3 {
		t.Errorf("runs = %d, want 3 (failures do not cancel siblings)", len(r.params))
	}
}

func TestSpec_RetryDelay(t *testing.T) {
	tk := task.Must(task.New("add", add,
		task.WithRetries(3),
		task.WithRetryDelays(time.Second, 2*time.Second),
	))
	spec := tk.Spec()

	if got := spec.RetryDelay(1); got != time.Second {
		t.Errorf("RetryDelay(1) = %v, want 1s", got)
	}
	if got := spec.RetryDelay(3); got != 2*time.Second {
		t.Errorf("RetryDelay(3) = %v, want 2s (last delay reused)", got)
	}
}

func TestSpec_RetryDelayJitterBounds(t *testing.T) {
	tk := task.Must(task.New("add", add,
		task.WithRetryDelay(time.Second),
		task.WithRetryJitterFactor(0.5),
	))
	for range 100 {
		d := tk.Spec().RetryDelay(1)
		if d < 500*time.Millisecond || d > 1500*time.Millisecond {
			t.Fatalf("RetryDelay = %v, want within [500ms, 1.5s]", d)
		}
	}
}

func TestSpec_LoadResult(t *testing.T) {
	tk := task.Must(task.New("add", add))
	st := memory.New()
	f := &result.Factory{PersistResult: true, Storage: st}

	r, err := f.CreateResult(context.Background(), 3)
	if err != nil {
		t.Fatalf("CreateResult: %v", err)
	}
	v, err := tk.Spec().LoadResult(context.Background(), r)
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if v != 3 {
		t.Errorf("LoadResult = %v (%T), want int 3", v, v)
	}
}

func TestInputsHash(t *testing.T) {
	params := map[string]any{"x": 1, "y": 2}
	ctxFor := func(name string) context.Context {
		return run.WithTaskRunContext(context.Background(), &run.TaskRunContext{Task: name})
	}

	a := task.InputsHash(ctxFor("add"), params)
	if a == "" {
		t.Fatal("InputsHash returned an empty key")
	}
	if b := task.InputsHash(ctxFor("add"), map[string]any{"y": 2, "x": 1}); b != a {
		t.Errorf("hash depends on map order: %s != %s", b, a)
	}
	if c := task.InputsHash(ctxFor("sub"), params); c == a {
		t.Error("different tasks share a cache key")
	}
	if d := task.InputsHash(ctxFor("add"), map[string]any{"x": 1, "y": 3}); d == a {
		t.Error("different parameters share a cache key")
	}
	if e := task.InputsHash(ctxFor("add"), map[string]any{"fn": func() {}}); e != "" {
		t.Errorf("unencodable params = %q, want empty key", e)
	}
}
