package inputs

import (
	"context"
	"fmt"
	"path"
	"slices"
	"time"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/result"
	"github.com/marwan116/supreme-task/storage"
)

// Load reads the parameter mapping persisted at key.
func Load(ctx context.Context, st storage.Storage, key string) (map[string]any, error) {
	var params map[string]any
	if err := result.Load(ctx, st, key, &params); err != nil {
		return nil, err
	}
	return params, nil
}

// Entry is one persisted input record.
type Entry struct {
	Key       string
	Task      string
	StartTime time.Time
}

// List returns the persisted input records of task, oldest first. The
// storage must implement storage.Lister.
func List(ctx context.Context, st storage.Storage, task string) ([]Entry, error) {
	lister, ok := st.(storage.Lister)
	if !ok {
		return nil, fmt.Errorf("%w: %s", supremetask.ErrListUnsupported, st.Name())
	}
	keys, err := lister.List(ctx, KeyPrefix+"/"+task)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		if path.Dir(k) != KeyPrefix+"/"+task {
			continue
		}
		start, err := ParseStartTime(path.Base(k))
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Key: k, Task: task, StartTime: start})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return entries, nil
}
