package task

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/marwan116/supreme-task/run"
)

// InputsHash is a CacheKeyFunc that hashes the task name together with the
// JSON encoding of the run parameters. Parameters that cannot be encoded
// disable caching for the run.
func InputsHash(ctx context.Context, params map[string]any) string {
	var name string
	if trc, ok := run.TaskRunContextFrom(ctx); ok {
		name = trc.Task
	}
	data, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

var _ CacheKeyFunc = InputsHash
