package audithook

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/marwan116/supreme-task/result"
	"github.com/marwan116/supreme-task/serializer"
	"github.com/marwan116/supreme-task/storage"
)

// StorageRecorder writes audit events to result storage as JSON blobs.
type StorageRecorder struct {
	factory *result.Factory
	seq     atomic.Uint64
}

var _ Recorder = (*StorageRecorder)(nil)

// NewStorageRecorder creates a recorder writing to st.
func NewStorageRecorder(st storage.Storage) *StorageRecorder {
	return &StorageRecorder{factory: &result.Factory{
		PersistResult: true,
		Serializer:    serializer.JSON{},
		Storage:       st,
	}}
}

// Key returns the storage key of the n-th recorded event.
func Key(evt *AuditEvent, n uint64) string {
	return fmt.Sprintf("audit/%s/%s-%d", evt.ResourceID, evt.Action, n)
}

// Record implements Recorder.
func (r *StorageRecorder) Record(ctx context.Context, evt *AuditEvent) error {
	key := Key(evt, r.seq.Add(1))
	_, err := r.factory.WithStorageKeyFn(func() string { return key }).Write(ctx, evt)
	return err
}
