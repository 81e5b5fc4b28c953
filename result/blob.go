package result

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marwan116/supreme-task/serializer"
	"github.com/marwan116/supreme-task/storage"
)

// BlobVersion is written into every Blob.
const BlobVersion = 1

// Blob is the envelope stored for every persisted value.
type Blob struct {
	Serializer string `json:"serializer"`
	Data       []byte `json:"data"`
	Version    int    `json:"version"`
}

// Load reads the blob at key and decodes its value into dst.
func Load(ctx context.Context, st storage.Storage, key string, dst any) error {
	raw, err := st.ReadPath(ctx, key)
	if err != nil {
		return err
	}
	var b Blob
	if err := json.Unmarshal(raw, &b); err != nil {
		return fmt.Errorf("result: decode blob %q: %w", key, err)
	}
	ser, err := serializer.Get(b.Serializer)
	if err != nil {
		return fmt.Errorf("result: blob %q: %w", key, err)
	}
	if err := ser.Loads(b.Data, dst); err != nil {
		return fmt.Errorf("result: deserialize %q with %s: %w", key, ser.Name(), err)
	}
	return nil
}
