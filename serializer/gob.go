package serializer

import (
	"bytes"
	"encoding/gob"
)

// Gob encodes values with encoding/gob. Concrete types stored behind
// interfaces (for example inside map[string]any) must be registered with
// gob.Register.
type Gob struct{}

func (Gob) Dumps(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Gob) Loads(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (Gob) Name() string { return NameGob }
