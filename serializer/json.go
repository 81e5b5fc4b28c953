package serializer

import "encoding/json"

// JSON encodes values as JSON.
type JSON struct{}

func (JSON) Dumps(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Loads(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSON) Name() string { return NameJSON }
