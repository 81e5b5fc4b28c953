package serializer

import "github.com/vmihailenco/msgpack/v5"

// Msgpack encodes values as MessagePack.
type Msgpack struct{}

func (Msgpack) Dumps(v any) ([]byte, error) { return msgpack.Marshal(v) }

func (Msgpack) Loads(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

func (Msgpack) Name() string { return NameMsgpack }
