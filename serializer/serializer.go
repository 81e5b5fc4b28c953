// Package serializer converts task parameters and results to bytes for
// result storage.
package serializer

import (
	"fmt"

	supremetask "github.com/marwan116/supreme-task"
)

// Serializer defines the encoding contract for persisted values.
type Serializer interface {
	// Dumps encodes v to bytes.
	Dumps(v any) ([]byte, error)

	// Loads decodes data into the value pointed to by v.
	Loads(data []byte, v any) error

	// Name returns the serializer identifier stored alongside the data.
	Name() string
}

// Serializer name constants.
const (
	NameJSON    = "json"
	NameMsgpack = "msgpack"
	NameGob     = "gob"
)

// Get returns a serializer by name. An empty name selects JSON.
func Get(name string) (Serializer, error) {
	switch name {
	case NameJSON, "":
		return JSON{}, nil
	case NameMsgpack:
		return Msgpack{}, nil
	case NameGob:
		return Gob{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", supremetask.ErrUnknownSerializer, name)
	}
}

// Default returns the JSON serializer.
func Default() Serializer { return JSON{} }
