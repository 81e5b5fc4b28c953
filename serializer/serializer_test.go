package serializer_test

import (
	"errors"
	"testing"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/serializer"
)

type point struct {
	X int    `json:"x" msgpack:"x"`
	Y int    `json:"y" msgpack:"y"`
	L string `json:"label" msgpack:"label"`
}

func TestGet_KnownNames(t *testing.T) {
	for _, name := range []string{"json", "msgpack", "gob"} {
		s, err := serializer.Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("Get(%q).Name() = %q", name, s.Name())
		}
	}
}

func TestGet_EmptyIsJSON(t *testing.T) {
	s, err := serializer.Get("")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != serializer.NameJSON {
		t.Errorf("Get(\"\").Name() = %q, want json", s.Name())
	}
}

func TestGet_Unknown(t *testing.T) {
	if _, err := serializer.Get("pickle"); !errors.Is(err, supremetask.ErrUnknownSerializer) {
		t.Errorf("Get(pickle) = %v, want ErrUnknownSerializer", err)
	}
}

func TestSerializers_Struct(t *testing.T) {
	in := point{X: 1, Y: 2, L: "a"}
	for _, s := range []serializer.Serializer{serializer.JSON{}, serializer.Msgpack{}, serializer.Gob{}} {
		data, err := s.Dumps(in)
		if err != nil {
			t.Fatalf("%s Dumps: %v", s.Name(), err)
		}
		var out point
		if err := s.Loads(data, &out); err != nil {
			t.Fatalf("%s Loads: %v", s.Name(), err)
		}
		if out != in {
			t.Errorf("%s: got %+v, want %+v", s.Name(), out, in)
		}
	}
}

func TestJSON_ParameterMapping(t *testing.T) {
	data, err := serializer.JSON{}.Dumps(map[string]any{"x": 1, "y": 2})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"x":1,"y":2}` {
		t.Errorf("Dumps = %s, want {\"x\":1,\"y\":2}", data)
	}
}
