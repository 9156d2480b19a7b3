package codec

import (
	"errors"
	"strings"
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

type greeting struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONAndMessagePackRoundTrip(t *testing.T) {
	for _, name := range []string{JSON, MessagePack} {
		t.Run(name, func(t *testing.T) {
			in := &greeting{Name: "ping", Count: 3}
			data, err := Marshal(name, in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			out := &greeting{}
			if err := Unmarshal(name, data, out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if *out != *in {
				t.Fatalf("got %+v, want %+v", out, in)
			}
		})
	}
}

func TestProtobufRoundTrip(t *testing.T) {
	data, err := Marshal(Protobuf, wrapperspb.String("pong"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := &wrapperspb.StringValue{}
	if err := Unmarshal(Protobuf, data, out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.GetValue() != "pong" {
		t.Fatalf("value = %q, want pong", out.GetValue())
	}
}

func TestProtobufRejectsPlainStruct(t *testing.T) {
	if _, err := Marshal(Protobuf, &greeting{}); err == nil {
		t.Fatal("expected error for non proto.Message")
	}
}

func TestUnknownSerializer(t *testing.T) {
	_, err := Marshal("xml", &greeting{})
	if !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	want := []string{JSON, MessagePack, Protobuf}
	if len(names) < len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

func TestJSONErrorsNameCodec(t *testing.T) {
	err := Unmarshal(JSON, []byte("{broken"), &greeting{})
	if err == nil || !strings.Contains(err.Error(), "codec json: unmarshal into *codec.greeting") {
		t.Fatalf("unmarshal error = %v", err)
	}
	_, err = Marshal(JSON, make(chan int))
	if err == nil || !strings.Contains(err.Error(), "codec json: marshal chan int") {
		t.Fatalf("marshal error = %v", err)
	}
}
