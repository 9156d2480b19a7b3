package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// MessagePackSerialization honours json struct tags so one value type can
// travel over either codec.
type MessagePackSerialization struct{}

func (p *MessagePackSerialization) Unmarshal(in []byte, body interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(in))
	dec.SetCustomStructTag("json")
	return dec.Decode(body)
}

func (p *MessagePackSerialization) Marshal(body interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
