package protocol

import (
	"errors"
	"fmt"

	"github.com/jwerle/cgi-arbiter/codec"
)

var ErrNoPayload = errors.New("protocol: frame has no payload")

// WriteValue serialize v with the configured codec and write it as a frame.
func (p *Protocol) WriteValue(v interface{}) (bool, error) {
	data, err := codec.Marshal(p.options.SerializationType, v)
	if err != nil {
		return false, &EncodingError{Type: fmt.Sprintf("%T", v), Err: err}
	}
	return p.Write(data)
}

// DecodeValue decode frame and unmarshal its payload into v.
func (p *Protocol) DecodeValue(frame []byte, v interface{}) error {
	args, err := p.Decode(frame)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return &DecodingError{Err: ErrNoPayload}
	}
	return p.UnmarshalPayload(args[0], v)
}

// UnmarshalPayload unmarshal a decoded payload, as carried by Message
// events, into v.
func (p *Protocol) UnmarshalPayload(payload []byte, v interface{}) error {
	if err := codec.Unmarshal(p.options.SerializationType, payload, v); err != nil {
		return &DecodingError{Err: err}
	}
	return nil
}
