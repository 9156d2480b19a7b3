package protocol

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jwerle/cgi-arbiter/amp"
)

// EncodingError reports a payload that could not be turned into bytes.
type EncodingError struct {
	Type string
	Err  error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol: encode %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("protocol: cannot encode payload of type %s", e.Type)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// DecodingError reports bytes that do not form a well-formed frame.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("protocol: decode: %v", e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// Encode wrap payload into a single element frame.
func Encode(payload interface{}) ([]byte, error) {
	data, err := payloadBytes(payload)
	if err != nil {
		return nil, err
	}
	buf, err := amp.Encode([][]byte{data})
	if err != nil {
		return nil, &EncodingError{Type: fmt.Sprintf("%T", payload), Err: err}
	}
	return buf, nil
}

// Decode parse one complete frame into its elements.
func Decode(buf []byte) ([][]byte, error) {
	args, err := amp.Decode(buf)
	if err != nil {
		return nil, &DecodingError{Err: err}
	}
	return args, nil
}

// ReadFrame read exactly one frame from r and return its wire bytes.
func ReadFrame(r io.Reader) ([]byte, error) {
	var meta [amp.MetaLen]byte
	if _, err := io.ReadFull(r, meta[:]); err != nil {
		return nil, err
	}
	if meta[0]>>4 != amp.Version {
		return nil, &DecodingError{Err: amp.ErrVersion}
	}

	buf := append([]byte{}, meta[:]...)
	var length [amp.LengthLen]byte
	for argc := int(meta[0] & 0x0f); argc > 0; argc-- {
		if _, err := io.ReadFull(r, length[:]); err != nil {
			return nil, err
		}
		l := binary.BigEndian.Uint32(length[:])
		if l > amp.DefaultMaxArgSize {
			return nil, &DecodingError{Err: amp.ErrArgTooLarge}
		}
		buf = append(buf, length[:]...)
		start := len(buf)
		buf = append(buf, make([]byte, l)...)
		if _, err := io.ReadFull(r, buf[start:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func payloadBytes(payload interface{}) ([]byte, error) {
	typ := fmt.Sprintf("%T", payload)
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case byte:
		return []byte{v}, nil
	case []rune:
		return []byte(string(v)), nil
	case encoding.BinaryMarshaler:
		b, err := v.MarshalBinary()
		if err != nil {
			return nil, &EncodingError{Type: typ, Err: err}
		}
		return b, nil
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			return nil, &EncodingError{Type: typ, Err: err}
		}
		return b, nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	}
	return nil, &EncodingError{Type: typ}
}
