package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

type ProtobufSerialization struct{}

func (p *ProtobufSerialization) Unmarshal(in []byte, body interface{}) error {
	if v, ok := body.(proto.Message); ok {
		return proto.Unmarshal(in, v)
	}
	return fmt.Errorf("proto unmarshal error, %T is not proto.Message", body)
}

func (p *ProtobufSerialization) Marshal(body interface{}) (out []byte, err error) {
	if v, ok := body.(proto.Message); ok {
		return proto.Marshal(v)
	}
	return nil, fmt.Errorf("proto marshal error, %T is not proto.Message", body)
}
