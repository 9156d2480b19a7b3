// Package codec
package codec

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

const (
	JSON        = "json"
	Protobuf    = "protobuf"
	MessagePack = "msgpack"
)

var ErrNotRegistered = errors.New("codec: serializer not registered")

type Serializer interface {
	Unmarshal(in []byte, body interface{}) error
	Marshal(body interface{}) (out []byte, err error)
}

var (
	lock        sync.RWMutex
	serializers = map[string]Serializer{
		JSON:        &JSONSerialization{},
		Protobuf:    &ProtobufSerialization{},
		MessagePack: &MessagePackSerialization{},
	}
)

func RegisterSerializer(serializationType string, s Serializer) {
	lock.Lock()
	defer lock.Unlock()
	serializers[serializationType] = s
}

func GetSerializer(serializationType string) Serializer {
	lock.RLock()
	defer lock.RUnlock()
	return serializers[serializationType]
}

// Names lists registered serialization types, sorted.
func Names() []string {
	lock.RLock()
	defer lock.RUnlock()
	names := make([]string, 0, len(serializers))
	for name := range serializers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Unmarshal(serializationType string, in []byte, body interface{}) error {
	if body == nil {
		return nil
	}
	if len(in) == 0 {
		return nil
	}

	s := GetSerializer(serializationType)
	if s == nil {
		return fmt.Errorf("%w: %s", ErrNotRegistered, serializationType)
	}

	return s.Unmarshal(in, body)
}

func Marshal(serializationType string, body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	s := GetSerializer(serializationType)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, serializationType)
	}
	return s.Marshal(body)
}
