package codec

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var j = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONSerialization uses json-iterator, API compatible with encoding/json
type JSONSerialization struct{}

func (s *JSONSerialization) Unmarshal(in []byte, body interface{}) error {
	if err := j.Unmarshal(in, body); err != nil {
		return fmt.Errorf("codec %s: unmarshal into %T: %w", JSON, body, err)
	}
	return nil
}

func (s *JSONSerialization) Marshal(body interface{}) ([]byte, error) {
	out, err := j.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("codec %s: marshal %T: %w", JSON, body, err)
	}
	return out, nil
}
