package adapter

import "encoding/json"

// JSON encodes the protocol logs carried over NATS
type JSON interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type stdJSON struct{}

// NewJSON returns a JSON codec backed by encoding/json
func NewJSON() JSON {
	return stdJSON{}
}

func (stdJSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (stdJSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
