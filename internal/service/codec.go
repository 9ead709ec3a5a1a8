package service

import "encoding/json"

// jsonCodec marshals plain Go message structs. It replaces connect's
// protojson codec under the same "json" name so that any Connect JSON client
// can call the service.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
