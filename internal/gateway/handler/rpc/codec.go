package rpc

import (
	"encoding/json"

	"launchpad/internal/util/jsonutil"
)

// jsonCodec lets connect carry plain Go structs as JSON. It replaces the
// default protobuf-JSON codec under the same name.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return jsonutil.MarshalNoEscape(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
