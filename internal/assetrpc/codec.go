package assetrpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is sent as the content subtype: application/grpc+json.
const codecName = "json"

// jsonCodec carries the plain Go message structs of this package, so the
// service needs no generated protobuf code.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
