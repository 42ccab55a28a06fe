package connect

import (
	"encoding/json"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const (
	codecNameJSON            = "json"
	codecNameJSONCharsetUTF8 = codecNameJSON + "; charset=utf-8"
)

// jsonCodec serializes plain Go message structs with encoding/json and
// protobuf messages (e.g. emptypb.Empty) with protojson.
type jsonCodec struct {
	name string
}

var _ connect.Codec = (*jsonCodec)(nil)

func (c *jsonCodec) Name() string { return c.name }

func (c *jsonCodec) Marshal(message any) ([]byte, error) {
	if pm, ok := message.(proto.Message); ok {
		return protojson.MarshalOptions{}.Marshal(pm)
	}
	return json.Marshal(message)
}

func (c *jsonCodec) Unmarshal(data []byte, message any) error {
	if pm, ok := message.(proto.Message); ok {
		if len(data) == 0 {
			proto.Reset(pm)
			return nil
		}
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, pm)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, message)
}

// handlerCodecOptions replaces the default protojson codecs on handlers.
func handlerCodecOptions() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(&jsonCodec{name: codecNameJSON}),
		connect.WithCodec(&jsonCodec{name: codecNameJSONCharsetUTF8}),
	}
}

// clientCodecOption makes clients speak JSON with the plain-struct codec.
func clientCodecOption() connect.ClientOption {
	return connect.WithCodec(&jsonCodec{name: codecNameJSON})
}
