package handler

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/encoding/proto"
)

// CodecName is the standard protobuf content-subtype. BookingService
// messages take over that name; anything else goes to grpc's own codec.
const CodecName = proto.Name

func init() {
	encoding.RegisterCodec(wireCodec{fallback: encoding.GetCodec(CodecName)})
}

type wireCodec struct {
	fallback encoding.Codec
}

func (c wireCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(Message); ok {
		return m.Marshal()
	}
	if c.fallback == nil {
		return nil, fmt.Errorf("marshal: unsupported type %T", v)
	}
	return c.fallback.Marshal(v)
}

func (c wireCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(Message); ok {
		return m.Unmarshal(data)
	}
	if c.fallback == nil {
		return fmt.Errorf("unmarshal: unsupported type %T", v)
	}
	return c.fallback.Unmarshal(data, v)
}

func (wireCodec) Name() string { return CodecName }
