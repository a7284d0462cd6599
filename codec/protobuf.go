package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Protobuf serializes values that are proto.Message. Decode needs a concrete
// message to unmarshal into, so the codec is built around a constructor
// (e.g. func() proto.Message { return &mypb.User{} }). Every value flowing
// through a cache using this codec must be that message type.
type Protobuf struct {
	new func() proto.Message
}

func NewProtobuf(ctor func() proto.Message) Protobuf {
	return Protobuf{new: ctor}
}

func (c Protobuf) Encode(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("protobuf codec: %T is not a proto.Message", v)
	}
	return proto.Marshal(m)
}

func (c Protobuf) Decode(b []byte) (any, error) {
	m := c.new()
	if err := proto.Unmarshal(b, m); err != nil {
		return nil, err
	}
	return m, nil
}
