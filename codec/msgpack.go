package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack serializes values using vmihailenco/msgpack/v5. The zero value is
// ready to use and is the facade's default codec.
//
// Round-trip shapes: nil, bool, strings, []byte, integers (as int64 on the
// way out), floats, time.Time, slices and map[string]any of the same.
// Structs decode as maps; use a dedicated codec when struct identity
// matters.
type Msgpack struct{}

func (Msgpack) Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (Msgpack) Decode(b []byte) (any, error) {
	var v any
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
