package codec

import "fmt"

// Bytes is an identity codec for []byte payloads. Useful when callbacks
// already produce raw bytes and you only need tagtree's framing and
// validation.
type Bytes struct{}

func (Bytes) Encode(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("bytes codec: %T is not []byte", v)
	}
	return b, nil
}

func (Bytes) Decode(b []byte) (any, error) { return b, nil }

// String is a trivial codec for string payloads. By convention this assumes
// UTF-8 and performs no validation.
type String struct{}

func (String) Encode(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("string codec: %T is not a string", v)
	}
	return []byte(s), nil
}

func (String) Decode(b []byte) (any, error) { return string(b), nil }
