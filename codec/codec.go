// Package codec serializes memoized payloads to []byte for storage.
//
// Because values flowing through a tag tree are heterogeneous, codecs work
// on `any`. A codec is only required to compose Decode(Encode(v)) to a value
// equal to v for the shapes it documents. Msgpack round-trips primitives,
// strings, []byte, slices and string-keyed maps, with integers widening to
// int64. CBOR decodes maps as map[any]any and non-negative integers as
// uint64; JSON decodes numbers as float64 and []byte as base64 strings.
package codec

// Codec encodes/decodes payload values to []byte for storage.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(b []byte) (any, error)
}
