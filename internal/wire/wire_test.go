package wire

import (
	"bytes"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	in := TaggedValue{
		Tags: map[string]string{
			"t:a":            "00112233445566778899aabbccddeeff",
			"tagtree:ttl:5:x": "ffeeddccbbaa99887766554433221100",
		},
		Payload:  []byte("payload bytes"),
		Revealed: false,
	}
	b, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Revealed {
		t.Fatalf("kind flipped to revealed")
	}
	if !bytes.Equal(out.Payload, in.Payload) {
		t.Fatalf("payload mismatch")
	}
	if len(out.Tags) != len(in.Tags) {
		t.Fatalf("tag count mismatch: %v", out.Tags)
	}
	for k, v := range in.Tags {
		if out.Tags[k] != v {
			t.Fatalf("tag %q: %q != %q", k, out.Tags[k], v)
		}
	}
}

func TestRoundTripRevealed(t *testing.T) {
	b, err := Encode(TaggedValue{Payload: []byte("p"), Revealed: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !out.Revealed {
		t.Fatalf("revealed flag lost")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	tv := TaggedValue{
		Tags:    map[string]string{"b": "22", "a": "11", "c": "33"},
		Payload: []byte("x"),
	}
	b1, err := Encode(tv)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < 8; i++ {
		b2, err := Encode(tv)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if !bytes.Equal(b1, b2) {
			t.Fatalf("encoding not deterministic")
		}
	}
}

// Decode must reject trailing bytes (strict framing).
func TestDecodeRejectsTrailing(t *testing.T) {
	b, err := Encode(TaggedValue{Tags: map[string]string{"t": "aa"}, Payload: []byte("x")})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b = append(b, 0xDE, 0xAD)
	if _, err := Decode(b); err == nil {
		t.Fatalf("Decode should reject trailing bytes")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("x"),
		[]byte("not-wire-format-at-all"),
		{'T', 'G', 'T', 'V'},             // magic only
		{'T', 'G', 'T', 'V', 9, 1, 0, 0}, // unknown version
		{'T', 'G', 'T', 'V', 1, 7, 0, 0}, // unknown kind
	}
	for i, b := range cases {
		if _, err := Decode(b); err == nil {
			t.Fatalf("case %d: Decode accepted garbage", i)
		}
	}
}

// A bogus tag count with insufficient bytes must error cleanly, not panic or
// preallocate.
func TestDecodeBogusTagCount(t *testing.T) {
	b, err := Encode(TaggedValue{Payload: []byte("x")})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// ntags lives at offset 6; claim 0xFFFF entries.
	b[6], b[7] = 0xFF, 0xFF
	if _, err := Decode(b); err == nil {
		t.Fatalf("Decode should fail on fake tag count")
	}
}

func TestEncodeRejectsBadTagKeys(t *testing.T) {
	if _, err := Encode(TaggedValue{Tags: map[string]string{"": "aa"}}); err == nil {
		t.Fatalf("empty tag key should error")
	}
	long := strings.Repeat("k", 0x10000)
	if _, err := Encode(TaggedValue{Tags: map[string]string{long: "aa"}}); err == nil {
		t.Fatalf("oversized tag key should error")
	}
	if _, err := Encode(TaggedValue{Tags: map[string]string{"k": ""}}); err == nil {
		t.Fatalf("empty fingerprint should error")
	}
	if _, err := Encode(TaggedValue{Tags: map[string]string{"k": strings.Repeat("f", 0x100)}}); err == nil {
		t.Fatalf("oversized fingerprint should error")
	}
}
