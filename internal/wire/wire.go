// Package wire frames tagged values for storage. The format is strict:
// decoders reject unknown versions, truncated sections and trailing bytes,
// so foreign or corrupt bytes under the cache's keyspace surface as
// ErrCorrupt and can be self-healed.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sort"
)

const (
	version      byte = 1
	kindPlain    byte = 1
	kindRevealed byte = 2

	maxTags = 0xFFFF
)

var (
	ErrCorrupt = errors.New("tagtree: corrupt entry")
	magic4     = [...]byte{'T', 'G', 'T', 'V'}
)

// TaggedValue is the unit written to the store under a cache key: the
// encoded payload plus the snapshot of tag fingerprints taken at write time.
// Revealed marks entries stored under the reveal directive so later hits
// reproduce the revealed shape.
type TaggedValue struct {
	Tags     map[string]string
	Payload  []byte
	Revealed bool
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames tv:
//
//	magic(4) | ver(1) | kind(1) | ntags(u16 be)
//	{ klen(u16 be) | key | flen(u8) | fingerprint } * ntags
//	plen(u32 be) | payload
//
// Tag keys are written in sorted order for deterministic output.
func Encode(tv TaggedValue) ([]byte, error) {
	if len(tv.Tags) > maxTags {
		return nil, errors.New("tagtree: too many tags in snapshot")
	}

	keys := make([]string, 0, len(tv.Tags))
	total := 4 + 1 + 1 + 2
	for k, fp := range tv.Tags {
		if l := len(k); l == 0 || l > 0xFFFF {
			return nil, errors.New("tagtree: invalid tag key length")
		}
		if l := len(fp); l == 0 || l > 0xFF {
			return nil, errors.New("tagtree: invalid fingerprint length")
		}
		keys = append(keys, k)
		total += 2 + len(k) + 1 + len(fp)
	}
	sort.Strings(keys)
	total += 4 + len(tv.Payload)

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	if tv.Revealed {
		buf.WriteByte(kindRevealed)
	} else {
		buf.WriteByte(kindPlain)
	}

	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint16(u2[:], uint16(len(keys)))
	buf.Write(u2[:])

	for _, k := range keys {
		fp := tv.Tags[k]
		binary.BigEndian.PutUint16(u2[:], uint16(len(k)))
		buf.Write(u2[:])
		buf.WriteString(k)
		buf.WriteByte(byte(len(fp)))
		buf.WriteString(fp)
	}

	binary.BigEndian.PutUint32(u4[:], uint32(len(tv.Payload)))
	buf.Write(u4[:])
	buf.Write(tv.Payload)

	return buf.Bytes(), nil
}

// Decode parses a framed TaggedValue. Trailing bytes are an error.
func Decode(b []byte) (TaggedValue, error) {
	const hdr = 4 + 1 + 1 + 2
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return TaggedValue{}, ErrCorrupt
	}
	kind := b[5]
	if kind != kindPlain && kind != kindRevealed {
		return TaggedValue{}, ErrCorrupt
	}

	off := 6
	n := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2

	// Every tag takes at least 5 bytes; never size the map from a count
	// the remaining bytes cannot hold.
	hint := n
	if maxN := (len(b) - off) / 5; hint > maxN {
		hint = maxN
	}
	tags := make(map[string]string, hint)
	for i := 0; i < n; i++ {
		if off+2 > len(b) {
			return TaggedValue{}, ErrCorrupt
		}
		klen := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if klen <= 0 || klen > len(b)-off {
			return TaggedValue{}, ErrCorrupt
		}
		key := string(b[off : off+klen])
		off += klen

		if off+1 > len(b) {
			return TaggedValue{}, ErrCorrupt
		}
		flen := int(b[off])
		off++
		if flen <= 0 || flen > len(b)-off {
			return TaggedValue{}, ErrCorrupt
		}
		tags[key] = string(b[off : off+flen])
		off += flen
	}

	if off+4 > len(b) {
		return TaggedValue{}, ErrCorrupt
	}
	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if plen < 0 || plen != len(b)-off {
		return TaggedValue{}, ErrCorrupt
	}

	return TaggedValue{
		Tags:     tags,
		Payload:  b[off : off+plen],
		Revealed: kind == kindRevealed,
	}, nil
}
