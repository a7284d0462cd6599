package tagtree

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Tag is a surrogate key declaring a dependency of a cached value. The three
// variants are Plain, Heritable and Shard; the set is closed.
type Tag interface {
	// tagName resolves the variant to its plain string form.
	tagName() string
}

// Plain is an ordinary string tag, e.g. "layout" or "user:42".
type Plain string

func (p Plain) tagName() string { return string(p) }

// Heritable resolves like a Plain tag but additionally applies itself to
// every frame nested under its declarer, so every value cached inside the
// declaring scope carries it in its snapshot.
type Heritable string

func (h Heritable) tagName() string { return string(h) }

// Shard is a tag whose name is derived from a routing value modulo a bucket
// count: "<Namespace>:<xxhash64(Value) mod Buckets>". The hash is stable
// across processes, so clearing e.g. "shard:0" invalidates exactly the
// partition whose routing values land in bucket 0.
type Shard struct {
	Namespace string
	Value     string
	Buckets   uint32
}

func (s Shard) tagName() string {
	n := uint64(s.Buckets)
	if n == 0 {
		n = 1
	}
	return s.Namespace + ":" + strconv.FormatUint(xxhash.Sum64String(s.Value)%n, 10)
}

// resolveTags maps declared tags to hashed tag keys, preserving order and
// dropping duplicates. The second result holds the hashed keys that were
// declared heritable.
func (c *Cache) resolveTags(tags []Tag) (hashed []string, heritable []string) {
	if len(tags) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(tags))
	hashed = make([]string, 0, len(tags))
	for _, t := range tags {
		hk := c.hashedTag(t.tagName())
		if _, dup := seen[hk]; dup {
			continue
		}
		seen[hk] = struct{}{}
		hashed = append(hashed, hk)
		if _, ok := t.(Heritable); ok {
			heritable = append(heritable, hk)
		}
	}
	return hashed, heritable
}

func (c *Cache) hashedKey(k string) string { return "k:" + c.hasher(k) }

func (c *Cache) hashedTag(t string) string { return "t:" + c.hasher(t) }
