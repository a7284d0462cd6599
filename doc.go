// Package tagtree implements a tag-tree memoization layer on top of a remote
// key-value store. It memoizes the result of arbitrary computations and
// supports coarse invalidation by surrogate keys called tags: when a memoized
// computation transitively calls other memoized computations, the outer
// cached result inherits the union of all tags used by the inner ones.
// Rotating any of those tags invalidates every enclosing cached result
// without the outer scope having to declare the dependency.
//
// Components:
//   - store.Store: byte store with TTL and multi-get (e.g. Redis, BigCache,
//     Ristretto).
//   - codec.Codec: (de)serializes payloads <-> []byte. Msgpack by default.
//   - Cache: the facade. Remember/Wrap/Load/ClearTags.
//
// Tag validity is encoded as random 128-bit fingerprints stored alongside
// cached values. A cached entry is valid iff every fingerprint in its
// snapshot still matches the store's current fingerprint for that tag.
// ClearTags mints fresh fingerprints, which lazily invalidates every entry
// that referenced the old ones - no scan, no enumeration.
//
// Keys:
//
//	k:<hash(cacheKey)>            - framed tagged values
//	t:<hash(tagName)>             - 32-hex-char tag fingerprints
//	tagtree:ttl:<secs>:<nonce>    - TTL pseudo-tags driving cascade expiry
//
// Nesting pattern:
//
//	v, err := cache.Remember(ctx, "page:1", 0, nil, func(ctx context.Context) (any, error) {
//		hdr, err := cache.Remember(ctx, "header", 0, []tagtree.Tag{tagtree.Plain("layout")}, renderHeader)
//		if err != nil {
//			return nil, err
//		}
//		return compose(hdr), nil
//	})
//	// "page:1" is now tagged with "layout" too; ClearTags(ctx, tagtree.Plain("layout"))
//	// invalidates both.
//
// The frame tree rides on the context. Always call nested operations with the
// context handed to the callback; a tree is owned by one goroutine from the
// outermost call to its return.
package tagtree
