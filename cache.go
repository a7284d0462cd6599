package tagtree

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/tagtree/codec"
	"github.com/unkn0wn-root/tagtree/internal/tagtree"
	"github.com/unkn0wn-root/tagtree/internal/wire"
	st "github.com/unkn0wn-root/tagtree/store"
)

// Cache is the memoization facade. It is stateless across requests; the
// per-request frame tree rides on the context handed to callbacks.
type Cache struct {
	store  st.Store
	codec  c.Codec
	hasher Hasher
	log    Logger
	hooks  Hooks
	tagged *taggedStore
}

// Remember returns the memoized value for key, executing cb on a miss and
// storing its result tagged with the frame's final dependency snapshot: the
// declared tags plus everything nested calls bubbled up. ttl of 0 means no
// expiry; a finite ttl also cascades upward through a TTL pseudo-tag, so an
// enclosing cached value never outlives this one.
//
// cb may return Bypass(v) to skip storage or Reveal(v) to receive (now and
// on later hits) a Revealed carrying the value and its tag snapshot.
//
// Store failures degrade to executing cb without caching; cb errors
// propagate verbatim and nothing is written for this frame or any enclosing
// one still executing.
func (ca *Cache) Remember(ctx context.Context, key string, ttl time.Duration, tags []Tag, cb Callback) (any, error) {
	hkey := ca.hashedKey(key)
	htags, heritable := ca.resolveTags(tags)

	tree, ok := treeFrom(ctx)
	if !ok {
		tree = tagtree.New()
		ctx = withTree(ctx, tree)
	}

	// Request-local memo first: primed by Load or an ancestor frame.
	if tv, ok := tree.Lookup(hkey); ok {
		if v, err := ca.materialize(tv); err == nil {
			tree.MergeTags(tv.Tags)
			return v, nil
		}
	}

	// Then the backing store.
	if tv, ok := ca.tagged.get(ctx, hkey); ok {
		v, err := ca.materialize(tv)
		if err == nil {
			tree.MergeTags(tv.Tags)
			return v, nil
		}
		_ = ca.store.Del(ctx, hkey) // self-heal undecodable payload
		ca.hooks.SelfHealCorrupt(hkey, "payload_decode")
	}

	tagHashes, readonly := ca.tagged.fetchOrMakeTagHashes(ctx, htags, ttl)
	if readonly {
		ca.hooks.ReadonlyFrame(hkey, "tag_fetch_failed")
	}
	saved := tree.Advance(tagHashes, pick(tagHashes, heritable))

	v, err := cb(ctx)
	if err != nil {
		tree.Rewind(saved)
		return nil, err
	}

	var reveal bool
	switch d := v.(type) {
	case bypassValue:
		v = d.v
		if !readonly {
			readonly = true
			ca.hooks.ReadonlyFrame(hkey, "bypass")
		}
	case revealValue:
		v = d.v
		reveal = true
	}

	snapshot := tree.Pop(saved)

	if !readonly {
		if payload, err := ca.codec.Encode(v); err != nil {
			// A value the codec can't round-trip is still a valid
			// result; serve it uncached.
			ca.log.Warn("payload encode failed; not cached", Fields{"key": key, "err": err})
		} else {
			ca.tagged.put(ctx, hkey, ttl, snapshot, payload, reveal)
		}
	}

	if reveal {
		return Revealed{Value: v, Tags: snapshot}, nil
	}
	return v, nil
}

// Wrap runs cb inside a frame that declares tags without caching the frame's
// own result. Its accumulated tags still bubble up, so every enclosing
// Remember stores them in its snapshot. This is how a request declares "all
// computations inside this block depend on X" - typically with Heritable
// tags - without introducing a cache entry of its own.
func (ca *Cache) Wrap(ctx context.Context, tags []Tag, cb Callback) (any, error) {
	htags, heritable := ca.resolveTags(tags)

	tree, ok := treeFrom(ctx)
	if !ok {
		tree = tagtree.New()
		ctx = withTree(ctx, tree)
	}

	tagHashes, _ := ca.tagged.fetchOrMakeTagHashes(ctx, htags, 0)
	saved := tree.Advance(tagHashes, pick(tagHashes, heritable))

	v, err := cb(ctx)
	if err != nil {
		tree.Rewind(saved)
		return nil, err
	}
	tree.Pop(saved)
	return v, nil
}

// Load primes the current frame's memo with the still-valid entries among
// keys, using two store round trips regardless of len(keys). Nested
// Remember calls for those keys then hit the memo instead of the store. The
// loaded snapshots merge into the current frame, so the dependencies are
// inherited even if a nested call never consumes its entry.
//
// Outside an active Remember/Wrap callback there is no frame to prime and
// Load does nothing.
func (ca *Cache) Load(ctx context.Context, keys ...string) {
	tree, ok := treeFrom(ctx)
	if !ok {
		ca.log.Debug("load outside an active frame; ignored", Fields{"keys": len(keys)})
		return
	}
	if len(keys) == 0 {
		return
	}
	hkeys := make([]string, len(keys))
	for i, k := range keys {
		hkeys[i] = ca.hashedKey(k)
	}
	found := ca.tagged.getMultiple(ctx, hkeys)
	tree.Prime(found)
	for _, tv := range found {
		tree.MergeTags(tv.Tags)
	}
}

// ClearTags rotates the fingerprints of the given tags, lazily invalidating
// every cached value whose snapshot references them. Rotation is idempotent:
// clearing an already-cleared tag just rotates again.
func (ca *Cache) ClearTags(ctx context.Context, tags ...Tag) error {
	hashed, _ := ca.resolveTags(tags)
	return ca.tagged.clearTags(ctx, hashed)
}

// materialize decodes a tagged value into what the caller should see:
// the raw payload, or a Revealed wrapper for entries stored under Reveal.
func (ca *Cache) materialize(tv wire.TaggedValue) (any, error) {
	v, err := ca.codec.Decode(tv.Payload)
	if err != nil {
		return nil, err
	}
	if tv.Revealed {
		return Revealed{Value: v, Tags: cloneTags(tv.Tags)}, nil
	}
	return v, nil
}

// pick extracts the fingerprints of the given keys from hashes. Keys absent
// from hashes (possible on a readonly tag fetch) are skipped.
func pick(hashes map[string]string, keys []string) map[string]string {
	if len(keys) == 0 {
		return nil
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if fp, ok := hashes[k]; ok {
			out[k] = fp
		}
	}
	return out
}

func cloneTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
