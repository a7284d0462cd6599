package tagtree

import (
	"context"
	"time"

	"github.com/unkn0wn-root/tagtree/internal/wire"
	st "github.com/unkn0wn-root/tagtree/store"
)

// taggedStore wraps the byte store with tag-fingerprint semantics: framed
// tagged values, validity-checked reads, fingerprint minting and rotation.
// Store failures never escape it - reads degrade to miss, tag fetches to
// readonly, writes are dropped.
type taggedStore struct {
	store st.Store
	log   Logger
	hooks Hooks
}

// get fetches the tagged value at key and validates its snapshot: every
// fingerprint recorded at write time must still match the store's current
// one. A snapshot that can never match again (rotated or expired tag) is
// self-healed away.
func (s *taggedStore) get(ctx context.Context, key string) (wire.TaggedValue, bool) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.hooks.StoreUnavailable("get", err)
		s.log.Debug("get degraded to miss", Fields{"key": key, "err": err})
		return wire.TaggedValue{}, false
	}
	if !ok {
		return wire.TaggedValue{}, false
	}
	tv, err := wire.Decode(raw)
	if err != nil {
		_ = s.store.Del(ctx, key) // self-heal corrupt
		s.hooks.SelfHealCorrupt(key, "frame")
		return wire.TaggedValue{}, false
	}
	if len(tv.Tags) == 0 {
		return tv, true
	}
	current, err := s.store.GetMulti(ctx, tagKeysOf(tv.Tags))
	if err != nil {
		s.hooks.StoreUnavailable("get_multi", err)
		return wire.TaggedValue{}, false
	}
	if !snapshotValid(tv.Tags, current) {
		_ = s.store.Del(ctx, key)
		s.hooks.SnapshotInvalid(key, len(tv.Tags))
		return wire.TaggedValue{}, false
	}
	return tv, true
}

// getMultiple fetches many tagged values with at most two round trips: one
// multi-get for the values, one for the union of their tag keys (skipped
// when no decoded entry carries tags). Entries whose snapshots no longer
// match are filtered out.
func (s *taggedStore) getMultiple(ctx context.Context, keys []string) map[string]wire.TaggedValue {
	out := make(map[string]wire.TaggedValue, len(keys))
	if len(keys) == 0 {
		return out
	}
	raws, err := s.store.GetMulti(ctx, keys)
	if err != nil {
		s.hooks.StoreUnavailable("get_multi", err)
		return out
	}

	decoded := make(map[string]wire.TaggedValue, len(raws))
	tagSet := make(map[string]struct{})
	for k, raw := range raws {
		tv, err := wire.Decode(raw)
		if err != nil {
			_ = s.store.Del(ctx, k)
			s.hooks.SelfHealCorrupt(k, "frame")
			continue
		}
		decoded[k] = tv
		for t := range tv.Tags {
			tagSet[t] = struct{}{}
		}
	}
	if len(decoded) == 0 {
		return out
	}

	var current map[string][]byte
	if len(tagSet) > 0 {
		tagKeys := make([]string, 0, len(tagSet))
		for t := range tagSet {
			tagKeys = append(tagKeys, t)
		}
		current, err = s.store.GetMulti(ctx, tagKeys)
		if err != nil {
			s.hooks.StoreUnavailable("get_multi", err)
			return out
		}
	}

	for k, tv := range decoded {
		if snapshotValid(tv.Tags, current) {
			out[k] = tv
		} else {
			s.hooks.SnapshotInvalid(k, len(tv.Tags))
		}
	}
	return out
}

// fetchOrMakeTagHashes ensures every tag in tagKeys has a current
// fingerprint, minting fresh ones for tags that have none. It also mints a
// TTL pseudo-tag: a nonce-keyed fingerprint stored with expiry ttl, which is
// what forces enclosing frames to expire when this one does. With ttl == 0
// the pseudo-tag is dropped from the result and never stored, so nothing
// flows upward.
//
// readonly reports that the initial multi-get failed; callers must not write
// a value tagged with the (possibly empty) result.
func (s *taggedStore) fetchOrMakeTagHashes(ctx context.Context, tagKeys []string, ttl time.Duration) (taghashes map[string]string, readonly bool) {
	ttlKey := ttlTagKey(ttl)
	lookup := make([]string, 0, len(tagKeys)+1)
	lookup = append(lookup, ttlKey)
	lookup = append(lookup, tagKeys...)

	got, err := s.store.GetMulti(ctx, lookup)
	if err != nil {
		s.hooks.StoreUnavailable("tag_fetch", err)
		s.log.Debug("tag fetch failed; frame is readonly", Fields{"tags": len(tagKeys), "err": err})
		out := make(map[string]string, len(got))
		for k, v := range got {
			if k != ttlKey {
				out[k] = string(v)
			}
		}
		return out, true
	}

	out := make(map[string]string, len(lookup))
	missing := make(map[string][]byte)
	for _, tk := range tagKeys {
		if v, ok := got[tk]; ok {
			out[tk] = string(v)
			continue
		}
		fp := newFingerprint()
		out[tk] = fp
		missing[tk] = []byte(fp)
	}

	if len(missing) > 0 {
		if err := s.store.SetMulti(ctx, missing, 0); err != nil {
			s.hooks.StoreUnavailable("set_multi", err)
			s.log.Warn("minted fingerprints not persisted", Fields{"count": len(missing), "err": err})
		} else {
			s.hooks.TagsMinted(len(missing))
		}
	}

	// The pseudo-tag key embeds a fresh nonce, so it is never already
	// present. Its fingerprint lives exactly ttl; once it expires, every
	// snapshot that absorbed it fails validation.
	if ttl > 0 {
		fp := newFingerprint()
		out[ttlKey] = fp
		if err := s.store.Set(ctx, ttlKey, []byte(fp), ttl); err != nil {
			s.hooks.StoreUnavailable("set", err)
		}
	}
	return out, false
}

// put frames value bytes with the snapshot and writes them under key.
// Best-effort: a failed write just means the next read recomputes.
func (s *taggedStore) put(ctx context.Context, key string, ttl time.Duration, tags map[string]string, payload []byte, revealed bool) {
	b, err := wire.Encode(wire.TaggedValue{Tags: tags, Payload: payload, Revealed: revealed})
	if err != nil {
		s.log.Warn("entry not cacheable", Fields{"key": key, "err": err})
		return
	}
	if err := s.store.Set(ctx, key, b, ttl); err != nil {
		s.hooks.StoreUnavailable("set", err)
		s.log.Debug("store write dropped", Fields{"key": key, "err": err})
	}
}

// clearTags rotates the fingerprints of the given hashed tag keys. Every
// tagged value whose snapshot referenced an old fingerprint becomes invalid
// on its next read, without being enumerated.
func (s *taggedStore) clearTags(ctx context.Context, tagKeys []string) error {
	if len(tagKeys) == 0 {
		return nil
	}
	entries := make(map[string][]byte, len(tagKeys))
	for _, tk := range tagKeys {
		entries[tk] = []byte(newFingerprint())
	}
	if err := s.store.SetMulti(ctx, entries, 0); err != nil {
		s.hooks.StoreUnavailable("set_multi", err)
		return &ClearTagsError{Tags: tagKeys, Err: err}
	}
	s.hooks.TagsRotated(len(tagKeys))
	return nil
}

// snapshotValid reports whether every (tag, fingerprint) pair in snap still
// matches the store's current fingerprints. A missing current fingerprint
// means invalid.
func snapshotValid(snap map[string]string, current map[string][]byte) bool {
	for t, h := range snap {
		cur, ok := current[t]
		if !ok || string(cur) != h {
			return false
		}
	}
	return true
}

func tagKeysOf(tags map[string]string) []string {
	out := make([]string, 0, len(tags))
	for t := range tags {
		out = append(out, t)
	}
	return out
}
