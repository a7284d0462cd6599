package tagtree

import (
	"context"
	"fmt"

	c "github.com/unkn0wn-root/tagtree/codec"
	st "github.com/unkn0wn-root/tagtree/store"
)

// Hasher maps user keys and tag names to their storage form. The default is
// the identity function. Swap in a hashing function when keys are long or
// contain bytes the backing store dislikes; it must be deterministic across
// processes or previously written entries become unreachable.
type Hasher func(string) string

// Callback computes the value to memoize. Nested Remember/Wrap/Load calls
// must use the ctx passed in here - it carries the frame tree.
type Callback func(ctx context.Context) (any, error)

// Options tune the cache. Only Store is required; others have sensible
// defaults.
type Options struct {
	// Required
	Store st.Store

	Codec  c.Codec // payload serialization; nil => codec.Msgpack{}
	Hasher Hasher  // key/tag hashing; nil => identity
	Logger Logger  // nil => NopLogger
	Hooks  Hooks   // nil => NopHooks
}

// New builds a Cache facade. The Cache itself is safe for concurrent use
// across requests; each request's frame tree is carried on its context and
// must stay within one flow of control.
func New(opts Options) (*Cache, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("tagtree: store is required")
	}

	ca := &Cache{store: opts.Store}

	// defaults
	ca.codec = coalesceNil[c.Codec](opts.Codec, c.Msgpack{})
	ca.log = coalesceNil[Logger](opts.Logger, NopLogger{})
	ca.hooks = coalesceNil[Hooks](opts.Hooks, NopHooks{})
	ca.hasher = opts.Hasher
	if ca.hasher == nil {
		ca.hasher = func(s string) string { return s }
	}

	ca.tagged = &taggedStore{
		store: ca.store,
		log:   ca.log,
		hooks: ca.hooks,
	}
	return ca, nil
}
