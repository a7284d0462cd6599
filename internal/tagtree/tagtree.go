// Package tagtree holds the per-request frame stack that accumulates tag
// dependencies for nested memoized calls. A Tree is owned by a single flow
// of control; frames form a strict parent-child stack, never a DAG.
package tagtree

import (
	"github.com/unkn0wn-root/tagtree/internal/wire"
)

// Frame is the per-invocation record. tags accumulates this frame's
// dependencies (own declared tags, everything bubbled up from children on
// pop, heritable fingerprints inherited from ancestors). heritable maps the
// tag keys marked heritable here or in any ancestor to their fingerprints.
// local is the request-scoped memo visible to this frame and its
// descendants.
type Frame struct {
	parent    *Frame
	tags      map[string]string
	heritable map[string]string
	local     map[string]wire.TaggedValue
}

// Tree is the frame stack. The root frame exists for the lifetime of the
// outermost call; after it returns the whole tree is discarded.
type Tree struct {
	current *Frame
}

// New creates a tree with an empty root frame.
func New() *Tree {
	return &Tree{current: newFrame(nil)}
}

func newFrame(parent *Frame) *Frame {
	return &Frame{
		parent:    parent,
		tags:      make(map[string]string),
		heritable: make(map[string]string),
		local:     make(map[string]wire.TaggedValue),
	}
}

// Advance pushes a child frame seeded with tagHashes, inheriting the
// parent's heritable set (whose fingerprints also join the child's tags) and
// registering any newly declared heritable tags. It returns the previous
// frame for Pop/Rewind.
func (t *Tree) Advance(tagHashes map[string]string, heritable map[string]string) *Frame {
	parent := t.current
	f := newFrame(parent)
	for k, v := range tagHashes {
		f.tags[k] = v
	}
	for k, v := range parent.heritable {
		f.heritable[k] = v
		f.tags[k] = v
	}
	for k, v := range heritable {
		f.heritable[k] = v
		f.tags[k] = v
	}
	t.current = f
	return parent
}

// Pop snapshots the current frame's final tags, merges them into saved (the
// frame returned by the matching Advance) and restores it as current. The
// returned snapshot is what a store write for the popped frame must use.
func (t *Tree) Pop(saved *Frame) map[string]string {
	snap := make(map[string]string, len(t.current.tags))
	for k, v := range t.current.tags {
		snap[k] = v
		saved.tags[k] = v
	}
	t.current = saved
	return snap
}

// Rewind restores saved as current without merging. Used on callback failure
// so a failing frame contributes nothing upward.
func (t *Tree) Rewind(saved *Frame) {
	t.current = saved
}

// MergeTags folds a snapshot into the current frame's tags. Called on cache
// hits so the caller inherits the hit entry's dependencies.
func (t *Tree) MergeTags(tags map[string]string) {
	for k, v := range tags {
		t.current.tags[k] = v
	}
}

// TagHashes returns a copy of the current frame's accumulated tags.
func (t *Tree) TagHashes() map[string]string {
	out := make(map[string]string, len(t.current.tags))
	for k, v := range t.current.tags {
		out[k] = v
	}
	return out
}

// Lookup walks from the current frame to the root and returns the first
// memoized entry for key. Ancestors' memos are visible to descendants; this
// is how Load primes results for nested calls without touching the store.
func (t *Tree) Lookup(key string) (wire.TaggedValue, bool) {
	for f := t.current; f != nil; f = f.parent {
		if tv, ok := f.local[key]; ok {
			return tv, true
		}
	}
	return wire.TaggedValue{}, false
}

// Prime inserts entries into the current frame's memo.
func (t *Tree) Prime(entries map[string]wire.TaggedValue) {
	for k, v := range entries {
		t.current.local[k] = v
	}
}

// Depth reports how many frames are on the stack, root included.
func (t *Tree) Depth() int {
	n := 0
	for f := t.current; f != nil; f = f.parent {
		n++
	}
	return n
}
