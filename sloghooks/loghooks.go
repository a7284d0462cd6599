package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/tagtree"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SnapshotInvalidEvery  uint64
	StoreUnavailableEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	snapInvalidCtr atomic.Uint64
	unavailableCtr atomic.Uint64
}

var _ tagtree.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SnapshotInvalid(storageKey string, tagCount int) {
	if h.l == nil || !sample(h.opts.SnapshotInvalidEvery, &h.snapInvalidCtr) {
		return
	}
	h.l.Debug("tagtree.snapshot_invalid",
		"key", h.redact(storageKey),
		"tags", tagCount)
}

func (h *Hooks) SelfHealCorrupt(storageKey, reason string) {
	if h.l == nil {
		return
	}
	h.l.Warn("tagtree.self_heal_corrupt",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) StoreUnavailable(op string, err error) {
	if h.l == nil || !sample(h.opts.StoreUnavailableEvery, &h.unavailableCtr) {
		return
	}
	h.l.Warn("tagtree.store_unavailable",
		"op", op,
		"err", err)
}

func (h *Hooks) ReadonlyFrame(storageKey, reason string) {
	if h.l == nil {
		return
	}
	h.l.Debug("tagtree.readonly_frame",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) TagsMinted(count int) {
	if h.l == nil {
		return
	}
	h.l.Debug("tagtree.tags_minted", "count", count)
}

func (h *Hooks) TagsRotated(count int) {
	if h.l == nil {
		return
	}
	h.l.Info("tagtree.tags_rotated", "count", count)
}
