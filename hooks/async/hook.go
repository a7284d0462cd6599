// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/tagtree"
//	"github.com/unkn0wn-root/tagtree/hooks/async"
//	"github.com/unkn0wn-root/tagtree/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SnapshotInvalidEvery: 10, // sample logs: ~every 10th invalid snapshot
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := tagtree.New(tagtree.Options{
//	    Store: store,
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/tagtree"
)

type Hooks struct {
	inner tagtree.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ tagtree.Hooks = (*Hooks)(nil)

func New(inner tagtree.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SnapshotInvalid(k string, n int) { h.try(func() { h.inner.SnapshotInvalid(k, n) }) }
func (h *Hooks) SelfHealCorrupt(k, r string)     { h.try(func() { h.inner.SelfHealCorrupt(k, r) }) }
func (h *Hooks) StoreUnavailable(op string, err error) {
	h.try(func() { h.inner.StoreUnavailable(op, err) })
}
func (h *Hooks) ReadonlyFrame(k, r string) { h.try(func() { h.inner.ReadonlyFrame(k, r) }) }
func (h *Hooks) TagsMinted(n int)          { h.try(func() { h.inner.TagsMinted(n) }) }
func (h *Hooks) TagsRotated(n int)         { h.try(func() { h.inner.TagsRotated(n) }) }
