package tagtree

import (
	"context"

	"github.com/unkn0wn-root/tagtree/internal/tagtree"
)

type treeCtxKey struct{}

// treeFrom returns the frame tree riding on ctx, if any.
func treeFrom(ctx context.Context) (*tagtree.Tree, bool) {
	t, ok := ctx.Value(treeCtxKey{}).(*tagtree.Tree)
	return t, ok
}

// withTree attaches a frame tree to ctx. The returned context is what the
// root frame's callback sees; when the root call returns, the tree goes out
// of scope with it.
func withTree(ctx context.Context, t *tagtree.Tree) context.Context {
	return context.WithValue(ctx, treeCtxKey{}, t)
}
