package tagtree

// coalesceNil returns def when the interface option v is nil - otherwise v.
func coalesceNil[T any](v, def T) T {
	if any(v) == nil {
		return def
	}
	return v
}
