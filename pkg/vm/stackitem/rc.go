package stackitem

// rc is embedded into compound items (Array, Struct, Map, Buffer) to track
// how many containers currently hold a reference to them. The VM's
// refCounter uses IncRC/DecRC to decide whether to recurse into children
// when a compound item is added to or removed from the evaluation stack.
type rc struct {
	refs int
}

// IncRC increments the reference counter and returns the new value.
func (r *rc) IncRC() int {
	r.refs++
	return r.refs
}

// DecRC decrements the reference counter and returns the new value.
func (r *rc) DecRC() int {
	r.refs--
	return r.refs
}

// ro is embedded into compound items that support being frozen against
// further mutation (used for manifest-declared constant structures).
type ro struct {
	readOnly bool
}

// IsReadOnly returns whether the item has been marked read-only.
func (r *ro) IsReadOnly() bool {
	return r.readOnly
}

// MarkAsReadOnly freezes the item so that further mutation panics with
// ErrReadOnly.
func (r *ro) MarkAsReadOnly() {
	r.readOnly = true
}
