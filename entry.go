package robinhood

type computeOp uint8

const (
	cancelOp computeOp = iota
	updateOp
	deleteOp
)

// Entry is a temporary view of a table entry passed to Compute and
// ComputeRange. It can be updated or deleted during the callback.
//
// WARNING:
//   - Only valid inside the callback; do NOT keep, return, or use it outside.
type Entry[K any, V any] struct {
	key    K
	value  V
	loaded bool
	op     computeOp
}

// Key returns the entry's key. For a loaded entry this is the stored key.
func (e *Entry[K, V]) Key() K {
	return e.key
}

// Value returns the entry's value. Returns zero value if not loaded.
func (e *Entry[K, V]) Value() V {
	return e.value
}

// Loaded reports whether the entry exists in the table.
func (e *Entry[K, V]) Loaded() bool {
	return e.loaded
}

// Update sets the entry's value. Inserts it if not loaded, replaces if loaded.
func (e *Entry[K, V]) Update(value V) {
	e.value = value
	e.op = updateOp
}

// Delete marks the entry for removal and clears its value.
func (e *Entry[K, V]) Delete() {
	e.value = *new(V)
	e.op = deleteOp
}
