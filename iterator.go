package robinhood

import "iter"

// Iterator walks the occupied slots of a Table in slot order.
//
// Usage:
//
//	for it := t.Iter(); it.Next(); {
//		fmt.Println(it.Key(), it.Value())
//	}
//
// The order is unspecified and changes when the table grows. Inserting a
// new key, removing a key, growing, Clear and Close invalidate the
// iterator: its next call panics with ErrConcurrentModification. Updating
// the value of an existing key does not.
type Iterator[K any, V any] struct {
	t    *Table[K, V]
	mods uint64
	next int // first slot not yet examined
	cur  int // slot of the current entry, -1 before the first Next
}

// Iter returns an iterator positioned before the first entry.
func (t *Table[K, V]) Iter() *Iterator[K, V] {
	return &Iterator[K, V]{t: t, mods: t.mods, cur: -1}
}

// Next advances to the next entry and reports whether there is one.
func (it *Iterator[K, V]) Next() bool {
	it.checkMods()
	slots := it.t.slots
	for it.next < len(slots) {
		i := it.next
		it.next++
		if !slots[i].isEmpty() {
			it.cur = i
			return true
		}
	}
	it.cur = -1
	return false
}

// Key returns the key of the current entry. The key is owned by the table.
func (it *Iterator[K, V]) Key() K {
	return it.current().key
}

// Value returns the value of the current entry.
func (it *Iterator[K, V]) Value() V {
	return it.current().value
}

func (it *Iterator[K, V]) current() *slot[K, V] {
	it.checkMods()
	if it.cur < 0 {
		panic("robinhood: Iterator used without a successful Next")
	}
	return &it.t.slots[it.cur]
}

func (it *Iterator[K, V]) checkMods() {
	if it.mods != it.t.mods {
		panic(ErrConcurrentModification)
	}
}

// ============================================================================
// Range functions
// ============================================================================

// All returns an iterator over key-value pairs for use with range.
// It follows the same invalidation rules as Iter.
//
// Usage:
//
//	for k, v := range t.All() {
//		fmt.Println(k, v)
//	}
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return t.Range
}

// Keys returns an iterator over the keys of t.
func (t *Table[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		t.Range(func(k K, _ V) bool {
			return yield(k)
		})
	}
}

// Values returns an iterator over the values of t.
func (t *Table[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		t.Range(func(_ K, v V) bool {
			return yield(v)
		})
	}
}

// Range calls yield for each entry in slot order until yield returns false.
// yield may update the value of existing keys with Set; any structural
// change made from yield panics with ErrConcurrentModification once
// control returns to Range.
func (t *Table[K, V]) Range(yield func(key K, value V) bool) {
	mods := t.mods
	for i := range t.slots {
		s := &t.slots[i]
		if s.isEmpty() {
			continue
		}
		if !yield(s.key, s.value) {
			return
		}
		if mods != t.mods {
			panic(ErrConcurrentModification)
		}
	}
}
