package robinhood

import (
	"fmt"
	"runtime"
)

type slotState uint8

const (
	// slotEmpty must stay the zero value: a freshly made array is all empty.
	slotEmpty slotState = iota
	slotOccupied
)

// slot is one cell of the slot array. key, value, hash and psl are only
// meaningful while state is slotOccupied; an empty slot holds zero values
// so that released keys and values can be collected.
type slot[K any, V any] struct {
	key   K
	value V
	// hash caches the strategy hash so growth and probing never rehash.
	hash uint32
	// psl is the probe sequence length: distance from the ideal bucket.
	psl   uint32
	state slotState
}

//go:nosplit
func (s *slot[K, V]) isEmpty() bool {
	return s.state == slotEmpty
}

//go:nosplit
func (s *slot[K, V]) reset() {
	*s = slot[K, V]{}
}

// moveTo transfers the record in s to dst one step closer to its ideal
// bucket and leaves s empty. Key ownership moves with the record.
//
//go:nosplit
func (s *slot[K, V]) moveTo(dst *slot[K, V]) {
	*dst = *s
	dst.psl--
	s.reset()
}

// allocSlots makes an all-empty slot array of n slots. A runtime
// allocation panic is reported as ErrAllocation instead of unwinding
// through the caller, which has not touched its old array yet.
func allocSlots[K any, V any](n int) (slots []slot[K, V], err error) {
	if n < 1 || n > maxCapacity {
		return nil, fmt.Errorf("%w: %d slots", ErrCapacityOverflow, n)
	}
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(runtime.Error); ok {
				slots, err = nil, fmt.Errorf("%w: %d slots: %v", ErrAllocation, n, re)
				return
			}
			panic(r)
		}
	}()
	return make([]slot[K, V], n), nil
}
