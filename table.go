// Package robinhood implements a single-owner hash table using open
// addressing with Robin Hood displacement and backward-shift deletion.
package robinhood

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/llxisdsh/robinhood/internal/opt"
)

// Table is an open-addressing hash table with Robin Hood displacement and
// backward-shift deletion.
//
// Core properties:
//   - Probe runs are ordered by displacement, so lookups stop early on
//     both hit and miss
//   - Removal compacts the run behind the freed slot; there are no
//     tombstones and probe lengths do not degrade over time
//   - The slot array doubles when an insertion would push size/capacity
//     past the load factor; it never shrinks
//
// Usage recommendations:
//   - String keys: New[string, V]() stores owned copies of keys
//   - Non-comparable keys: NewWithStrategy(BytesKeys())
//   - Pre-allocate capacity: WithCapacity(n) or Reserve(n)
//
// Notes:
//   - Table is not safe for concurrent use. Callers sharing one across
//     goroutines must serialize every call, reads included.
//   - Table must not be copied after first use; use Clone.
//   - Pointers returned by Ref and open iterators are invalidated by any
//     insertion of a new key, removal, growth, Clear or Close.
type Table[K any, V any] struct {
	_          noCopy
	slots      []slot[K, V]
	size       int
	mods       uint64 // structural modification counter
	growths    uint32
	loadFactor float64
	initCap    int
	maxCap     int

	hash    func(K) uint32
	equal   func(K, K) bool
	dup     func(K) K // nil: keys are stored as is
	release func(K)   // nil: nothing to release
	valid   func(K) bool
	alloc   func(n int) ([]slot[K, V], error)
	logger  *zap.Logger
}

// New creates a table for comparable keys. The key strategy is chosen by
// key type: string kinds are owned (Duplicate clones them), integer kinds
// use an integer mix, key types implementing Hasher32 hash themselves and
// everything else uses the runtime hasher.
//
// Parameters:
//   - options: configuration options (WithCapacity, WithLoadFactor, etc.)
func New[K comparable, V any](
	options ...func(*TableConfig),
) (*Table[K, V], error) {
	return newTable[K, V](defaultStrategy[K](), options)
}

// NewWithStrategy creates a table whose keys are hashed, compared, copied
// and released by s. K need not be comparable.
//
// Usage:
//
//	t, err := robinhood.NewWithStrategy[[]byte, int](robinhood.BytesKeys())
func NewWithStrategy[K any, V any](
	s Strategy[K],
	options ...func(*TableConfig),
) (*Table[K, V], error) {
	return newTable[K, V](s, options)
}

func newTable[K any, V any](
	base Strategy[K],
	options []func(*TableConfig),
) (*Table[K, V], error) {
	cfg := defaultConfig()
	for _, o := range options {
		o(&cfg)
	}
	f, err := resolve(&cfg, base)
	if err != nil {
		return nil, err
	}

	t := &Table[K, V]{
		loadFactor: cfg.loadFactor,
		initCap:    cfg.capacity,
		maxCap:     cfg.maxCapacity,
		hash:       f.HashFunc,
		equal:      f.EqualFunc,
		dup:        f.DuplicateFunc,
		release:    f.ReleaseFunc,
		valid:      f.ValidFunc,
		alloc:      allocSlots[K, V],
		logger:     cfg.logger,
	}
	if t.slots, err = t.alloc(cfg.capacity); err != nil {
		return nil, err
	}
	return t, nil
}

// Set inserts or updates a key-value pair. It returns true if the key was
// new and false if an existing key's value was replaced. Set also returns
// false when the key is invalid or growth fails; use TrySet to tell those
// cases apart.
func (t *Table[K, V]) Set(key K, value V) bool {
	inserted, _ := t.TrySet(key, value)
	return inserted
}

// TrySet is Set with the failure cause: ErrInvalidKey, ErrAllocation or
// ErrCapacityOverflow. On failure the table is unchanged.
func (t *Table[K, V]) TrySet(key K, value V) (inserted bool, err error) {
	if !t.validKey(key) {
		return false, ErrInvalidKey
	}
	hash := t.hash(key)
	if i := t.find(key, hash); i >= 0 {
		t.slots[i].value = value
		return false, nil
	}
	if err = t.growFor(t.size + 1); err != nil {
		return false, err
	}
	t.insertNew(key, hash, value)
	t.check()
	return true, nil
}

// Get returns the value stored for key, or defaultValue if there is none.
func (t *Table[K, V]) Get(key K, defaultValue V) V {
	if i := t.lookup(key); i >= 0 {
		return t.slots[i].value
	}
	return defaultValue
}

// Load returns the value stored for key and whether it was found.
func (t *Table[K, V]) Load(key K) (value V, ok bool) {
	if i := t.lookup(key); i >= 0 {
		return t.slots[i].value, true
	}
	return value, false
}

// Contains reports whether key is present.
func (t *Table[K, V]) Contains(key K) bool {
	return t.lookup(key) >= 0
}

// Ref returns a pointer to the value stored for key, or nil if absent.
// Writes through the pointer update the table in place. The pointer is
// only valid until the next structural change of the table (insertion of
// a new key, removal, growth, Clear or Close); writes after that are lost.
func (t *Table[K, V]) Ref(key K) *V {
	if i := t.lookup(key); i >= 0 {
		return &t.slots[i].value
	}
	return nil
}

// Remove deletes key and returns whether it was present.
func (t *Table[K, V]) Remove(key K) bool {
	_, ok := t.LoadAndRemove(key)
	return ok
}

// LoadAndRemove deletes key and returns the value it had.
func (t *Table[K, V]) LoadAndRemove(key K) (value V, loaded bool) {
	i := t.lookup(key)
	if i < 0 {
		return value, false
	}
	value = t.slots[i].value
	t.removeAt(i)
	t.check()
	return value, true
}

// Compute performs a read-modify-write for key in a single lookup.
//
// Callback signature:
//
//	fn(e *Entry[K, V])
//
//	  - e.Loaded(): whether key is present; e.Value() is its value
//	  - e.Update(newV): store newV, inserting key if absent
//	  - e.Delete(): remove key if present
//	  - default (no op): leave the table unchanged
//
// It returns ErrInvalidKey for rejected keys, or the growth error if an
// insertion could not be made. fn must not insert or remove keys of t
// itself; doing so panics with ErrConcurrentModification once fn returns,
// before the entry is applied.
func (t *Table[K, V]) Compute(key K, fn func(e *Entry[K, V])) error {
	if !t.validKey(key) {
		return ErrInvalidKey
	}
	hash := t.hash(key)
	i := t.find(key, hash)

	e := Entry[K, V]{key: key}
	if i >= 0 {
		e.key, e.value, e.loaded = t.slots[i].key, t.slots[i].value, true
	}
	mods := t.mods
	fn(&e)
	if mods != t.mods {
		panic(ErrConcurrentModification)
	}

	switch e.op {
	case updateOp:
		if i >= 0 {
			t.slots[i].value = e.value
			return nil
		}
		if err := t.growFor(t.size + 1); err != nil {
			return err
		}
		t.insertNew(key, hash, e.value)
	case deleteOp:
		if i < 0 {
			return nil
		}
		t.removeAt(i)
	default:
		return nil
	}
	t.check()
	return nil
}

// ComputeRange visits every entry in slot order.
//
// Callback signature:
//
//	fn(e *Entry[K, V]) bool
//
//	  - e.Update(newV): update the entry to newV
//	  - e.Delete(): delete the entry
//	  - default (no op): keep the entry unchanged
//	  - return true to continue; return false to stop iteration
//
// Deletions are applied after the walk, so every entry present when
// ComputeRange starts is visited exactly once. As with Range, inserting
// or removing keys of t from fn panics with ErrConcurrentModification.
func (t *Table[K, V]) ComputeRange(fn func(e *Entry[K, V]) bool) {
	var doomed []K
	e := Entry[K, V]{loaded: true}
	mods := t.mods
	for i := range t.slots {
		s := &t.slots[i]
		if s.isEmpty() {
			continue
		}
		e.key, e.value, e.op = s.key, s.value, cancelOp
		goOn := fn(&e)
		if mods != t.mods {
			panic(ErrConcurrentModification)
		}
		switch e.op {
		case updateOp:
			s.value = e.value
		case deleteOp:
			doomed = append(doomed, s.key)
		}
		if !goOn {
			break
		}
	}
	for _, key := range doomed {
		if i := t.find(key, t.hash(key)); i >= 0 {
			t.removeAt(i)
		}
	}
	if len(doomed) != 0 {
		t.check()
	}
}

// Size returns the number of entries. This is an O(1) operation.
func (t *Table[K, V]) Size() int {
	return t.size
}

// Cap returns the number of slots.
func (t *Table[K, V]) Cap() int {
	return len(t.slots)
}

// IsEmpty reports whether the table holds no entries.
func (t *Table[K, V]) IsEmpty() bool {
	return t.size == 0
}

// LoadFactor returns size/capacity.
func (t *Table[K, V]) LoadFactor() float64 {
	if len(t.slots) == 0 {
		return 0
	}
	return float64(t.size) / float64(len(t.slots))
}

// Clear releases every key and empties the table, keeping its capacity.
func (t *Table[K, V]) Clear() {
	t.releaseAll()
	clear(t.slots)
	t.size = 0
	t.mods++
}

// Close releases every key and drops the slot array, returning the table
// to its initial capacity. The table remains usable.
func (t *Table[K, V]) Close() {
	t.releaseAll()
	t.size = 0
	t.mods++
	if len(t.slots) == t.initCap {
		clear(t.slots)
		return
	}
	slots, err := t.alloc(t.initCap)
	if err != nil {
		// Keep the larger array; a table always has slots.
		clear(t.slots)
		return
	}
	t.slots = slots
}

// Reserve grows the table so that n entries fit without further growth.
// Capacity doubles from its current value until n/capacity is within the
// load factor. Errors are dropped; use TryReserve to observe them.
func (t *Table[K, V]) Reserve(n int) {
	_ = t.TryReserve(n)
}

// TryReserve is Reserve with the failure cause. On failure the table is
// unchanged.
func (t *Table[K, V]) TryReserve(n int) error {
	if n <= 0 {
		return nil
	}
	// Same bound as growFor: at most maxCap*loadFactor entries ever fit.
	// Compared in float so huge n cannot wrap the slot count.
	if float64(n) > float64(t.maxCap)*t.loadFactor {
		return fmt.Errorf("%w: reserving %d entries exceeds the limit of %d slots",
			ErrCapacityOverflow, n, t.maxCap)
	}
	required := min(int(float64(n)/t.loadFactor)+1, t.maxCap)
	if required <= len(t.slots) {
		return nil
	}
	newCap := len(t.slots)
	for newCap < required {
		newCap = min(newCap*2, t.maxCap)
	}
	return t.resize(newCap)
}

// Clone returns an independent copy of the table. Keys are duplicated
// through the strategy; values are copied as is.
func (t *Table[K, V]) Clone() *Table[K, V] {
	c := &Table[K, V]{
		slots:      make([]slot[K, V], len(t.slots)),
		size:       t.size,
		loadFactor: t.loadFactor,
		initCap:    t.initCap,
		maxCap:     t.maxCap,
		hash:       t.hash,
		equal:      t.equal,
		dup:        t.dup,
		release:    t.release,
		valid:      t.valid,
		alloc:      t.alloc,
		logger:     t.logger,
	}
	copy(c.slots, t.slots)
	if c.dup != nil {
		for i := range c.slots {
			if !c.slots[i].isEmpty() {
				c.slots[i].key = c.dup(c.slots[i].key)
			}
		}
	}
	return c
}

// String returns a short description of the table's shape.
func (t *Table[K, V]) String() string {
	return fmt.Sprintf("robinhood.Table{size=%d, cap=%d}", t.size, len(t.slots))
}

// ToMap copies the entries of t into a new Go map.
func ToMap[K comparable, V any](t *Table[K, V]) map[K]V {
	m := make(map[K]V, t.Size())
	for k, v := range t.All() {
		m[k] = v
	}
	return m
}

// ============================================================================
// Probe engine
// ============================================================================

//go:nosplit
func (t *Table[K, V]) validKey(key K) bool {
	return t.valid == nil || t.valid(key)
}

// ideal returns the bucket a hash belongs to.
//
//go:nosplit
func (t *Table[K, V]) ideal(hash uint32) int {
	return int(uint64(hash) % uint64(len(t.slots)))
}

// lookup returns the slot index of key, or -1.
func (t *Table[K, V]) lookup(key K) int {
	if !t.validKey(key) {
		return -1
	}
	return t.find(key, t.hash(key))
}

// find walks the probe run of hash. An empty slot, or an occupant that is
// closer to its own ideal bucket than we are to ours, ends the search: the
// key would have displaced it on insertion.
func (t *Table[K, V]) find(key K, hash uint32) int {
	n := len(t.slots)
	i := t.ideal(hash)
	for step := uint32(0); int(step) < n; step++ {
		s := &t.slots[i]
		if s.isEmpty() || s.psl < step {
			return -1
		}
		if s.hash == hash && t.equal(s.key, key) {
			return i
		}
		if i++; i == n {
			i = 0
		}
	}
	return -1
}

// insertNew places a key known to be absent. The caller has ensured a
// free slot exists. The key is duplicated once, when it first takes a slot.
func (t *Table[K, V]) insertNew(key K, hash uint32, value V) {
	if t.dup != nil {
		key = t.dup(key)
	}
	t.place(slot[K, V]{key: key, value: value, hash: hash, state: slotOccupied})
	t.size++
	t.mods++
}

// place runs the Robin Hood probe for rec: whenever rec is farther from
// home than the occupant, they swap and the evicted occupant continues.
// Used both for insertion and for re-homing during growth.
func (t *Table[K, V]) place(rec slot[K, V]) {
	n := len(t.slots)
	i := t.ideal(rec.hash)
	rec.psl = 0
	for range n {
		s := &t.slots[i]
		if s.isEmpty() {
			*s = rec
			return
		}
		if rec.psl > s.psl {
			rec, *s = *s, rec
		}
		rec.psl++
		if i++; i == n {
			i = 0
		}
	}
	panic(errProbeOverflow)
}

// removeAt releases the key at i and shifts the following run back by
// one slot until an empty slot or an entry at its ideal bucket.
func (t *Table[K, V]) removeAt(i int) {
	if t.release != nil {
		t.release(t.slots[i].key)
	}
	t.slots[i].reset()
	t.size--
	t.mods++

	n := len(t.slots)
	empty := i
	for range n - 1 {
		next := empty + 1
		if next == n {
			next = 0
		}
		s := &t.slots[next]
		if s.isEmpty() || s.psl == 0 {
			return
		}
		s.moveTo(&t.slots[empty])
		empty = next
	}
}

// growFor grows the table, if needed, so that it can hold need entries
// within the load factor.
func (t *Table[K, V]) growFor(need int) error {
	capacity := len(t.slots)
	if float64(need)/float64(capacity) <= t.loadFactor {
		return nil
	}
	for float64(need)/float64(capacity) > t.loadFactor {
		if capacity >= t.maxCap {
			return fmt.Errorf("%w: %d entries exceed the limit of %d slots",
				ErrCapacityOverflow, need, t.maxCap)
		}
		capacity = min(capacity*2, t.maxCap)
	}
	return t.resize(capacity)
}

// resize re-homes every entry into a new array of newCap slots. If the
// new array cannot be allocated the table keeps its current one.
func (t *Table[K, V]) resize(newCap int) error {
	slots, err := t.alloc(newCap)
	if err != nil {
		t.logger.Warn("robinhood: resize failed",
			zap.Int("from", len(t.slots)),
			zap.Int("to", newCap),
			zap.Int("size", t.size),
			zap.Error(err),
		)
		return err
	}
	old := t.slots
	t.slots = slots
	for i := range old {
		if !old[i].isEmpty() {
			t.place(old[i])
		}
	}
	t.mods++
	t.growths++
	t.logger.Debug("robinhood: table grown",
		zap.Int("from", len(old)),
		zap.Int("to", newCap),
		zap.Int("size", t.size),
	)
	t.check()
	return nil
}

func (t *Table[K, V]) releaseAll() {
	if t.release == nil {
		return
	}
	for i := range t.slots {
		if !t.slots[i].isEmpty() {
			t.release(t.slots[i].key)
		}
	}
}

// check verifies the probe invariant after a mutation when built with the
// robinhood_checks tag.
func (t *Table[K, V]) check() {
	if opt.Checks_ {
		if err := t.verify(); err != nil {
			panic(err)
		}
	}
}
