package robinhood

import (
	"fmt"

	"go.uber.org/zap"
)

// ============================================================================
// Configuration
// ============================================================================

// TableConfig defines configurable options for Table initialization.
// Options are applied by New and NewWithStrategy and validated once all of
// them have run; an invalid combination is returned as an error.
type TableConfig struct {
	// capacity is the initial slot count; zero until WithCapacity sets it.
	// Unset, it becomes defaultCapacity clamped to maxCapacity.
	capacity int

	// maxCapacity caps growth; exceeding it fails with ErrCapacityOverflow.
	maxCapacity int

	// loadFactor is the maximum size/capacity ratio after an insertion.
	loadFactor float64

	// strategy, keyHash and keyEqual hold a Strategy[K], func(K) uint32
	// and func(K, K) bool. They are typed against K at construction.
	strategy any
	keyHash  any
	keyEqual any

	logger *zap.Logger
}

// WithCapacity configures the initial number of slots. The table still
// grows on demand. If n is zero or negative, the value is ignored.
func WithCapacity(n int) func(*TableConfig) {
	return func(c *TableConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithMaxCapacity bounds the number of slots the table may ever allocate.
// Insertions and reservations that would need more fail with
// ErrCapacityOverflow and leave the table unchanged.
func WithMaxCapacity(n int) func(*TableConfig) {
	return func(c *TableConfig) {
		if n > 0 {
			c.maxCapacity = min(n, maxCapacity)
		}
	}
}

// WithLoadFactor sets the growth threshold. It must be in (0, 1];
// other values make the constructor fail with ErrInvalidLoadFactor.
func WithLoadFactor(f float64) func(*TableConfig) {
	return func(c *TableConfig) {
		c.loadFactor = f
	}
}

// WithStrategy replaces the key strategy chosen by the constructor.
// The strategy must be for the table's key type.
//
// Usage:
//
//	t, err := robinhood.New[string, int](
//		robinhood.WithStrategy[string](robinhood.Funcs[string]{
//			HashFunc:  robinhood.DJB2,
//			EqualFunc: func(a, b string) bool { return a == b },
//		}),
//	)
func WithStrategy[K any](s Strategy[K]) func(*TableConfig) {
	return func(c *TableConfig) {
		if s != nil {
			c.strategy = s
		}
	}
}

// WithKeyHasher overrides only the hash function of the key strategy.
//
// Usage:
//
//	t, err := robinhood.New[string, int](robinhood.WithKeyHasher(robinhood.FNV1a))
func WithKeyHasher[K any](hash func(key K) uint32) func(*TableConfig) {
	return func(c *TableConfig) {
		if hash != nil {
			c.keyHash = hash
		}
	}
}

// WithKeyEqual overrides only the equality predicate of the key strategy.
// It must agree with the hash: equal keys must hash equally.
func WithKeyEqual[K any](equal func(a, b K) bool) func(*TableConfig) {
	return func(c *TableConfig) {
		if equal != nil {
			c.keyEqual = equal
		}
	}
}

// WithLogger sets the logger used for growth and allocation events.
// Growth is logged at debug level, failed allocations at warn level.
func WithLogger(l *zap.Logger) func(*TableConfig) {
	return func(c *TableConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func defaultConfig() TableConfig {
	return TableConfig{
		maxCapacity: maxCapacity,
		loadFactor:  defaultLoadFactor,
	}
}

// resolve types the generic options against K and merges them into base.
//
// Configuration priority (highest to lowest):
//   - WithKeyHasher, WithKeyEqual
//   - WithStrategy
//   - the strategy passed by the constructor
func resolve[K any](cfg *TableConfig, base Strategy[K]) (Funcs[K], error) {
	if cfg.strategy != nil {
		s, ok := cfg.strategy.(Strategy[K])
		if !ok {
			return Funcs[K]{}, fmt.Errorf("%w: %T is not a key strategy for %T",
				ErrInvalidStrategy, cfg.strategy, *new(K))
		}
		base = s
	}
	if base == nil {
		return Funcs[K]{}, fmt.Errorf("%w: nil strategy", ErrInvalidStrategy)
	}
	f := funcsOf(base)
	if cfg.keyHash != nil {
		h, ok := cfg.keyHash.(func(K) uint32)
		if !ok {
			return Funcs[K]{}, fmt.Errorf("%w: hasher %T does not hash %T",
				ErrInvalidStrategy, cfg.keyHash, *new(K))
		}
		f.HashFunc = h
	}
	if cfg.keyEqual != nil {
		eq, ok := cfg.keyEqual.(func(K, K) bool)
		if !ok {
			return Funcs[K]{}, fmt.Errorf("%w: equality %T does not compare %T",
				ErrInvalidStrategy, cfg.keyEqual, *new(K))
		}
		f.EqualFunc = eq
	}
	if f.HashFunc == nil || f.EqualFunc == nil {
		return Funcs[K]{}, fmt.Errorf("%w: hash and equality are required", ErrInvalidStrategy)
	}
	if !(cfg.loadFactor > 0 && cfg.loadFactor <= 1) {
		return Funcs[K]{}, fmt.Errorf("%w: got %v", ErrInvalidLoadFactor, cfg.loadFactor)
	}
	if cfg.capacity == 0 {
		cfg.capacity = min(defaultCapacity, cfg.maxCapacity)
	}
	if cfg.capacity > cfg.maxCapacity {
		return Funcs[K]{}, fmt.Errorf("%w: initial capacity %d exceeds %d",
			ErrCapacityOverflow, cfg.capacity, cfg.maxCapacity)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return f, nil
}
