package robinhood

import "errors"

var (
	// ErrInvalidKey is returned when a key is rejected by the table's
	// KeyValidator, e.g. a nil pointer or nil byte slice.
	ErrInvalidKey = errors.New("robinhood: invalid key")

	// ErrAllocation is returned when the slot array could not be allocated.
	// The table keeps its previous array.
	ErrAllocation = errors.New("robinhood: slot array allocation failed")

	// ErrCapacityOverflow is returned when a requested capacity exceeds
	// the maximum number of slots a table can address.
	ErrCapacityOverflow = errors.New("robinhood: capacity overflow")

	// ErrInvalidLoadFactor is returned for a load factor outside (0, 1].
	ErrInvalidLoadFactor = errors.New("robinhood: load factor must be in (0, 1]")

	// ErrInvalidStrategy is returned when a strategy lacks a hash or
	// equality function, or was built for a different key type.
	ErrInvalidStrategy = errors.New("robinhood: invalid key strategy")

	// ErrConcurrentModification is the panic value raised by an iterator
	// that observes a structural change of its table.
	ErrConcurrentModification = errors.New("robinhood: table modified during iteration")
)

// errProbeOverflow signals a broken load factor invariant: a probe walked
// the whole array without finding a free slot.
var errProbeOverflow = errors.New("robinhood: probe sequence exhausted")
