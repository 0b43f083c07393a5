package robinhood

import (
	"bytes"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dolthub/maphash"
	"golang.org/x/exp/constraints"
)

// Strategy parametrizes a Table over its key type.
//
//   - Hash must be deterministic for the lifetime of the table.
//   - Duplicate is called once when a caller's key is first stored.
//     Owned key types deep-copy here; by-value keys return the key as is.
//   - Release is called when a stored key is abandoned: on Remove, Clear,
//     Close and entry deletion. Keys moved between slots during growth or
//     backward-shift compaction are neither duplicated nor released.
type Strategy[K any] interface {
	Hash(key K) uint32
	Equal(a, b K) bool
	Duplicate(key K) K
	Release(key K)
}

// KeyValidator is an optional interface for strategies that reject some
// keys. Rejected keys make TrySet fail with ErrInvalidKey and read as absent.
type KeyValidator[K any] interface {
	ValidKey(key K) bool
}

// Funcs is a Strategy assembled from plain functions.
// HashFunc and EqualFunc are required. A nil DuplicateFunc stores keys as
// is, a nil ReleaseFunc does nothing and a nil ValidFunc accepts every key.
type Funcs[K any] struct {
	HashFunc      func(key K) uint32
	EqualFunc     func(a, b K) bool
	DuplicateFunc func(key K) K
	ReleaseFunc   func(key K)
	ValidFunc     func(key K) bool
}

func (f Funcs[K]) Hash(key K) uint32 {
	return f.HashFunc(key)
}

func (f Funcs[K]) Equal(a, b K) bool {
	return f.EqualFunc(a, b)
}

func (f Funcs[K]) Duplicate(key K) K {
	if f.DuplicateFunc == nil {
		return key
	}
	return f.DuplicateFunc(key)
}

func (f Funcs[K]) Release(key K) {
	if f.ReleaseFunc != nil {
		f.ReleaseFunc(key)
	}
}

func (f Funcs[K]) ValidKey(key K) bool {
	return f.ValidFunc == nil || f.ValidFunc(key)
}

// funcsOf flattens s so the table can skip nil hooks on hot paths.
func funcsOf[K any](s Strategy[K]) Funcs[K] {
	switch f := s.(type) {
	case Funcs[K]:
		return f
	case *Funcs[K]:
		if f != nil {
			return *f
		}
		return Funcs[K]{}
	}
	f := Funcs[K]{
		HashFunc:      s.Hash,
		EqualFunc:     s.Equal,
		DuplicateFunc: s.Duplicate,
		ReleaseFunc:   s.Release,
	}
	if v, ok := s.(KeyValidator[K]); ok {
		f.ValidFunc = v.ValidKey
	}
	return f
}

// StringKeys stores string keys as owned copies: Duplicate clones the
// bytes, so keys built over a reused buffer (e.g. with unsafe.String over
// a scanner's buffer) stay intact once stored.
func StringKeys() Funcs[string] {
	return Funcs[string]{
		HashFunc:      defaultStringHasher(),
		EqualFunc:     func(a, b string) bool { return a == b },
		DuplicateFunc: strings.Clone,
	}
}

// BytesKeys stores byte slice keys as owned copies. Nil slices are
// rejected as invalid keys; an empty non-nil slice is a valid key.
func BytesKeys() Funcs[[]byte] {
	return Funcs[[]byte]{
		HashFunc:      func(key []byte) uint32 { return fold64(xxhash.Sum64(key)) },
		EqualFunc:     bytes.Equal,
		DuplicateFunc: bytes.Clone,
		ValidFunc:     func(key []byte) bool { return key != nil },
	}
}

// IntegerKeys stores integer keys by value.
func IntegerKeys[K constraints.Integer]() Funcs[K] {
	return Funcs[K]{
		HashFunc:  func(key K) uint32 { return fold64(mix64(uint64(key))) },
		EqualFunc: func(a, b K) bool { return a == b },
	}
}

// PointerKeys uses pointers as opaque identifiers: hashed and compared by
// address, never dereferenced. Nil pointers are rejected as invalid keys.
func PointerKeys[T any]() Funcs[*T] {
	h := maphash.NewHasher[*T]()
	return Funcs[*T]{
		HashFunc:  func(key *T) uint32 { return fold64(h.Hash(key)) },
		EqualFunc: func(a, b *T) bool { return a == b },
		ValidFunc: func(key *T) bool { return key != nil },
	}
}

// ComparableKeys stores any comparable key by value using the runtime
// hasher Go maps use for K.
func ComparableKeys[K comparable]() Funcs[K] {
	return Funcs[K]{
		HashFunc:  comparableHasher[K](),
		EqualFunc: func(a, b K) bool { return a == b },
	}
}

// defaultStrategy is the strategy New uses for K. Keys of string kind are
// owned; everything else is stored by value.
func defaultStrategy[K comparable]() Funcs[K] {
	f := Funcs[K]{
		HashFunc:  defaultHasher[K](),
		EqualFunc: func(a, b K) bool { return a == b },
	}
	if isStringKind[K]() {
		f.DuplicateFunc = cloneStringKind[K]
	}
	return f
}
