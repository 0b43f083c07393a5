package robinhood

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/dolthub/maphash"

	"github.com/llxisdsh/robinhood/internal/opt"
)

// ============================================================================
// Private Constants
// ============================================================================

const (
	// defaultCapacity is the slot count of a table created without
	// WithCapacity.
	defaultCapacity = 16
	// defaultLoadFactor: grow when (size+1)/capacity would exceed it
	defaultLoadFactor = 0.75
)

const (
	intSize = 32 << (^uint(0) >> 63) // 32 or 64
	maxInt  = 1<<(intSize-1) - 1     // MaxInt32 or MaxInt64 depending on intSize.

	// maxCapacity bounds the slot count. Ideal buckets come from a 32-bit
	// hash, so slots past 1<<32 would only ever be reached by probing.
	maxCapacity = min(1<<32, maxInt)
)

// ============================================================================
// Locker Utilities
// ============================================================================

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// ============================================================================
// Hash Utilities
// ============================================================================

// Hasher32 may be implemented by key types that compute their own hash.
// It is detected by New and takes precedence over the built-in hashers,
// but is overridden by an explicit WithKeyHasher or WithStrategy.
//
// Usage:
//
//	type UserID struct {
//		ID     int64
//		Tenant string
//	}
//
//	func (u UserID) Hash32() uint32 {
//		return robinhood.DJB2(u.Tenant) ^ uint32(u.ID)
//	}
type Hasher32 interface {
	Hash32() uint32
}

// DJB2 is Bernstein's string hash (h*33 + c, seeded with 5381).
func DJB2(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h<<5 + h + uint32(s[i])
	}
	return h
}

// FNV1a is the 32-bit FNV-1a string hash.
func FNV1a(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// XXHash is xxHash64 of s folded to 32 bits.
func XXHash(s string) uint32 {
	return fold64(xxhash.Sum64String(s))
}

// fold64 xors the high half of h into the low half.
//
//go:nosplit
func fold64(h uint64) uint32 {
	return uint32(h ^ h>>32)
}

// mix64 is the murmur3 64-bit finalizer. Sequential integers otherwise
// land in sequential buckets and form long runs once the capacity is a
// multiple of their stride.
//
//go:nosplit
func mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// defaultStringHasher returns the runtime's AES-backed string hash when the
// CPU supports it, and xxhash otherwise.
func defaultStringHasher() func(string) uint32 {
	if opt.HasAESHash_ {
		h := maphash.NewHasher[string]()
		return func(s string) uint32 {
			return fold64(h.Hash(s))
		}
	}
	return XXHash
}

// defaultHasher picks the hash function New uses for K.
//
// Priority (highest to lowest):
//   - Hasher32 implemented by K or *K
//   - string and integer kinds, including named types
//   - the runtime hasher for any other comparable type
func defaultHasher[K comparable]() func(K) uint32 {
	if h := parseKeyInterface[K](); h != nil {
		return h
	}

	kType := reflect.TypeFor[K]()
	if kType == nil {
		return comparableHasher[K]()
	}
	switch kType.Kind() {
	case reflect.String:
		hs := defaultStringHasher()
		return func(key K) uint32 {
			return hs(*(*string)(unsafe.Pointer(&key)))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr:
		return integerHasher[K](kType.Size())
	default:
		return comparableHasher[K]()
	}
}

func parseKeyInterface[K any]() func(K) uint32 {
	var k *K
	if _, ok := any(k).(Hasher32); ok {
		return func(key K) uint32 {
			return any(&key).(Hasher32).Hash32()
		}
	}
	return nil
}

// integerHasher reads the key's raw bits; size is the key's width in bytes.
func integerHasher[K any](size uintptr) func(K) uint32 {
	switch size {
	case 8:
		return func(key K) uint32 {
			return fold64(mix64(*(*uint64)(unsafe.Pointer(&key))))
		}
	case 4:
		return func(key K) uint32 {
			return fold64(mix64(uint64(*(*uint32)(unsafe.Pointer(&key)))))
		}
	case 2:
		return func(key K) uint32 {
			return fold64(mix64(uint64(*(*uint16)(unsafe.Pointer(&key)))))
		}
	default:
		return func(key K) uint32 {
			return fold64(mix64(uint64(*(*uint8)(unsafe.Pointer(&key)))))
		}
	}
}

func comparableHasher[K comparable]() func(K) uint32 {
	h := maphash.NewHasher[K]()
	return func(key K) uint32 {
		return fold64(h.Hash(key))
	}
}

func isStringKind[K any]() bool {
	kType := reflect.TypeFor[K]()
	return kType != nil && kType.Kind() == reflect.String
}

// cloneStringKind deep-copies a key whose underlying type is string.
func cloneStringKind[K any](key K) K {
	s := strings.Clone(*(*string)(unsafe.Pointer(&key)))
	return *(*K)(unsafe.Pointer(&s))
}
