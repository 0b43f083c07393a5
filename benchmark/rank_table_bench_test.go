package benchmark

import (
	"runtime"
	"strconv"
	"testing"

	"github.com/alphadose/haxmap"
	"github.com/llxisdsh/pb"
	"github.com/llxisdsh/robinhood"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zhangyunhao116/skipmap"
)

// All maps here are driven from a single goroutine: robinhood.Table has a
// single owner, so the concurrent maps are measured on their uncontended
// fast paths.

const (
	countStore = 1_000_000
	countLoad  = min(1_000_000, countStore)
)

func mixRand(i int) int {
	return i & (8 - 1)
}

var stringKeys = func() []string {
	keys := make([]string, countLoad)
	for i := range keys {
		keys[i] = "key" + strconv.Itoa(i)
	}
	return keys
}()

func newTable[K comparable](b *testing.B, options ...func(*robinhood.TableConfig)) *robinhood.Table[K, int] {
	b.Helper()
	t, err := robinhood.New[K, int](options...)
	if err != nil {
		b.Fatal(err)
	}
	return t
}

// ------------------------------------------------------

func BenchmarkStore_robinhood_Table(b *testing.B) {
	b.ReportAllocs()
	m := newTable[int](b)
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		m.Set(i, i)
		if i++; i >= countStore {
			i = 0
		}
	}
}

func BenchmarkLoad_robinhood_Table(b *testing.B) {
	b.ReportAllocs()
	m := newTable[int](b)
	for i := 0; i < countLoad; i++ {
		m.Set(i, i)
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		_, _ = m.Load(i)
		if i++; i >= countLoad {
			i = 0
		}
	}
}

func BenchmarkMixed_robinhood_Table(b *testing.B) {
	b.ReportAllocs()
	m := newTable[int](b)
	for i := 0; i < countLoad; i++ {
		m.Set(i, i)
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		switch mixRand(i) {
		case 0:
			m.Set(i, i)
		case 1:
			m.Remove(i)
		case 2:
			_ = m.Compute(i, func(e *robinhood.Entry[int, int]) {
				if !e.Loaded() {
					e.Update(i)
				}
			})
		default:
			_, _ = m.Load(i)
		}
		if i++; i >= countLoad<<1 {
			i = 0
		}
	}
}

func BenchmarkLoadString_robinhood_Table(b *testing.B) {
	b.ReportAllocs()
	m := newTable[string](b)
	for i, k := range stringKeys {
		m.Set(k, i)
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		_, _ = m.Load(stringKeys[i])
		if i++; i >= len(stringKeys) {
			i = 0
		}
	}
}

func BenchmarkLoadString_robinhood_Table_DJB2(b *testing.B) {
	b.ReportAllocs()
	m := newTable[string](b, robinhood.WithKeyHasher(robinhood.DJB2))
	for i, k := range stringKeys {
		m.Set(k, i)
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		_, _ = m.Load(stringKeys[i])
		if i++; i >= len(stringKeys) {
			i = 0
		}
	}
}

// ------------------------------------------------------

func BenchmarkStore_builtin_map(b *testing.B) {
	b.ReportAllocs()
	m := make(map[int]int)
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		m[i] = i
		if i++; i >= countStore {
			i = 0
		}
	}
}

func BenchmarkLoad_builtin_map(b *testing.B) {
	b.ReportAllocs()
	m := make(map[int]int)
	for i := 0; i < countLoad; i++ {
		m[i] = i
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		_ = m[i]
		if i++; i >= countLoad {
			i = 0
		}
	}
}

func BenchmarkMixed_builtin_map(b *testing.B) {
	b.ReportAllocs()
	m := make(map[int]int)
	for i := 0; i < countLoad; i++ {
		m[i] = i
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		switch mixRand(i) {
		case 0:
			m[i] = i
		case 1:
			delete(m, i)
		case 2:
			if _, ok := m[i]; !ok {
				m[i] = i
			}
		default:
			_ = m[i]
		}
		if i++; i >= countLoad<<1 {
			i = 0
		}
	}
}

func BenchmarkLoadString_builtin_map(b *testing.B) {
	b.ReportAllocs()
	m := make(map[string]int)
	for i, k := range stringKeys {
		m[k] = i
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		_ = m[stringKeys[i]]
		if i++; i >= len(stringKeys) {
			i = 0
		}
	}
}

// ------------------------------------------------------

func BenchmarkStore_pb_MapOf(b *testing.B) {
	b.ReportAllocs()
	var m pb.MapOf[int, int]
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		m.Store(i, i)
		if i++; i >= countStore {
			i = 0
		}
	}
}

func BenchmarkLoad_pb_MapOf(b *testing.B) {
	b.ReportAllocs()
	var m pb.MapOf[int, int]
	for i := 0; i < countLoad; i++ {
		m.Store(i, i)
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		_, _ = m.Load(i)
		if i++; i >= countLoad {
			i = 0
		}
	}
}

func BenchmarkMixed_pb_MapOf(b *testing.B) {
	b.ReportAllocs()
	var m pb.MapOf[int, int]
	for i := 0; i < countLoad; i++ {
		m.Store(i, i)
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		switch mixRand(i) {
		case 0:
			m.Store(i, i)
		case 1:
			m.Delete(i)
		case 2:
			_, _ = m.LoadOrStore(i, i)
		default:
			_, _ = m.Load(i)
		}
		if i++; i >= countLoad<<1 {
			i = 0
		}
	}
}

// ------------------------------------------------------

func BenchmarkStore_xsync_Map(b *testing.B) {
	b.ReportAllocs()
	m := xsync.NewMap[int, int]()
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		m.Store(i, i)
		if i++; i >= countStore {
			i = 0
		}
	}
}

func BenchmarkLoad_xsync_Map(b *testing.B) {
	b.ReportAllocs()
	m := xsync.NewMap[int, int]()
	for i := 0; i < countLoad; i++ {
		m.Store(i, i)
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		_, _ = m.Load(i)
		if i++; i >= countLoad {
			i = 0
		}
	}
}

func BenchmarkMixed_xsync_Map(b *testing.B) {
	b.ReportAllocs()
	m := xsync.NewMap[int, int]()
	for i := 0; i < countLoad; i++ {
		m.Store(i, i)
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		switch mixRand(i) {
		case 0:
			m.Store(i, i)
		case 1:
			m.Delete(i)
		case 2:
			_, _ = m.LoadOrStore(i, i)
		default:
			_, _ = m.Load(i)
		}
		if i++; i >= countLoad<<1 {
			i = 0
		}
	}
}

// ------------------------------------------------------

func BenchmarkLoad_alphadose_haxmap(b *testing.B) {
	b.ReportAllocs()
	m := haxmap.New[int, int]()
	for i := 0; i < countLoad; i++ {
		m.Set(i, i)
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		_, _ = m.Get(i)
		if i++; i >= countLoad {
			i = 0
		}
	}
}

func BenchmarkLoad_zhangyunhao116_skipmap(b *testing.B) {
	b.ReportAllocs()
	m := skipmap.New[int, int]()
	for i := 0; i < countLoad; i++ {
		m.Store(i, i)
	}
	runtime.GC()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		_, _ = m.Load(i)
		if i++; i >= countLoad {
			i = 0
		}
	}
}
