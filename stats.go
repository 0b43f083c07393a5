package robinhood

import (
	"fmt"
	"strings"
)

// TableStats is Table statistics.
//
// Notes:
//   - table statistics are intended to be used for diagnostic
//     purposes, not for production code. Fields may be added
//     between minor releases.
type TableStats struct {
	// Size is the number of entries stored in the table.
	Size int
	// Capacity is the number of slots.
	Capacity int
	// EmptySlots is the number of slots that hold no entry.
	EmptySlots int
	// LoadFactor is Size/Capacity.
	LoadFactor float64
	// MaxPSL is the longest distance of any entry from its ideal bucket.
	MaxPSL int
	// MeanPSL is the average distance of the entries from their ideal
	// buckets. A successful lookup probes MeanPSL+1 slots on average.
	MeanPSL float64
	// TotalGrowths is the number of times the slot array was replaced
	// by a larger one.
	TotalGrowths uint32
}

// String returns string representation of table stats.
func (s *TableStats) String() string {
	var sb strings.Builder
	sb.WriteString("TableStats{\n")
	sb.WriteString(fmt.Sprintf("Size:         %d\n", s.Size))
	sb.WriteString(fmt.Sprintf("Capacity:     %d\n", s.Capacity))
	sb.WriteString(fmt.Sprintf("EmptySlots:   %d\n", s.EmptySlots))
	sb.WriteString(fmt.Sprintf("LoadFactor:   %.4f\n", s.LoadFactor))
	sb.WriteString(fmt.Sprintf("MaxPSL:       %d\n", s.MaxPSL))
	sb.WriteString(fmt.Sprintf("MeanPSL:      %.4f\n", s.MeanPSL))
	sb.WriteString(fmt.Sprintf("TotalGrowths: %d\n", s.TotalGrowths))
	sb.WriteString("}\n")
	return sb.String()
}

// Stats returns statistics for the table. It is an O(capacity)
// operation, so it should be used only for diagnostics or tuning.
func (t *Table[K, V]) Stats() *TableStats {
	stats := &TableStats{
		Capacity:     len(t.slots),
		LoadFactor:   t.LoadFactor(),
		TotalGrowths: t.growths,
	}
	var total int
	for i := range t.slots {
		s := &t.slots[i]
		if s.isEmpty() {
			stats.EmptySlots++
			continue
		}
		stats.Size++
		psl := int(s.psl)
		total += psl
		stats.MaxPSL = max(stats.MaxPSL, psl)
	}
	if stats.Size > 0 {
		stats.MeanPSL = float64(total) / float64(stats.Size)
	}
	return stats
}

// verify checks the probe invariant over the whole slot array: every
// entry sits psl steps past its ideal bucket, every slot on the way there
// is occupied by an entry at least as far from home, and the cached hash
// still matches the key. It also checks the size counter and that no key
// is stored twice.
func (t *Table[K, V]) verify() error {
	n := len(t.slots)
	if n < 1 {
		return fmt.Errorf("robinhood: empty slot array")
	}
	count := 0
	for p := range t.slots {
		s := &t.slots[p]
		if s.isEmpty() {
			continue
		}
		count++
		if h := t.hash(s.key); h != s.hash {
			return fmt.Errorf("robinhood: slot %d: cached hash %#x, key hashes to %#x", p, s.hash, h)
		}
		home := t.ideal(s.hash)
		if dist := (p - home + n) % n; dist != int(s.psl) {
			return fmt.Errorf("robinhood: slot %d: psl %d, distance from ideal %d is %d",
				p, s.psl, home, dist)
		}
		for step := 0; step < int(s.psl); step++ {
			q := &t.slots[(home+step)%n]
			if q.isEmpty() {
				return fmt.Errorf("robinhood: slot %d: probe path broken by empty slot %d",
					p, (home+step)%n)
			}
			if int(q.psl) < step {
				return fmt.Errorf("robinhood: slot %d: slot %d on its probe path has psl %d < %d",
					p, (home+step)%n, q.psl, step)
			}
		}
		if i := t.find(s.key, s.hash); i != p {
			return fmt.Errorf("robinhood: slot %d: key found at %d", p, i)
		}
	}
	if count != t.size {
		return fmt.Errorf("robinhood: %d occupied slots, size is %d", count, t.size)
	}
	return nil
}
