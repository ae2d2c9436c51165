package synccore

import (
	"sort"
	"strconv"
	"strings"
)

// VectorClock is a mapping from device id to a non-negative logical
// counter encoding causal order. Every method here is pure: it returns a
// new VectorClock rather than mutating the receiver.
type VectorClock struct {
	counters map[string]int64
}

// EmptyVectorClock returns a clock with no entries.
func EmptyVectorClock() VectorClock {
	return VectorClock{counters: map[string]int64{}}
}

// NewVectorClockWithDevice seeds a clock with a single device at zero.
func NewVectorClockWithDevice(d DeviceId) VectorClock {
	return VectorClock{counters: map[string]int64{d.String(): 0}}
}

// VectorClockFromMap builds a clock from a caller-supplied map, failing if
// any value is negative. The input map is defensively copied.
func VectorClockFromMap(m map[string]int64) (VectorClock, error) {
	counters := make(map[string]int64, len(m))
	for k, v := range m {
		if v < 0 {
			return VectorClock{}, newValidationError("vectorClock", "counter values must be non-negative")
		}
		counters[k] = v
	}
	return VectorClock{counters: counters}, nil
}

// snapshot defensively copies the internal map for external consumption.
func (v VectorClock) snapshot() map[string]int64 {
	out := make(map[string]int64, len(v.counters))
	for k, val := range v.counters {
		out[k] = val
	}
	return out
}

// ToMap returns a defensive copy of the clock's entries.
func (v VectorClock) ToMap() map[string]int64 { return v.snapshot() }

// TimestampFor returns the counter for d, or 0 if absent.
func (v VectorClock) TimestampFor(d DeviceId) int64 {
	return v.counters[d.String()]
}

// DeviceIds returns the valid DeviceId values present in the clock's
// domain; keys that are not valid device identifiers are silently
// skipped.
func (v VectorClock) DeviceIds() []DeviceId {
	ids := make([]DeviceId, 0, len(v.counters))
	for k := range v.counters {
		id, err := NewDeviceId(k)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// IncrementFor returns a successor clock with d's counter one higher than
// in the receiver; all other entries are unchanged. If d is absent from
// the receiver, the successor's entry for d is 1.
func (v VectorClock) IncrementFor(d DeviceId) VectorClock {
	next := v.snapshot()
	next[d.String()] = next[d.String()] + 1
	return VectorClock{counters: next}
}

// domainUnion returns the union of both clocks' device-id keys.
func domainUnion(a, b VectorClock) map[string]struct{} {
	keys := make(map[string]struct{}, len(a.counters)+len(b.counters))
	for k := range a.counters {
		keys[k] = struct{}{}
	}
	for k := range b.counters {
		keys[k] = struct{}{}
	}
	return keys
}

// MergeVectorClocks returns the entrywise maximum of a and b, over the
// union of their domains. Merge is commutative and associative.
func MergeVectorClocks(a, b VectorClock) VectorClock {
	merged := make(map[string]int64, len(a.counters)+len(b.counters))
	for k := range domainUnion(a, b) {
		av := a.counters[k]
		bv := b.counters[k]
		if av > bv {
			merged[k] = av
		} else {
			merged[k] = bv
		}
	}
	return VectorClock{counters: merged}
}

// HappensAfter reports whether a strictly dominates b: every entry of a
// is >= the corresponding entry of b (missing entries treated as 0), with
// strict inequality on at least one entry.
func (v VectorClock) HappensAfter(other VectorClock) bool {
	strictlyGreater := false
	for k := range domainUnion(v, other) {
		av := v.counters[k]
		bv := other.counters[k]
		if av < bv {
			return false
		}
		if av > bv {
			strictlyGreater = true
		}
	}
	return strictlyGreater
}

// HappensBefore reports whether other strictly dominates v.
func (v VectorClock) HappensBefore(other VectorClock) bool {
	return other.HappensAfter(v)
}

// Equals reports whether v and other agree on every entry across the
// union of their domains (missing entries treated as 0).
func (v VectorClock) Equals(other VectorClock) bool {
	for k := range domainUnion(v, other) {
		if v.counters[k] != other.counters[k] {
			return false
		}
	}
	return true
}

// IsConcurrentWith reports whether neither clock dominates the other and
// they are not equal.
func (v VectorClock) IsConcurrentWith(other VectorClock) bool {
	if v.Equals(other) {
		return false
	}
	return !v.HappensAfter(other) && !other.HappensAfter(v)
}

// ToCompactString renders the clock as {d1:v1,d2:v2,...} with keys sorted
// lexicographically.
func (v VectorClock) ToCompactString() string {
	keys := make([]string, 0, len(v.counters))
	for k := range v.counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(v.counters[k], 10))
	}
	b.WriteByte('}')
	return b.String()
}

// IsEmpty reports whether the clock has no entries.
func (v VectorClock) IsEmpty() bool { return len(v.counters) == 0 }

// HasDevice reports whether d has an entry in the clock.
func (v VectorClock) HasDevice(d DeviceId) bool {
	_, ok := v.counters[d.String()]
	return ok
}

// Sum totals every counter in the clock. It is a deterministic function of
// the clock's contents (addition is commutative/associative, independent
// of map iteration order) used to derive an operation's LogicalTimestamp.
func (v VectorClock) Sum() int64 {
	var total int64
	for _, c := range v.counters {
		total += c
	}
	return total
}
