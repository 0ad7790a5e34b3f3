package models

// CounterKind discriminates the two identifier counters.
type CounterKind uint8

const (
	CounterPosts CounterKind = iota
	CounterComments
)

// Counter is a singleton identifier counter.
//
// Invariants:
//   - Count is monotonically non-decreasing
//   - an id observed by a committed record is never issued again, even across
//     deletions (deletes are soft and never release ids)
//
// Counters hold no lock of their own; the store's unit of work serializes
// concurrent allocations against the same counter.
type Counter struct {
	Kind  CounterKind
	Count uint64
}

// Allocate returns the next identifier and advances the counter. The caller
// must persist the counter in the same unit of work that creates the owning
// record; a failed unit discards the increment.
func (c *Counter) Allocate() uint64 {
	c.Count++
	return c.Count
}
