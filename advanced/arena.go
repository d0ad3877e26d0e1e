package advanced

import "fmt"

// The trapezoid store and the query DAG reference each other in both
// directions, and query nodes are rewritten in place as the structure grows.
// Rather than juggling pointers into slices that may move, everything lives in
// append-only arenas addressed by typed integer handles. Nothing is ever
// freed during a build; an entry is "removed" when no live reference path
// leads to it anymore.

// arenaElement ties an element type to the single-letter prefix its handles
// display with.
type arenaElement interface {
	idxPrefix() byte
}

// Idx is a copyable handle into the Arena holding elements of type T. Handles
// are 1-based, so the zero Idx is the null handle; this is what makes the
// zero Trapezoid unbounded on all four sides.
type Idx[T arenaElement] int32

// None reports whether this is the null handle.
func (i Idx[T]) None() bool {
	return i == 0
}

func (i Idx[T]) String() string {
	if i == 0 {
		return "Ø"
	}
	var el T
	return fmt.Sprintf("%c%d", el.idxPrefix(), int32(i))
}

// Arena is an append-only store of T. The zero value is an empty arena.
type Arena[T arenaElement] struct {
	slots []T
}

// Alloc appends a value and returns its handle.
func (a *Arena[T]) Alloc(v T) Idx[T] {
	a.slots = append(a.slots, v)
	return Idx[T](len(a.slots))
}

// At returns a pointer to the element for in-place reads and writes. The
// pointer is only good until the next Alloc on the same arena. Passing the
// null handle or a handle from another arena is a programmer error and
// panics.
func (a *Arena[T]) At(i Idx[T]) *T {
	return &a.slots[i-1]
}

// Replace stores v at the handle's slot and returns the previous value. This
// is the primitive behind converting a leaf into a branch while keeping its
// position, so handles held by ancestors stay valid.
func (a *Arena[T]) Replace(i Idx[T], v T) T {
	old := a.slots[i-1]
	a.slots[i-1] = v
	return old
}

// Len is the number of entries ever allocated, live or not.
func (a *Arena[T]) Len() int {
	return len(a.slots)
}
