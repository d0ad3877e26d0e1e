package advanced

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
)

// A trapezoid is a maximal region of the plane bounded by at most two
// segments (left and right) and at most two nexus heights (top and bottom).
// Null handles mean the trapezoid extends to infinity in that direction, so
// the zero Trapezoid is the whole plane.
type Trapezoid struct {
	Left, Right Idx[Segment]
	Top, Bottom Idx[Nexus]
	// Neighbor links let segment insertion walk the partition from one
	// trapezoid to the next without re-querying the DAG at every step.
	TrapezoidsAbove, TrapezoidsBelow TrapezoidNeighborList
	// The DAG leaf that currently designates this trapezoid. For every live
	// trapezoid, the leaf at Sink points back at it.
	Sink Idx[QueryNode]
}

func (Trapezoid) idxPrefix() byte { return 't' }

// Trapezoids can have up to two neighbors above and below them in the stable
// state, but while splitting, they can have up to three. This should never be
// the case after splitting is complete.
type TrapezoidNeighborList [3]Idx[Trapezoid]

// SplitVertical cuts the trapezoid with a segment assumed to pass fully
// through it. The receiver keeps its arena slot and becomes the left piece;
// the right piece is returned by value for the caller to allocate. Neighbor
// links are not redistributed here; the insertion algorithm owns that.
func (t *Trapezoid) SplitVertical(newLeftSink, newRightSink Idx[QueryNode], si Idx[Segment]) Trapezoid {
	right := Trapezoid{
		Left:   si,
		Right:  t.Right,
		Top:    t.Top,
		Bottom: t.Bottom,
		Sink:   newRightSink,
	}
	t.Right = si
	t.Sink = newLeftSink
	return right
}

// SplitHorizontal cuts the trapezoid at a nexus height assumed to lie between
// its top and bottom. The receiver becomes the bottom piece; the top piece is
// returned by value. As with SplitVertical, the caller distributes neighbors.
func (t *Trapezoid) SplitHorizontal(newBottomSink, newTopSink Idx[QueryNode], ni Idx[Nexus]) Trapezoid {
	top := Trapezoid{
		Left:   t.Left,
		Right:  t.Right,
		Top:    t.Top,
		Bottom: ni,
		Sink:   newTopSink,
	}
	t.Top = ni
	t.Sink = newBottomSink
	return top
}

// CanMergeWith reports whether two trapezoids share both side bounds, which
// is what allows stacked pieces to coalesce after a segment insertion.
func (t *Trapezoid) CanMergeWith(other *Trapezoid) bool {
	return t.Left == other.Left && t.Right == other.Right
}

func (tl *TrapezoidNeighborList) String() string {
	var parts []string
	for _, neighbor := range *tl {
		if !neighbor.None() {
			parts = append(parts, neighbor.String())
		}
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

// Append a trapezoid to the list, if it isn't already there
func (tl *TrapezoidNeighborList) Add(ti Idx[Trapezoid]) {
	for i, neighbor := range *tl {
		if neighbor == ti {
			return
		}
		if neighbor.None() {
			(*tl)[i] = ti
			return
		}
	}
	panic("too many neighbors")
}

func (tl *TrapezoidNeighborList) Remove(ti Idx[Trapezoid]) {
	for i, neighbor := range *tl {
		if neighbor == ti {
			(*tl)[i] = 0
			return
		}
	}
}

// Replace a trapezoid with another, or append it if the original isn't there
func (tl *TrapezoidNeighborList) ReplaceOrAdd(orig, replacement Idx[Trapezoid]) {
	for i, neighbor := range *tl {
		if neighbor == orig {
			(*tl)[i] = replacement
			return
		}
	}
	// We didn't replace, so we must add
	tl.Add(replacement)
}

// Any returns the first non-null neighbor, or the null handle.
func (tl *TrapezoidNeighborList) Any() Idx[Trapezoid] {
	for _, neighbor := range *tl {
		if !neighbor.None() {
			return neighbor
		}
	}
	return 0
}

// TrapezoidString renders one trapezoid with its bounds and neighbors for
// debugging.
func (tr *Trapezoidation) TrapezoidString(ti Idx[Trapezoid]) string {
	t := tr.Trapezoids.At(ti)
	return fmt.Sprintf("Trapezoid %s { ⬆ %s, ⬇ %s } <L: %s, R: %s, T: %s, B: %s>",
		tr.trapezoidName(ti),
		t.TrapezoidsAbove.String(),
		t.TrapezoidsBelow.String(),
		t.Left.String(),
		t.Right.String(),
		t.Top.String(),
		t.Bottom.String(),
	)
}

// trapezoidName colors the handle by the trapezoid's shape: cyan when it is
// infinite in some direction, red when it has zero height, green otherwise.
func (tr *Trapezoidation) trapezoidName(ti Idx[Trapezoid]) string {
	t := tr.Trapezoids.At(ti)
	name := ti.String()
	if t.Top.None() || t.Bottom.None() || t.Left.None() || t.Right.None() {
		return aurora.Cyan(name).String()
	}
	top := tr.Nexuses.At(t.Top).Point
	bottom := tr.Nexuses.At(t.Bottom).Point
	if Equal(top.Y, bottom.Y) {
		return aurora.Red(name).String()
	}
	return aurora.Green(name).String()
}
