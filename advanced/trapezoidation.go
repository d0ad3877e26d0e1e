package advanced

import (
	"math/rand"
	"time"
)

// This implements the data structures for Seidel 1991 for trapezoidizing a
// non-monotone polygon set. It uses the same lexicographic convention as
// elsewhere which avoids equal y values by lexicographic rotation.
//
// A Trapezoidation under construction belongs to a single goroutine. Once all
// segments are in, it never mutates again, and any number of goroutines may
// run point location against it concurrently.

type Trapezoidation struct {
	Segments   Arena[Segment]
	Nexuses    Arena[Nexus]
	Trapezoids Arena[Trapezoid]
	Nodes      Arena[QueryNode]
	Root       Idx[QueryNode]
}

// NewTrapezoidation creates the "whole plane, no segments yet" state: one
// trapezoid unbounded on all four sides, and a root leaf designating it.
func NewTrapezoidation() *Trapezoidation {
	tr := &Trapezoidation{}
	ti := tr.Trapezoids.Alloc(Trapezoid{})
	qi := tr.Nodes.Alloc(QueryNode{SinkNode{Trapezoid: ti}})
	tr.Trapezoids.At(ti).Sink = qi
	tr.Root = qi
	return tr
}

// newSink mints a fresh leaf designating the given trapezoid.
func (tr *Trapezoidation) newSink(ti Idx[Trapezoid]) Idx[QueryNode] {
	return tr.Nodes.Alloc(QueryNode{SinkNode{Trapezoid: ti}})
}

// branchY converts the leaf at qi into a YNode in place. The previous leaf
// payload moves into the fresh Below slot, and a fresh leaf for tiAbove fills
// the Above slot. Because qi keeps its arena slot, every ancestor that
// references it stays valid.
func (tr *Trapezoidation) branchY(qi Idx[QueryNode], key *Point, tiAbove Idx[Trapezoid]) (below, above Idx[QueryNode]) {
	below = tr.Nodes.Alloc(QueryNode{})
	above = tr.newSink(tiAbove)
	old := tr.Nodes.Replace(qi, QueryNode{YNode{Key: key, Below: below, Above: above}})
	*tr.Nodes.At(below) = old
	return below, above
}

// branchX is the X-test version of branchY: the previous payload of qi moves
// left, and a fresh leaf for tiRight fills the right slot.
func (tr *Trapezoidation) branchX(qi Idx[QueryNode], si Idx[Segment], tiRight Idx[Trapezoid]) (left, right Idx[QueryNode]) {
	left = tr.Nodes.Alloc(QueryNode{})
	right = tr.newSink(tiRight)
	old := tr.Nodes.Replace(qi, QueryNode{XNode{Key: si, Left: left, Right: right}})
	*tr.Nodes.At(left) = old
	return left, right
}

// mergeX converts the node at qi into an XNode over two children that both
// already exist, without minting a leaf. This is how the former leaves of
// merged trapezoids are re-pointed at the single surviving leaf.
func (tr *Trapezoidation) mergeX(qi Idx[QueryNode], si Idx[Segment], left, right Idx[QueryNode]) {
	tr.Nodes.Replace(qi, QueryNode{XNode{Key: si, Left: left, Right: right}})
}

// FindPoint walks the DAG from the root to the leaf whose trapezoid contains
// the directional point.
func (tr *Trapezoidation) FindPoint(dp DirectionalPoint) Idx[QueryNode] {
	qi := tr.Root
	for {
		switch node := tr.Nodes.At(qi).Inner.(type) {
		case SinkNode:
			return qi
		case YNode:
			if node.yDirection(dp) == Up {
				qi = node.Above
			} else {
				qi = node.Below
			}
		case XNode:
			if node.xDirection(tr.Segments.At(node.Key), dp) == Right {
				qi = node.Right
			} else {
				qi = node.Left
			}
		default:
			fatalf("unknown query node type at %v", qi)
		}
	}
}

// Locate returns the handle of the live trapezoid containing the point. The
// result is stable until the next insertion. Points exactly on a segment
// resolve by the fixed side conventions in Segment.IsLeftOf and Point.Below.
func (tr *Trapezoidation) Locate(p *Point) Idx[Trapezoid] {
	qi := tr.FindPoint(DirectionalPoint{Point: p, Direction: DefaultDirection})
	return tr.Nodes.At(qi).Inner.(SinkNode).Trapezoid
}

// Fast test for point-in-polygon using the trapezoid partition. Output is not
// defined for points exactly on an edge.
func (tr *Trapezoidation) ContainsPoint(p *Point) bool {
	return tr.IsInside(tr.Locate(p))
}

// IsInside reports whether a trapezoid is interior to the polygon set. A
// trapezoid is inside iff it has both a left and a right segment, and the
// left segment points down. For any valid polygon this implies the right side
// points up.
func (tr *Trapezoidation) IsInside(ti Idx[Trapezoid]) bool {
	t := tr.Trapezoids.At(ti)
	return !t.Left.None() && !t.Right.None() && tr.Segments.At(t.Left).PointsDown()
}

// hasPoint checks if the point is any of the (up to) six points involved with
// the trapezoid. If it is, then it's already a vertex of the partition.
func (tr *Trapezoidation) hasPoint(ti Idx[Trapezoid], p *Point) bool {
	t := tr.Trapezoids.At(ti)
	if !t.Top.None() && tr.Nexuses.At(t.Top).Point == p {
		return true
	}
	if !t.Bottom.None() && tr.Nexuses.At(t.Bottom).Point == p {
		return true
	}
	if !t.Left.None() {
		s := tr.Segments.At(t.Left)
		if s.Start == p || s.End == p {
			return true
		}
	}
	if !t.Right.None() {
		s := tr.Segments.At(t.Right)
		if s.Start == p || s.End == p {
			return true
		}
	}
	return false
}

// isDegenerateOnSide checks if the trapezoid has a degenerate side (is it a
// triangle). If either side is unbounded, it's never degenerate. Otherwise,
// this holds when the side bounds meet at that boundary's own vertex. The
// vertex check matters: two bounds can share an endpoint several boundaries
// away and have diverged by this one, which leaves the trapezoid with real
// width here.
func (tr *Trapezoidation) isDegenerateOnSide(ti Idx[Trapezoid], side YDirection) bool {
	t := tr.Trapezoids.At(ti)
	if t.Left.None() || t.Right.None() {
		return false
	}
	left, right := tr.Segments.At(t.Left), tr.Segments.At(t.Right)
	switch side {
	case Up:
		return left.Top() == right.Top() && !t.Top.None() &&
			tr.Nexuses.At(t.Top).Point == left.Top()
	case Down:
		return left.Bottom() == right.Bottom() && !t.Bottom.None() &&
			tr.Nexuses.At(t.Bottom).Point == left.Bottom()
	}
	panic("invalid side")
}

// bottomIntersectsSegment checks if a segment crosses the bottom boundary of
// the trapezoid strictly between its bounds. If the segment is horizontal,
// this always returns false: the only way a horizontal segment could cross a
// bottom boundary would be if input segments crossed, which is assumed never
// to be the case.
func (tr *Trapezoidation) bottomIntersectsSegment(ti Idx[Trapezoid], si Idx[Segment]) bool {
	seg := tr.Segments.At(si)
	if seg.IsHorizontal() {
		return false
	}
	t := tr.Trapezoids.At(ti)
	if t.Bottom.None() { // Bottom is at infinity, nothing can intersect it
		return false
	}
	y := tr.Nexuses.At(t.Bottom).Point.Y
	crossing := &Point{X: seg.SolveForX(y), Y: y}
	if !t.Left.None() {
		side, ok := tr.boundSideOfCrossing(t.Left, t.Bottom, crossing)
		if !ok || side != Left {
			return false
		}
	}
	if !t.Right.None() {
		side, ok := tr.boundSideOfCrossing(t.Right, t.Bottom, crossing)
		if !ok || side != Right {
			return false
		}
	}
	return true
}

// boundSideOfCrossing locates a trapezoid bound relative to the point where
// an inserted segment crosses a horizontal boundary. The second result is
// false when the bound has no usable side: it runs through the crossing point
// itself, so there is at most point contact across the boundary. A horizontal
// bound lies along the boundary's height entirely, which makes the cross
// product useless there; its endpoint at the boundary vertex decides instead,
// since that is where the bound sits as it passes through the zero-height
// band it bounds.
//
// Note that a piece bounded by the inserted segment itself always lands in
// the no-usable-side case: the crossing lies on the segment by construction,
// and the segment does not end at an interior boundary. That keeps the pieces
// on one side of a segment from ever being linked to trapezoids on the other
// side, no matter how the floating-point noise falls.
func (tr *Trapezoidation) boundSideOfCrossing(bi Idx[Segment], ni Idx[Nexus], crossing *Point) (XDirection, bool) {
	b := tr.Segments.At(bi)
	if b.IsLeftOf(crossing) {
		return Left, true
	}
	if b.IsRightOf(crossing) {
		return Right, true
	}
	if ni.None() {
		return Left, false
	}
	w := tr.Nexuses.At(ni).Point
	var pos *Point
	switch {
	case b.Top() == w:
		pos = b.Top()
	case b.Bottom() == w:
		pos = b.Bottom()
	default:
		return Left, false
	}
	if pos.X < crossing.X-Epsilon {
		return Left, true
	}
	if pos.X > crossing.X+Epsilon {
		return Right, true
	}
	return Left, false
}

// boundaryCrossing gives the point where the segment meets the horizontal
// boundary at the given nexus. This is the point that decides which split
// piece a neighbor beyond that boundary attaches to. Horizontal segments and
// unbounded boundaries fall back to the segment's own endpoint.
func (tr *Trapezoidation) boundaryCrossing(seg *Segment, ni Idx[Nexus], top bool) *Point {
	if ni.None() || seg.IsHorizontal() {
		if top {
			return seg.Top()
		}
		return seg.Bottom()
	}
	y := tr.Nexuses.At(ni).Point.Y
	return &Point{X: seg.SolveForX(y), Y: y}
}

// SplitTrapezoidHorizontally cuts the trapezoid under the leaf qi at the
// point's height, converting the leaf into a YNode in place. The original
// trapezoid keeps its handle and becomes the lower piece. qi must be a leaf.
func (tr *Trapezoidation) SplitTrapezoidHorizontally(qi Idx[QueryNode], p *Point) {
	sink, ok := tr.Nodes.At(qi).Inner.(SinkNode)
	if !ok {
		fatalf("horizontal split at a non-leaf node %v", qi)
	}
	ti := sink.Trapezoid
	t := tr.Trapezoids.At(ti)
	if !t.Top.None() && tr.Nexuses.At(t.Top).Point.Below(p) {
		fatalf("cannot split on point above top of %v", ti)
	}
	if !t.Bottom.None() && tr.Nexuses.At(t.Bottom).Point.Above(p) {
		fatalf("cannot split on point below bottom of %v", ti)
	}

	ni := tr.Nexuses.Alloc(Nexus{Point: p})
	oldAbove := t.TrapezoidsAbove

	// Reserve the upper piece's slot first so the new leaf can reference it.
	tiUp := tr.Trapezoids.Alloc(Trapezoid{})
	below, above := tr.branchY(qi, p, tiUp)
	t = tr.Trapezoids.At(ti)
	*tr.Trapezoids.At(tiUp) = t.SplitHorizontal(below, above, ni)

	// The lower piece retains the lower neighbors and the upper piece the
	// upper ones; the pieces themselves become each other's only vertical
	// neighbor.
	t.TrapezoidsAbove = TrapezoidNeighborList{tiUp}
	up := tr.Trapezoids.At(tiUp)
	up.TrapezoidsAbove = oldAbove
	up.TrapezoidsBelow = TrapezoidNeighborList{ti}
	for _, nIdx := range oldAbove {
		if !nIdx.None() {
			tr.Trapezoids.At(nIdx).TrapezoidsBelow.ReplaceOrAdd(ti, tiUp)
		}
	}
}

// splitBySegment splits the trapezoid vertically with a segment assumed to
// pass fully through it, returning the handle of the new right piece (the
// receiver's handle becomes the left piece). Both pieces keep pointing at the
// original trapezoid's sink; the merge step fixes the sinks once it knows
// which pieces survive.
func (tr *Trapezoidation) splitBySegment(ti Idx[Trapezoid], si Idx[Segment]) Idx[Trapezoid] {
	seg := *tr.Segments.At(si)

	t := tr.Trapezoids.At(ti)
	oldAbove := t.TrapezoidsAbove
	oldBelow := t.TrapezoidsBelow
	oldSink := t.Sink
	topNexus, bottomNexus := t.Top, t.Bottom
	pTop := tr.boundaryCrossing(&seg, topNexus, true)
	pBottom := tr.boundaryCrossing(&seg, bottomNexus, false)

	rightPiece := t.SplitVertical(oldSink, oldSink, si)
	t.TrapezoidsAbove = TrapezoidNeighborList{}
	t.TrapezoidsBelow = TrapezoidNeighborList{}
	tiRight := tr.Trapezoids.Alloc(rightPiece)
	tiLeft := ti

	// Distribute the old neighbors between the pieces, by which side of the
	// segment's boundary crossing they overlap. A neighbor whose bound runs
	// through the crossing only touches the far piece at a point and is not
	// attached; in particular that covers the pieces of the previous split in
	// this chain, whose bound is the inserted segment itself.
	for _, nIdx := range oldAbove {
		if nIdx.None() {
			continue
		}
		tr.Trapezoids.At(nIdx).TrapezoidsBelow.Remove(ti)
		if !tr.isDegenerateOnSide(tiLeft, Up) {
			// The neighbor overlaps the left piece when its left edge is left
			// of the crossing. (left edge at infinity is left of everything)
			nb := tr.Trapezoids.At(nIdx)
			attach := nb.Left.None()
			if !attach {
				side, ok := tr.boundSideOfCrossing(nb.Left, topNexus, pTop)
				attach = ok && side == Left
			}
			if attach {
				tr.Trapezoids.At(tiLeft).TrapezoidsAbove.Add(nIdx)
				nb.TrapezoidsBelow.Add(tiLeft)
			}
		}
		if !tr.isDegenerateOnSide(tiRight, Up) {
			// Likewise, the neighbor overlaps the right piece when its right
			// edge is right of the crossing.
			nb := tr.Trapezoids.At(nIdx)
			attach := nb.Right.None()
			if !attach {
				side, ok := tr.boundSideOfCrossing(nb.Right, topNexus, pTop)
				attach = ok && side == Right
			}
			if attach {
				tr.Trapezoids.At(tiRight).TrapezoidsAbove.Add(nIdx)
				nb.TrapezoidsBelow.Add(tiRight)
			}
		}
	}

	for _, nIdx := range oldBelow {
		if nIdx.None() {
			continue
		}
		tr.Trapezoids.At(nIdx).TrapezoidsAbove.Remove(ti)
		if !tr.isDegenerateOnSide(tiLeft, Down) {
			nb := tr.Trapezoids.At(nIdx)
			attach := nb.Left.None()
			if !attach {
				side, ok := tr.boundSideOfCrossing(nb.Left, bottomNexus, pBottom)
				attach = ok && side == Left
			}
			if attach {
				tr.Trapezoids.At(tiLeft).TrapezoidsBelow.Add(nIdx)
				nb.TrapezoidsAbove.Add(tiLeft)
			}
		}
		if !tr.isDegenerateOnSide(tiRight, Down) {
			nb := tr.Trapezoids.At(nIdx)
			attach := nb.Right.None()
			if !attach {
				side, ok := tr.boundSideOfCrossing(nb.Right, bottomNexus, pBottom)
				attach = ok && side == Right
			}
			if attach {
				tr.Trapezoids.At(tiRight).TrapezoidsBelow.Add(nIdx)
				nb.TrapezoidsAbove.Add(tiRight)
			}
		}
	}

	return tiRight
}

// mergeChain coalesces consecutive pieces (ordered bottom to top) that share
// both side bounds. The bottom piece of each run survives and absorbs the
// run's extent and upper neighbors; every surviving trapezoid gets a fresh
// sink. Returns, per input position, the sink of the trapezoid that now
// covers it.
func (tr *Trapezoidation) mergeChain(pieces []Idx[Trapezoid]) []Idx[QueryNode] {
	sinks := make([]Idx[QueryNode], len(pieces))
	for start := 0; start < len(pieces); {
		end := start + 1
		for end < len(pieces) && tr.Trapezoids.At(pieces[start]).CanMergeWith(tr.Trapezoids.At(pieces[end])) {
			end++
		}
		survivor := pieces[start]
		if end > start+1 {
			tiTop := pieces[end-1]
			topPiece := *tr.Trapezoids.At(tiTop)
			s := tr.Trapezoids.At(survivor)
			s.Top = topPiece.Top
			s.TrapezoidsAbove = topPiece.TrapezoidsAbove
			// Make the upper neighbors agree; the lower neighbors already
			// reference the survivor.
			for _, nIdx := range topPiece.TrapezoidsAbove {
				if !nIdx.None() {
					tr.Trapezoids.At(nIdx).TrapezoidsBelow.ReplaceOrAdd(tiTop, survivor)
				}
			}
		}
		sink := tr.newSink(survivor)
		tr.Trapezoids.At(survivor).Sink = sink
		for k := start; k < end; k++ {
			sinks[k] = sink
		}
		start = end
	}
	return sinks
}

// AddSegment folds one segment into the partition: cut at its endpoints,
// split every trapezoid it crosses, then merge stacked pieces whose bounds
// agree. The segment must not cross any segment already inserted.
func (tr *Trapezoidation) AddSegment(si Idx[Segment]) {
	seg := *tr.Segments.At(si)
	top, bottom := seg.Top(), seg.Bottom()
	// Directions of travel along the segment, for vertex tie-breaks during
	// location.
	downhill := &Point{X: bottom.X - top.X, Y: bottom.Y - top.Y}
	uphill := &Point{X: -downhill.X, Y: -downhill.Y}

	// Cut at the top endpoint, unless it is already a vertex of the
	// partition, in which case no horizontal split is needed.
	qi := tr.FindPoint(DirectionalPoint{Point: top, Direction: downhill})
	if !tr.hasPoint(tr.Nodes.At(qi).Inner.(SinkNode).Trapezoid, top) {
		tr.SplitTrapezoidHorizontally(qi, top)
	}

	// Same for the bottom endpoint, approached from below.
	qi = tr.FindPoint(DirectionalPoint{Point: bottom, Direction: uphill})
	cur := tr.Nodes.At(qi).Inner.(SinkNode).Trapezoid
	if !tr.hasPoint(cur, bottom) {
		tr.SplitTrapezoidHorizontally(qi, bottom)
		// We now want the upper of the two pieces, since the segment crosses
		// that one.
		cur = tr.Nodes.At(tr.Nodes.At(qi).Inner.(YNode).Above).Inner.(SinkNode).Trapezoid
	}

	// Walk bottom to top through the trapezoids the segment crosses, splitting
	// each. At this point `bottom` sits exactly on the bottom of the first
	// trapezoid and `top` on the top of the last.
	var leftPieces, rightPieces []Idx[Trapezoid]
	for {
		t := tr.Trapezoids.At(cur)
		topReached := !t.Top.None() && tr.Nexuses.At(t.Top).Point == top
		above := t.TrapezoidsAbove // snapshot; the split redistributes it
		tiRight := tr.splitBySegment(cur, si)
		leftPieces = append(leftPieces, cur)
		rightPieces = append(rightPieces, tiRight)
		if topReached {
			break
		}
		// The next trapezoid is the neighbor above whose bottom boundary the
		// segment crosses.
		next := Idx[Trapezoid](0)
		for _, nIdx := range above {
			if !nIdx.None() && tr.bottomIntersectsSegment(nIdx, si) {
				next = nIdx
				break
			}
		}
		if next.None() {
			fatalf("segment %v escaped the partition mid-insertion", si)
		}
		cur = next
	}

	if len(leftPieces) == 1 {
		// Single trapezoid crossed: no merging can happen. The old leaf
		// becomes an X branch in place; its payload moves to the left child,
		// which is exactly the left piece's sink.
		tiLeft, tiRight := leftPieces[0], rightPieces[0]
		qiOld := tr.Trapezoids.At(tiLeft).Sink
		left, right := tr.branchX(qiOld, si, tiRight)
		tr.Trapezoids.At(tiLeft).Sink = left
		tr.Trapezoids.At(tiRight).Sink = right
		return
	}

	// The left and right chains merge independently: all left pieces have the
	// segment as their right bound and vice versa. Afterward, every former
	// leaf along the path becomes an X branch over the two surviving sinks
	// that cover its position.
	oldSinks := make([]Idx[QueryNode], len(leftPieces))
	for k, ti := range leftPieces {
		oldSinks[k] = tr.Trapezoids.At(ti).Sink
	}
	leftSinks := tr.mergeChain(leftPieces)
	rightSinks := tr.mergeChain(rightPieces)
	for k, qiOld := range oldSinks {
		tr.mergeX(qiOld, si, leftSinks[k], rightSinks[k])
	}
}

// InsertSegment allocates a segment and folds it in, returning its handle.
func (tr *Trapezoidation) InsertSegment(seg Segment) Idx[Segment] {
	si := tr.Segments.Alloc(seg)
	tr.AddSegment(si)
	return si
}

// Add a polygon to the partition. If the polygon winds clockwise, this will
// end up producing a hole. Otherwise, it will be filled.
func (tr *Trapezoidation) AddPolygon(poly Polygon, nondeterministic ...bool) {
	tr.AddPolygonList(PolygonList{poly}, nondeterministic...)
}

// AddPolygonList validates and adds a whole set of polygons at once. The
// polygons must be simple, must not intersect each other or any existing
// segment, and must not repeat coincident vertices.
//
// By default, this process is pseudorandom, but deterministic. This is
// because predictable results are easier to debug. However, this raises the
// potential for adversarial inputs. If you are using untrusted input, you
// should pass "true" for proper randomization.
func (tr *Trapezoidation) AddPolygonList(list PolygonList, nondeterministic ...bool) {
	validatePolygonList(list)

	var seed int64
	if len(nondeterministic) > 0 && nondeterministic[0] {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	// Create the segments
	var segments []Idx[Segment]
	for _, poly := range list {
		for i := range poly.Points {
			next := poly.Points[CircularIndex(i+1, len(poly.Points))]
			segments = append(segments, tr.Segments.Alloc(Segment{poly.Points[i], next}))
		}
	}

	// Shuffle the segments. This is what gives us expected O(nlogn) time
	r.Shuffle(len(segments), func(i, j int) {
		segments[i], segments[j] = segments[j], segments[i]
	})

	for _, si := range segments {
		tr.AddSegment(si)
	}
}

// A graph iterator lets you loop over the live nodes of the DAG exactly once.
// Traversal order is not defined. Behavior is also undefined if you modify
// the structure during iteration.
type GraphIterator struct {
	tr    *Trapezoidation
	stack []Idx[QueryNode]
	seen  map[Idx[QueryNode]]struct{}
}

func (tr *Trapezoidation) NewGraphIterator() *GraphIterator {
	return &GraphIterator{tr, []Idx[QueryNode]{tr.Root}, map[Idx[QueryNode]]struct{}{}}
}

// Next returns the next reachable node handle, or the null handle when done.
func (iter *GraphIterator) Next() Idx[QueryNode] {
	if len(iter.stack) == 0 {
		return 0
	}
	qi := iter.stack[len(iter.stack)-1]
	iter.stack = iter.stack[:len(iter.stack)-1]
	// Skip if we've seen the node before
	if _, ok := iter.seen[qi]; ok {
		return iter.Next()
	}
	iter.seen[qi] = struct{}{}

	// Push the children onto the stack
	iter.stack = append(iter.stack, iter.tr.Nodes.At(qi).ChildNodes()...)

	return qi
}

// LiveTrapezoids collects the handles of every trapezoid still reachable from
// the root, i.e. the current partition of the plane.
func (tr *Trapezoidation) LiveTrapezoids() []Idx[Trapezoid] {
	var result []Idx[Trapezoid]
	iter := tr.NewGraphIterator()
	for qi := iter.Next(); !qi.None(); qi = iter.Next() {
		if sink, ok := tr.Nodes.At(qi).Inner.(SinkNode); ok {
			result = append(result, sink.Trapezoid)
		}
	}
	return result
}
