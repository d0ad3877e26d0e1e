package advanced

// Node for the query structure. The query structure allows us to navigate the
// trapezoid set efficiently, and can be built in O(nlog(n)) expected time
// when segments arrive in random order.
//
// This algorithm has been chosen because it has good asymptotic performance,
// and handles holes without special casing. All you need are line segments
// and a consistent winding rule, which makes it perfect for processing meshes
// where you might just have a pile of line segments that lie on a plane.

type XDirection int

const (
	Left XDirection = iota
	Right
)

type YDirection int

const (
	Down YDirection = iota
	Up
)

// A DirectionalPoint pairs a query point with a direction of travel. The
// direction is what disambiguates lookups for points that are vertices of the
// structure: a vertex belongs to several trapezoids at once, and the
// direction says which side we are approaching from.
type DirectionalPoint struct {
	Point     *Point
	Direction *Point
}

// This is an arbitrary direction for when you don't really care (e.g. plain
// point location away from any vertex).
var DefaultDirection = &Point{X: -1, Y: -1}

// Query nodes are polymorphic, and we need to be able to replace the content
// with a different node type in O(1) time. Therefore, we use this interface
// to provide a union between the different types of query node.
type QueryNodeInner interface {
	// Child nodes is useful for iterating over a graph
	ChildNodes() []Idx[QueryNode]

	// This is a dummy method that ensures that QueryNode is not a
	// QueryNodeInner. The method is unused, but is a hint to the type system
	// that will prevent accidental double-wrapping, or otherwise using
	// QueryNode where it doesn't belong.
	queryNodeInnerTypeHint()
}

// QueryNodeInner types enumerated here with type hint
func (SinkNode) queryNodeInnerTypeHint() {}
func (YNode) queryNodeInnerTypeHint()    {}
func (XNode) queryNodeInnerTypeHint()    {}

type QueryNode struct {
	Inner QueryNodeInner
}

func (QueryNode) idxPrefix() byte { return 'q' }

func (n *QueryNode) ChildNodes() []Idx[QueryNode] {
	return n.Inner.ChildNodes()
}

// A sink is a leaf of the DAG, designating exactly one live trapezoid.
type SinkNode struct {
	Trapezoid Idx[Trapezoid]
}

func (node SinkNode) ChildNodes() []Idx[QueryNode] {
	return nil
}

// A Y node is a node which lets us navigate up or down
type YNode struct {
	Above, Below Idx[QueryNode]
	Key          *Point // Point so that we can do the lexicographic thing
}

func (node YNode) ChildNodes() []Idx[QueryNode] {
	return []Idx[QueryNode]{node.Above, node.Below}
}

// yDirection decides which child the point belongs to. For the node's own key
// point we must use the direction given; note that this only applies when
// directly comparing vertices, so pointer comparison is fine.
func (node YNode) yDirection(dp DirectionalPoint) YDirection {
	if node.Key == dp.Point {
		if Equal(dp.Direction.Y, 0) { // If horizontal, we need the lexicographic tiebreak
			if dp.Direction.X > 0 { // Slopes up from left to right
				return Up
			}
			return Down
		}
		if dp.Direction.Y > 0 {
			return Up
		}
		return Down
	}
	if dp.Point.Below(node.Key) {
		return Down
	}
	return Up
}

// An X node
type XNode struct {
	Left, Right Idx[QueryNode]
	Key         Idx[Segment]
}

func (node XNode) ChildNodes() []Idx[QueryNode] {
	return []Idx[QueryNode]{node.Left, node.Right}
}

// xDirection decides which child the point belongs to, given the node's key
// segment. If the point is an endpoint of the key, we use the direction
// vector to decide what happens. There's a subtle point here: we are not
// asking if the direction vector slopes left or right, but if it slopes
// _more_ left or right than the key segment.
func (node XNode) xDirection(seg *Segment, dp DirectionalPoint) XDirection {
	if seg.Start == dp.Point || seg.End == dp.Point {
		// Since IsLeftOf doesn't actually care about the bounds of the segment
		// (it only tests the line through them), we can just add the direction
		// vector to the point and check which side of the key it lands on.
		nudgedPoint := &Point{
			X: dp.Point.X + dp.Direction.X,
			Y: dp.Point.Y + dp.Direction.Y,
		}
		if seg.IsLeftOf(nudgedPoint) {
			return Right
		}
		// Note that there is no middle here; that would imply overlapping line
		// segments.
		return Left
	}
	if seg.IsLeftOf(dp.Point) {
		return Right
	}
	return Left
}
