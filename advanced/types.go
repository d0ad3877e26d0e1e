package advanced

type Polygon struct {
	Points []*Point
}

type PolygonList []Polygon

type Point struct {
	X float64
	Y float64
}

// Note that all points involved with the trapezoidation are pointers. This
// means they can be used as keys. We should never modify a point value from
// the original polygon, since some applications require exact equality, and we
// cannot tolerate loss of precision.
type Segment struct {
	Start *Point
	End   *Point
}

func (Segment) idxPrefix() byte { return 's' }
