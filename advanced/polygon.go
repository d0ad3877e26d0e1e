package advanced

// Winding rule point-in-polygon. This is provided primarily as an oracle for
// testing the Seidel structure. If you are checking many points inside the
// same large polygon, it is more efficient to trapezoidize it and query the
// resulting Trapezoidation.
func (poly Polygon) ContainsPointByEvenOdd(p *Point) bool {
	return poly.CrossingCount(p)%2 == 1
}

// Crossing count helper for even odd rule
func (poly Polygon) CrossingCount(p *Point) int {
	crossingCount := 0
	for i, vertex := range poly.Points {
		nextVertex := poly.Points[CircularIndex(i+1, len(poly.Points))]

		segment := Segment{vertex, nextVertex}
		if segment.IsRightOf(p) && vertex.Below(p) != nextVertex.Below(p) {
			crossingCount++
		}
	}
	return crossingCount
}

func (poly Polygon) Reverse() Polygon {
	newPoly := Polygon{}
	for i := len(poly.Points) - 1; i >= 0; i-- {
		newPoly.Points = append(newPoly.Points, poly.Points[i])
	}
	return newPoly
}

// SignedArea is positive for counterclockwise winding (shoelace formula).
func (poly Polygon) SignedArea() float64 {
	var sum float64
	for i, vertex := range poly.Points {
		nextVertex := poly.Points[CircularIndex(i+1, len(poly.Points))]
		sum += vertex.X*nextVertex.Y - nextVertex.X*vertex.Y
	}
	return sum / 2
}

// IsCCW reports whether the polygon winds counterclockwise. Counterclockwise
// polygons are filled; clockwise ones punch holes.
func (poly Polygon) IsCCW() bool {
	return poly.SignedArea() > 0
}
