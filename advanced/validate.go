package advanced

import "math"

// Input checks for AddPolygonList. These reject the inputs for which the
// algorithm's output would be meaningless: degenerate polygons, coincident
// duplicate vertices, and crossing segments. Failures go through fatalf and
// surface as errors at the public API.

func validatePolygonList(list PolygonList) {
	seen := make(map[Point]struct{})
	var allSegments []Segment
	for polyIndex, poly := range list {
		if len(poly.Points) < 3 {
			fatalf("polygon %d has only %d points", polyIndex, len(poly.Points))
		}
		for _, p := range poly.Points {
			// Distinct *Point values at the same coordinates would break the
			// pointer-identity vertex handling, so coincident vertices are
			// rejected outright even across polygons.
			if _, ok := seen[*p]; ok {
				fatalf("duplicate vertex at (%g, %g)", p.X, p.Y)
			}
			seen[*p] = struct{}{}
		}
		for i := range poly.Points {
			next := poly.Points[CircularIndex(i+1, len(poly.Points))]
			allSegments = append(allSegments, Segment{poly.Points[i], next})
		}
	}

	for i := range allSegments {
		for j := i + 1; j < len(allSegments); j++ {
			a, b := &allSegments[i], &allSegments[j]
			if segmentsCross(a, b) {
				fatalf("segments %s and %s cross", a.String(), b.String())
			}
			if segmentsTouch(a, b) {
				fatalf("segments %s and %s touch", a.String(), b.String())
			}
		}
	}
}

// segmentsCross checks for a proper crossing: each segment's endpoints
// strictly straddle the other's line. Segments that merely share an endpoint
// (as consecutive edges do) don't count.
func segmentsCross(a, b *Segment) bool {
	return straddles(a, b) && straddles(b, a)
}

func straddles(a, b *Segment) bool {
	return (a.IsLeftOf(b.Start) && a.IsRightOf(b.End)) ||
		(a.IsRightOf(b.Start) && a.IsLeftOf(b.End))
}

// segmentsTouch catches the improper intersections the straddle test cannot
// see: a T-intersection, where one segment's endpoint lies interior to the
// other, and collinear overlap, where the segments run along the same line
// over a shared extent. Any overlap between distinct segments puts some
// endpoint interior to the other one, so both reduce to the same check.
// Segments that only share an endpoint still pass.
func segmentsTouch(a, b *Segment) bool {
	return pointInteriorToSegment(b.Start, a) || pointInteriorToSegment(b.End, a) ||
		pointInteriorToSegment(a.Start, b) || pointInteriorToSegment(a.End, b)
}

// pointInteriorToSegment reports whether p lies on the segment strictly
// between its endpoints.
func pointInteriorToSegment(p *Point, s *Segment) bool {
	if !s.OnLine(p) {
		return false
	}
	if samePoint(p, s.Start) || samePoint(p, s.End) {
		return false
	}
	return p.X > math.Min(s.Start.X, s.End.X)-Epsilon &&
		p.X < math.Max(s.Start.X, s.End.X)+Epsilon &&
		p.Y > math.Min(s.Start.Y, s.End.Y)-Epsilon &&
		p.Y < math.Max(s.Start.Y, s.End.Y)+Epsilon
}

func samePoint(a, b *Point) bool {
	return Equal(a.X, b.X) && Equal(a.Y, b.Y)
}
