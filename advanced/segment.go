package advanced

import (
	"fmt"
	"math"

	"github.com/osuushi/trapezoid/dbg"
)

// Top returns the lexicographically higher endpoint. For horizontal segments
// this is the one with the larger X, per the rotated-coordinate convention.
func (s *Segment) Top() *Point {
	if s.Start.Above(s.End) {
		return s.Start
	}
	return s.End
}

// Bottom returns the lexicographically lower endpoint.
func (s *Segment) Bottom() *Point {
	if s.Start.Above(s.End) {
		return s.End
	}
	return s.Start
}

func (s *Segment) IsHorizontal() bool {
	return Equal(s.Start.Y, s.End.Y)
}

// PointsDown reports whether the segment's direction of travel (start to end)
// is downward. Note that a right-to-left horizontal segment "points down"
// because of the lexicographic rotation.
func (s *Segment) PointsDown() bool {
	return s.End.Below(s.Start)
}

// Cross product of the segment's upward direction with the vector from its
// bottom endpoint to p. Positive means p is left of the line through the
// segment, negative right, zero exactly on it.
func (s *Segment) cross(p *Point) float64 {
	bottom, top := s.Bottom(), s.Top()
	return (top.X-bottom.X)*(p.Y-bottom.Y) - (top.Y-bottom.Y)*(p.X-bottom.X)
}

// IsLeftOf reports whether the segment lies to the left of the point. This
// tests against the full line through the segment, not just its extent, and
// is tolerance based like Equal: a point within Epsilon of the line is
// neither left nor right. Without the tolerance, a crossing point computed by
// SolveForX at a shared vertex lands on one side or the other by float noise.
func (s *Segment) IsLeftOf(p *Point) bool {
	return s.cross(p) < -Epsilon
}

// IsRightOf reports whether the segment lies to the right of the point.
func (s *Segment) IsRightOf(p *Point) bool {
	return s.cross(p) > Epsilon
}

// OnLine reports whether the point lies within tolerance of the line through
// the segment.
func (s *Segment) OnLine(p *Point) bool {
	return math.Abs(s.cross(p)) <= Epsilon
}

// SolveForX gives the x value of the line through the segment at height y.
// Horizontal segments have no solution; callers must check IsHorizontal first.
func (s *Segment) SolveForX(y float64) float64 {
	return s.Start.X + (y-s.Start.Y)*(s.End.X-s.Start.X)/(s.End.Y-s.Start.Y)
}

func (s *Segment) String() string {
	return fmt.Sprintf("%s→%s", dbg.Name(s.Start), dbg.Name(s.End))
}
