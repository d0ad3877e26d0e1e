package advanced

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrapezoidation(t *testing.T) {
	tr := NewTrapezoidation()
	require.IsType(t, SinkNode{}, tr.Nodes.At(tr.Root).Inner)

	live := tr.LiveTrapezoids()
	require.Len(t, live, 1)
	plane := tr.Trapezoids.At(live[0])
	assert.True(t, plane.Left.None())
	assert.True(t, plane.Right.None())
	assert.True(t, plane.Top.None())
	assert.True(t, plane.Bottom.None())
	assert.False(t, tr.IsInside(live[0]))

	// Everything is in the one trapezoid
	assert.Equal(t, live[0], tr.Locate(&Point{0, 0}))
	assert.Equal(t, live[0], tr.Locate(&Point{-1e9, 1e9}))

	validateNeighborGraph(t, tr)
	validateBijection(t, tr)
}

func TestSplitTrapezoidHorizontally(t *testing.T) {
	tr := NewTrapezoidation()
	p := &Point{7, 5}
	tr.SplitTrapezoidHorizontally(tr.FindPoint(DirectionalPoint{p, DefaultDirection}), p)
	validateNeighborGraph(t, tr)
	validateBijection(t, tr)
	require.Len(t, tr.LiveTrapezoids(), 2)

	above := tr.Locate(&Point{0, 100})
	below := tr.Locate(&Point{0, -100})
	assert.NotEqual(t, above, below)
	assert.Equal(t, Idx[Nexus](1), tr.Trapezoids.At(below).Top)
	assert.Equal(t, Idx[Nexus](1), tr.Trapezoids.At(above).Bottom)

	p2 := &Point{8, 2}
	tr.SplitTrapezoidHorizontally(tr.FindPoint(DirectionalPoint{p2, DefaultDirection}), p2)
	validateNeighborGraph(t, tr)
	validateBijection(t, tr)
	assert.Len(t, tr.LiveTrapezoids(), 3)
}

func TestAddSingleVerticalSegment(t *testing.T) {
	tr := NewTrapezoidation()
	bottom := &Point{0, 0}
	top := &Point{0, 10}
	si := tr.InsertSegment(Segment{Start: bottom, End: top})

	validateNeighborGraph(t, tr)
	validateBijection(t, tr)

	// Both endpoints force a horizontal cut, so a single segment yields four
	// trapezoids: above, below, left, and right.
	require.Len(t, tr.LiveTrapezoids(), 4)

	// The structure should be: y(top) over the top band, then y(bottom) over
	// the bottom band, then x(segment) between them.
	root, ok := tr.Nodes.At(tr.Root).Inner.(YNode)
	require.True(t, ok)
	assert.Same(t, top, root.Key)
	require.IsType(t, SinkNode{}, tr.Nodes.At(root.Above).Inner)

	lower, ok := tr.Nodes.At(root.Below).Inner.(YNode)
	require.True(t, ok)
	assert.Same(t, bottom, lower.Key)
	require.IsType(t, SinkNode{}, tr.Nodes.At(lower.Below).Inner)

	xnode, ok := tr.Nodes.At(lower.Above).Inner.(XNode)
	require.True(t, ok)
	assert.Equal(t, si, xnode.Key)
	require.IsType(t, SinkNode{}, tr.Nodes.At(xnode.Left).Inner)
	require.IsType(t, SinkNode{}, tr.Nodes.At(xnode.Right).Inner)

	// Point location agrees
	left := tr.Locate(&Point{-5, 5})
	right := tr.Locate(&Point{5, 5})
	assert.Equal(t, tr.Nodes.At(xnode.Left).Inner.(SinkNode).Trapezoid, left)
	assert.Equal(t, tr.Nodes.At(xnode.Right).Inner.(SinkNode).Trapezoid, right)
	assert.NotEqual(t, left, right)
	assert.NotEqual(t, tr.Locate(&Point{0, 100}), tr.Locate(&Point{0, -100}))

	// Locate is stable between insertions
	assert.Equal(t, left, tr.Locate(&Point{-5, 5}))

	// A lone segment bounds nothing
	for _, ti := range tr.LiveTrapezoids() {
		assert.False(t, tr.IsInside(ti))
	}
}

func TestAddSegmentsSharingEndpoint(t *testing.T) {
	tr := NewTrapezoidation()
	apex := &Point{0, 0}
	tr.InsertSegment(Segment{Start: apex, End: &Point{0, 10}})
	validateNeighborGraph(t, tr)
	validateBijection(t, tr)

	// The second segment's bottom endpoint is already a vertex of the
	// partition, so no new horizontal cut happens there.
	nexusesBefore := tr.Nexuses.Len()
	tr.InsertSegment(Segment{Start: apex, End: &Point{8, 6}})
	validateNeighborGraph(t, tr)
	validateBijection(t, tr)
	assert.Equal(t, nexusesBefore+1, tr.Nexuses.Len())

	// The wedge between the segments is still not inside anything
	for _, ti := range tr.LiveTrapezoids() {
		assert.False(t, tr.IsInside(ti))
	}
}

func quadPoints() []*Point {
	return []*Point{
		{X: 0, Y: 0},
		{X: 10, Y: 1},
		{X: 9, Y: 8},
		{X: 1, Y: 6},
	}
}

func TestAddPolygonQuad(t *testing.T) {
	points := quadPoints()
	tr := NewTrapezoidation()
	tr.AddPolygon(Polygon{Points: points})
	validateNeighborGraph(t, tr)
	validateBijection(t, tr)

	// A quad with four distinct vertex heights partitions the plane into nine
	// trapezoids after merging, three of them interior.
	live := tr.LiveTrapezoids()
	assert.Len(t, live, 9)
	inside := 0
	for _, ti := range live {
		if tr.IsInside(ti) {
			inside++
		}
	}
	assert.Equal(t, 3, inside)

	assert.True(t, tr.ContainsPoint(&Point{5, 3}))
	assert.False(t, tr.ContainsPoint(&Point{5, 20}))
	assert.False(t, tr.ContainsPoint(&Point{-3, 3}))

	assertMatchesOracle(t, tr, PolygonList{{Points: points}})
}

func TestInsertionOrderInvariance(t *testing.T) {
	points := quadPoints()
	perms := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}

	type build struct {
		tr     *Trapezoidation
		sample []*Point
		sinks  []Idx[Trapezoid]
	}

	var samples []*Point
	for x := -2.0; x <= 12; x += 1.7 {
		for y := -2.0; y <= 10; y += 1.3 {
			samples = append(samples, &Point{X: x, Y: y})
		}
	}

	var builds []build
	for _, perm := range perms {
		tr := NewTrapezoidation()
		var segments []Idx[Segment]
		for i := range points {
			next := points[CircularIndex(i+1, len(points))]
			segments = append(segments, tr.Segments.Alloc(Segment{points[i], next}))
		}
		for _, i := range perm {
			tr.AddSegment(segments[i])
		}
		validateNeighborGraph(t, tr)
		validateBijection(t, tr)

		b := build{tr: tr, sample: samples}
		for _, p := range samples {
			b.sinks = append(b.sinks, tr.Locate(p))
		}
		builds = append(builds, b)
	}

	// The final partition is canonical: every build has the same number of
	// live trapezoids, and any two sample points share a trapezoid in one
	// build iff they share one in all builds.
	reference := builds[0]
	for bi, b := range builds[1:] {
		assert.Equal(t, len(reference.tr.LiveTrapezoids()), len(b.tr.LiveTrapezoids()), "build %d", bi+1)
		for i := range samples {
			for j := i + 1; j < len(samples); j++ {
				expected := reference.sinks[i] == reference.sinks[j]
				actual := b.sinks[i] == b.sinks[j]
				assert.Equal(t, expected, actual,
					"build %d: points (%g, %g) and (%g, %g) co-location mismatch",
					bi+1, samples[i].X, samples[i].Y, samples[j].X, samples[j].Y)
			}
		}
	}
}

// Build the quad one edge at a time in every possible order, checking the
// neighbor graph and the leaf bijection after each insertion. Orders that
// insert the two edges sharing the top-right vertex back to back used to
// leave a one-way neighbor link behind: the redistribution after a vertical
// split evaluated side tests at a point on the new segment's own line, where
// the sign is float noise.
func TestQuadInsertionOrdersStepwise(t *testing.T) {
	points := quadPoints()
	for _, perm := range permutations(4) {
		perm := perm
		t.Run(fmt.Sprintf("order %v", perm), func(t *testing.T) {
			tr := NewTrapezoidation()
			var segments []Idx[Segment]
			for i := range points {
				next := points[CircularIndex(i+1, len(points))]
				segments = append(segments, tr.Segments.Alloc(Segment{points[i], next}))
			}
			for _, i := range perm {
				tr.AddSegment(segments[i])
				validateNeighborGraph(t, tr)
				validateBijection(t, tr)
				if t.Failed() {
					t.FailNow()
				}
			}
			assert.Len(t, tr.LiveTrapezoids(), 9)
		})
	}
}

// Same exercise with an axis-aligned square: the horizontal edges leave
// zero-height bands at the corner heights, so the chain walk has to cross
// boundaries where the segment meets a bound exactly at a shared vertex.
func TestSquareInsertionOrdersStepwise(t *testing.T) {
	points := []*Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 10},
		{X: 0, Y: 10},
	}
	for _, perm := range permutations(4) {
		perm := perm
		t.Run(fmt.Sprintf("order %v", perm), func(t *testing.T) {
			tr := NewTrapezoidation()
			var segments []Idx[Segment]
			for i := range points {
				next := points[CircularIndex(i+1, len(points))]
				segments = append(segments, tr.Segments.Alloc(Segment{points[i], next}))
			}
			for _, i := range perm {
				tr.AddSegment(segments[i])
				validateNeighborGraph(t, tr)
				validateBijection(t, tr)
				if t.Failed() {
					t.FailNow()
				}
			}
			assert.True(t, tr.ContainsPoint(&Point{5, 5}))
			assert.False(t, tr.ContainsPoint(&Point{-1, 5}))
			assert.False(t, tr.ContainsPoint(&Point{5, 11}))
		})
	}
}

// Stress the insertion machinery with a star outline (20 edges, every vertex
// shared) under several shuffle orders, validating the structure after every
// single insertion.
func TestStarOutlineBuildStress(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		seed := seed
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			list := StarOutline()
			tr := NewTrapezoidation()
			var segments []Idx[Segment]
			for _, poly := range list {
				for i := range poly.Points {
					next := poly.Points[CircularIndex(i+1, len(poly.Points))]
					segments = append(segments, tr.Segments.Alloc(Segment{poly.Points[i], next}))
				}
			}
			r := rand.New(rand.NewSource(seed))
			r.Shuffle(len(segments), func(i, j int) {
				segments[i], segments[j] = segments[j], segments[i]
			})
			for _, si := range segments {
				tr.AddSegment(si)
				validateNeighborGraph(t, tr)
				validateBijection(t, tr)
				if t.Failed() {
					t.FailNow()
				}
			}
			assertMatchesOracle(t, tr, list)
		})
	}
}

func TestSquareFixture(t *testing.T) {
	poly := LoadFixture("square")
	tr := NewTrapezoidation()
	tr.AddPolygon(poly)
	validateNeighborGraph(t, tr)
	validateBijection(t, tr)

	assert.True(t, tr.ContainsPoint(&Point{5, 5}))
	assert.False(t, tr.ContainsPoint(&Point{-1, 5}))
	assert.False(t, tr.ContainsPoint(&Point{5, 11}))
	assertMatchesOracle(t, tr, PolygonList{poly})
}

func TestStarFixture(t *testing.T) {
	poly := LoadFixture("star")
	tr := NewTrapezoidation()
	tr.AddPolygon(poly)
	validateNeighborGraph(t, tr)
	validateBijection(t, tr)
	assertMatchesOracle(t, tr, PolygonList{poly})
}

func TestSimpleStar(t *testing.T) {
	list := SimpleStar()
	tr := NewTrapezoidation()
	tr.AddPolygonList(list)
	validateNeighborGraph(t, tr)
	validateBijection(t, tr)
	assert.True(t, tr.ContainsPoint(&Point{0, 0}))
	assertMatchesOracle(t, tr, list)
}

func TestSquareWithHole(t *testing.T) {
	list := SquareWithHole()
	tr := NewTrapezoidation()
	tr.AddPolygonList(list)
	validateNeighborGraph(t, tr)
	validateBijection(t, tr)

	// Inside the hole is outside the shape
	assert.False(t, tr.ContainsPoint(&Point{0, 0}))
	assert.True(t, tr.ContainsPoint(&Point{0, 3.5}))
	assert.False(t, tr.ContainsPoint(&Point{0, 8}))
	assertMatchesOracle(t, tr, list)
}

func TestNondeterministicSeed(t *testing.T) {
	// Just exercises the time based seed path; the result must still be a
	// valid partition.
	list := SimpleStar()
	tr := NewTrapezoidation()
	tr.AddPolygonList(list, true)
	validateNeighborGraph(t, tr)
	validateBijection(t, tr)
	assertMatchesOracle(t, tr, list)
}

func TestValidationRejectsBadInput(t *testing.T) {
	t.Run("too few points", func(t *testing.T) {
		tr := NewTrapezoidation()
		assert.Panics(t, func() {
			tr.AddPolygon(Polygon{Points: []*Point{{0, 0}, {1, 1}}})
		})
	})

	t.Run("duplicate vertex", func(t *testing.T) {
		tr := NewTrapezoidation()
		assert.Panics(t, func() {
			tr.AddPolygon(Polygon{Points: []*Point{{0, 0}, {5, 0}, {5, 5}, {0, 0}}})
		})
	})

	t.Run("crossing segments", func(t *testing.T) {
		tr := NewTrapezoidation()
		// Bowtie
		assert.Panics(t, func() {
			tr.AddPolygon(Polygon{Points: []*Point{{0, 0}, {5, 5}, {5, 0}, {0, 5}}})
		})
	})

	t.Run("t intersection", func(t *testing.T) {
		tr := NewTrapezoidation()
		// The second polygon's top vertex lies interior to the first one's
		// bottom edge. No edges properly cross, so only the touch check can
		// catch this.
		assert.Panics(t, func() {
			tr.AddPolygonList(PolygonList{
				{Points: []*Point{{0, 0}, {10, 0}, {5, 8}}},
				{Points: []*Point{{5, 0}, {8, -4}, {2, -4}}},
			})
		})
	})

	t.Run("collinear overlap", func(t *testing.T) {
		tr := NewTrapezoidation()
		// The second polygon's top edge runs along the first one's bottom
		// edge over a shared stretch.
		assert.Panics(t, func() {
			tr.AddPolygonList(PolygonList{
				{Points: []*Point{{0, 0}, {10, 0}, {5, 8}}},
				{Points: []*Point{{4, 0}, {12, 0}, {8, -6}}},
			})
		})
	})
}

func TestTreeString(t *testing.T) {
	tr := NewTrapezoidation()
	tr.InsertSegment(Segment{Start: &Point{0, 0}, End: &Point{0, 10}})
	s := tr.TreeString()
	assert.Contains(t, s, "y(")
	assert.Contains(t, s, "x(")
	assert.Contains(t, s, "▸")
}

func TestTrapezoidStringSmoke(t *testing.T) {
	tr := NewTrapezoidation()
	tr.AddPolygon(Polygon{Points: quadPoints()})
	for _, ti := range tr.LiveTrapezoids() {
		assert.NotEmpty(t, tr.TrapezoidString(ti))
	}
}

// Helpers

func permutations(n int) [][]int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	var result [][]int
	var permute func(k int)
	permute = func(k int) {
		if k == n {
			perm := make([]int, n)
			copy(perm, items)
			result = append(result, perm)
			return
		}
		for i := k; i < n; i++ {
			items[k], items[i] = items[i], items[k]
			permute(k + 1)
			items[k], items[i] = items[i], items[k]
		}
	}
	permute(0)
	return result
}

// Validate that every live leaf and its trapezoid designate each other, and
// that no two leaves designate the same trapezoid.
func validateBijection(t *testing.T, tr *Trapezoidation) {
	leafForTrapezoid := map[Idx[Trapezoid]]Idx[QueryNode]{}
	iter := tr.NewGraphIterator()
	for qi := iter.Next(); !qi.None(); qi = iter.Next() {
		sink, ok := tr.Nodes.At(qi).Inner.(SinkNode)
		if !ok {
			continue
		}
		ti := sink.Trapezoid
		if prev, dup := leafForTrapezoid[ti]; dup {
			t.Errorf("trapezoid %s has two live leaves %s and %s", ti, prev, qi)
			continue
		}
		leafForTrapezoid[ti] = qi
		assert.Equal(t, qi, tr.Trapezoids.At(ti).Sink, "trapezoid %s does not point back at leaf %s", ti, qi)
	}
}

// Validate that all neighbor relationships make sense. Every neighbor
// relationship should be reflexive, and every neighbor should be a live
// trapezoid.
func validateNeighborGraph(t *testing.T, tr *Trapezoidation) {
	live := map[Idx[Trapezoid]]struct{}{}
	for _, ti := range tr.LiveTrapezoids() {
		live[ti] = struct{}{}
	}

	for ti := range live {
		trapezoid := tr.Trapezoids.At(ti)
		for _, neighbor := range trapezoid.TrapezoidsAbove {
			if neighbor.None() {
				continue
			}
			// Check reflexivity
			assert.Contains(t, tr.Trapezoids.At(neighbor).TrapezoidsBelow, ti, "above neighbor %s does not have %s as a below neighbor", neighbor, ti)
			// Check that the neighbor is live
			assert.Contains(t, live, neighbor, "above neighbor %s of %s is not live", neighbor, ti)
		}
		for _, neighbor := range trapezoid.TrapezoidsBelow {
			if neighbor.None() {
				continue
			}
			// Check reflexivity
			assert.Contains(t, tr.Trapezoids.At(neighbor).TrapezoidsAbove, ti, "below neighbor %s does not have %s as an above neighbor", neighbor, ti)
			// Check that the neighbor is live
			assert.Contains(t, live, neighbor, "below neighbor %s of %s is not live", neighbor, ti)
		}
	}
}

// Sample a grid over the input's bounding box and check ContainsPoint against
// the even-odd oracle, skipping points too close to an edge for the answers
// to be well defined.
func assertMatchesOracle(t *testing.T, tr *Trapezoidation, list PolygonList) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range list {
		for _, p := range poly.Points {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}

	const samples = 30
	const margin = 1.0
	for i := 0; i <= samples; i++ {
		for j := 0; j <= samples; j++ {
			p := &Point{
				X: minX - margin + (maxX-minX+2*margin)*float64(i)/samples,
				Y: minY - margin + (maxY-minY+2*margin)*float64(j)/samples,
			}
			if nearAnyEdge(list, p, 0.05) {
				continue
			}
			expected := oracleContains(list, p)
			if !assert.Equal(t, expected, tr.ContainsPoint(p), "point (%g, %g)", p.X, p.Y) {
				// One report per failing grid is plenty
				t.FailNow()
			}
		}
	}
}

// Even-odd over the whole list: crossing parity summed across polygons.
func oracleContains(list PolygonList, p *Point) bool {
	total := 0
	for _, poly := range list {
		total += poly.CrossingCount(p)
	}
	return total%2 == 1
}

func nearAnyEdge(list PolygonList, p *Point, tolerance float64) bool {
	for _, poly := range list {
		for i, vertex := range poly.Points {
			next := poly.Points[CircularIndex(i+1, len(poly.Points))]
			if distanceToSegment(p, vertex, next) < tolerance {
				return true
			}
		}
	}
	return false
}

func distanceToSegment(p, a, b *Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lengthSquared := dx*dx + dy*dy
	if lengthSquared == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	u := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lengthSquared
	u = math.Max(0, math.Min(1, u))
	return math.Hypot(p.X-(a.X+u*dx), p.Y-(a.Y+u*dy))
}

func ExampleTrapezoidation_ContainsPoint() {
	tr := NewTrapezoidation()
	tr.AddPolygon(Polygon{Points: []*Point{
		{X: 0, Y: 0},
		{X: 4, Y: 0},
		{X: 4, Y: 4},
		{X: 0, Y: 4},
	}})
	fmt.Println(tr.ContainsPoint(&Point{X: 2, Y: 2}))
	fmt.Println(tr.ContainsPoint(&Point{X: 5, Y: 2}))
	// Output:
	// true
	// false
}
