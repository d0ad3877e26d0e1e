// A fast point location package for Go.
//
// This package takes a set of simple polygons, which may be non-convex, may
// be disjoint, and may contain holes, and builds a trapezoidal decomposition
// of the plane with a query structure over it. Once built, the structure
// answers point location and point-in-polygon queries in O(log n) expected
// time, and is safe to query from any number of goroutines.
package trapezoid

import "github.com/osuushi/trapezoid/advanced"

type Point = advanced.Point
type Polygon = advanced.Polygon
type Trapezoidation = advanced.Trapezoidation

// Take a set of point lists and build the trapezoid partition for them.
//
// The polygons must be simple and non-intersecting. "Solid" polygons must
// give their points in counterclockwise order, while "holes" must be in
// clockwise order.
//
// The order of the polygons is irrelevant.
func Trapezoidize(polygonPoints ...[]*Point) (result *Trapezoidation, err error) {
	defer func() {
		recoveredErr := advanced.HandleTrapezoidPanicRecover(recover())
		if recoveredErr != nil {
			result = nil
			err = recoveredErr
		}
	}()
	polygons := make(advanced.PolygonList, len(polygonPoints))
	for i, points := range polygonPoints {
		polygons[i] = advanced.Polygon{Points: points}
	}
	tr := advanced.NewTrapezoidation()
	tr.AddPolygonList(polygons)
	return tr, nil
}
