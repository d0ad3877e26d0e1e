package advanced

import (
	"fmt"

	"github.com/osuushi/trapezoid/dbg"
)

// A nexus is the event record for one polygon vertex. Trapezoids are bounded
// above and below by nexuses rather than bare y values, because every Y
// comparison must have an X value involved to break lexicographic ties.
type Nexus struct {
	Point *Point
}

func (Nexus) idxPrefix() byte { return 'n' }

func (n Nexus) String() string {
	return fmt.Sprintf("%s(%g, %g)", dbg.Name(n.Point), n.Point.X, n.Point.Y)
}
