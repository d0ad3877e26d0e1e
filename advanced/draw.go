package advanced

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"
)

// Padding around the shape to make infinite trapezoids obvious
const dbgDrawPadding = 100

var inverseMatrixForContext map[*gg.Context]gg.Matrix

func init() {
	inverseMatrixForContext = make(map[*gg.Context]gg.Matrix)
}

// prepareContext makes a black canvas fitted to the partition's finite extent,
// flips it so the origin is at the bottom left, and remembers the inverse
// transform for points-at-infinity handling.
func (tr *Trapezoidation) prepareContext(scale float64) *gg.Context {
	var minX, minY, maxX, maxY float64
	minX = math.Inf(1)
	minY = math.Inf(1)
	maxX = math.Inf(-1)
	maxY = math.Inf(-1)
	for si := Idx[Segment](1); int(si) <= tr.Segments.Len(); si++ {
		seg := tr.Segments.At(si)
		for _, point := range []*Point{seg.Start, seg.End} {
			minX = math.Min(minX, point.X)
			minY = math.Min(minY, point.Y)
			maxX = math.Max(maxX, point.X)
			maxY = math.Max(maxY, point.Y)
		}
	}

	width := int(scale*(maxX-minX)) + dbgDrawPadding*2
	height := int(scale*(maxY-minY)) + dbgDrawPadding*2
	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()
	// Flip the context so the origin is at the bottom left
	c.Translate(0, float64(height))
	c.Scale(1, -1)

	// Translate for padding
	c.Translate(dbgDrawPadding, dbgDrawPadding)
	// Scale
	c.Scale(scale, scale)
	// Translate to min
	c.Translate(-minX, -minY)

	// Reverse the above operations to get the inverse matrix. The gg library
	// has no matrix inverse, or even a way to get to the context matrix, so it
	// comes to this. Whatever, it's debugging code.
	inverseMatrix := gg.Identity().
		Translate(minX, minY).
		Scale(1/scale, 1/scale).
		Translate(-dbgDrawPadding, -dbgDrawPadding).
		Scale(1, -1).
		Translate(0, -float64(height))
	inverseMatrixForContext[c] = inverseMatrix

	c.SetLineWidth(3)
	return c
}

// DebugDraw renders the partition and prints it inline in the terminal (iTerm
// only).
func (tr *Trapezoidation) DebugDraw(scale float64) {
	c := tr.prepareContext(scale)
	tr.Draw(c)
	c.SavePNG("/tmp/trapezoidation.png")
	imgcat.CatFile("/tmp/trapezoidation.png", os.Stdout)
}

// WritePNG renders the partition to a file.
func (tr *Trapezoidation) WritePNG(path string, scale float64) error {
	c := tr.prepareContext(scale)
	tr.Draw(c)
	return c.SavePNG(path)
}

// Draw fills all the live trapezoids, then strokes them.
func (tr *Trapezoidation) Draw(c *gg.Context) {
	live := tr.LiveTrapezoids()
	for _, ti := range live {
		tr.drawTrapezoid(c, ti, false)
	}
	for _, ti := range live {
		tr.drawTrapezoid(c, ti, true)
	}
}

func (tr *Trapezoidation) drawTrapezoid(c *gg.Context, ti Idx[Trapezoid], stroke bool) {
	// Find the bounds of the canvas, for points at infinity
	bounds := getCanvasBounds(c)
	t := tr.Trapezoids.At(ti)
	var top, bottom *Point
	if t.Top.None() {
		top = &Point{X: 0, Y: float64(bounds.Max.Y)}
	} else {
		top = tr.Nexuses.At(t.Top).Point
	}
	if t.Bottom.None() {
		bottom = &Point{X: 0, Y: float64(bounds.Min.Y)}
	} else {
		bottom = tr.Nexuses.At(t.Bottom).Point
	}

	// Resolve each side to a concrete segment spanning top to bottom, making
	// up vertical lines off the canvas edge for unbounded sides.
	sides := [2]Segment{}
	for sideIndex, si := range [2]Idx[Segment]{t.Left, t.Right} {
		if si.None() {
			x := float64(bounds.Min.X)
			if sideIndex == 1 {
				x = float64(bounds.Max.X)
			}
			sides[sideIndex] = Segment{
				Start: &Point{X: x, Y: top.Y},
				End:   &Point{X: x, Y: bottom.Y},
			}
			continue
		}
		seg := tr.Segments.At(si)
		if seg.IsHorizontal() { // leave horizontal segments alone
			sides[sideIndex] = *seg
			continue
		}
		sides[sideIndex] = Segment{
			Start: &Point{X: seg.SolveForX(top.Y), Y: top.Y},
			End:   &Point{X: seg.SolveForX(bottom.Y), Y: bottom.Y},
		}
	}
	left, right := sides[0], sides[1]

	// Add the lines
	c.MoveTo(left.Start.X, left.Start.Y)
	c.LineTo(left.End.X, left.End.Y)
	c.LineTo(right.End.X, right.End.Y)
	c.LineTo(right.Start.X, right.Start.Y)
	c.ClosePath()
	if stroke {
		c.SetRGB(0, 1, 0)
		c.Stroke()
		return
	}
	if tr.IsInside(ti) {
		c.SetRGBA(0.3, 0.2, 1, 0.5)
		c.Fill()
	} else {
		c.SetRGBA(1, 1, 0, 0.5)
		c.Fill()
	}
	// Write the handle of the trapezoid
	c.SetRGB(1, 1, 1)
	centerX := (left.Start.X + right.End.X + right.Start.X + left.End.X) / 4
	centerY := (left.Start.Y + right.End.Y + right.Start.Y + left.End.Y) / 4
	// We have to go back to identity to draw the text, so get the point in
	// native coordinates
	centerX, centerY = c.TransformPoint(centerX, centerY)
	c.Push()
	c.Identity()
	// Undo scaling we're about to do
	centerX, centerY = gg.Identity().Scale(.5, .5).TransformPoint(centerX, centerY)
	c.Scale(2, 2)
	c.DrawStringAnchored(ti.String(), centerX, centerY, 0.5, 0.5)
	c.Pop()
}

func getCanvasBounds(c *gg.Context) image.Rectangle {
	matrix := inverseMatrixForContext[c]
	bounds := image.Rect(-10, -10, c.Width()+20, c.Height()+20)
	minX, minY := matrix.TransformPoint(float64(bounds.Min.X), float64(bounds.Min.Y))
	maxX, maxY := matrix.TransformPoint(float64(bounds.Max.X), float64(bounds.Max.Y))
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Floor(maxX)), int(math.Floor(maxY)))
}

// PrintAllTrapezoids dumps every live trapezoid with its bounds and neighbors.
func (tr *Trapezoidation) PrintAllTrapezoids() {
	for _, ti := range tr.LiveTrapezoids() {
		fmt.Println(tr.TrapezoidString(ti))
	}
}
