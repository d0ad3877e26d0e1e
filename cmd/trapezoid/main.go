package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/osuushi/trapezoid/advanced"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

// Demo of trapezoidization. Input on stdin should be newline separated points
// in the form "x y", with each polygon separated by an extra newline.
//
// Polygons should be simple and wind counterclockwise. A clockwise polygon is
// a hole. A hole should be contained by only one outer polygon, and should
// not intersect its edges.

var (
	outPath = kingpin.Flag("out", "Write a PNG rendering of the partition to this path.").String()
	show    = kingpin.Flag("show", "Print the rendering inline in the terminal (iTerm only).").Bool()
	tree    = kingpin.Flag("tree", "Print the query structure as an ascii tree.").Bool()
	dump    = kingpin.Flag("dump", "Print every live trapezoid with its bounds and neighbors.").Bool()
	scale   = kingpin.Flag("scale", "Pixels per input unit for rendering.").Default("20").Float64()
	nondet  = kingpin.Flag("nondeterministic", "Use a time based seed for the insertion order shuffle.").Bool()
	queries = kingpin.Flag("query", "Point \"x y\" to locate after building. May repeat.").Strings()
)

func main() {
	kingpin.Parse()

	polygons := readPolygons(os.Stdin)
	if len(polygons) == 0 {
		kingpin.Fatalf("no polygons on stdin")
	}

	tr, err := build(polygons)
	if err != nil {
		kingpin.Fatalf("%v", err)
	}

	live := tr.LiveTrapezoids()
	inside := 0
	for _, ti := range live {
		if tr.IsInside(ti) {
			inside++
		}
	}
	fmt.Printf("Read %d polygons; %d trapezoids, %d inside\n", len(polygons), len(live), inside)

	for _, q := range *queries {
		p := parsePoint(q)
		ti := tr.Locate(&p)
		fmt.Printf("(%g, %g) → %s inside=%v\n", p.X, p.Y, ti.String(), tr.IsInside(ti))
	}

	if *dump {
		tr.PrintAllTrapezoids()
	}
	if *tree {
		fmt.Print(tr.TreeString())
	}
	if *outPath != "" {
		if err := tr.WritePNG(*outPath, *scale); err != nil {
			kingpin.Fatalf("writing %s: %v", *outPath, err)
		}
	}
	if *show {
		tr.DebugDraw(*scale)
	}
}

func build(polygons advanced.PolygonList) (tr *advanced.Trapezoidation, err error) {
	defer func() {
		recoveredErr := advanced.HandleTrapezoidPanicRecover(recover())
		if recoveredErr != nil {
			tr = nil
			err = recoveredErr
		}
	}()
	tr = advanced.NewTrapezoidation()
	tr.AddPolygonList(polygons, *nondet)
	return tr, nil
}

func readPolygons(in *os.File) advanced.PolygonList {
	polygons := advanced.PolygonList{}
	// Scan lines
	scanner := bufio.NewScanner(in)
	points := []*advanced.Point{}
	for scanner.Scan() {
		// Read the next line
		line := scanner.Text()

		// If it's empty, and we collected any points, this is the end of the polygon
		if line == "" {
			if len(points) > 0 {
				polygons = append(polygons, advanced.Polygon{Points: points})
				points = []*advanced.Point{}
			}
			continue
		}

		// Parse the point out of the line
		point := parsePoint(line)
		points = append(points, &point)
	}

	// Handle trailing polygon if any
	if len(points) > 0 {
		polygons = append(polygons, advanced.Polygon{Points: points})
	}
	return polygons
}

func parsePoint(line string) advanced.Point {
	parts := strings.Fields(line)
	if len(parts) != 2 {
		kingpin.Fatalf("bad point %q; want \"x y\"", line)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		kingpin.Fatalf("bad x in %q: %v", line, err)
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		kingpin.Fatalf("bad y in %q: %v", line, err)
	}
	return advanced.Point{X: x, Y: y}
}
