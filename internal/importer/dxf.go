package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/Aquarium/internal/model"
)

// point is a 2D drawing coordinate in world units.
type point struct{ x, y float64 }

// bounds is an axis-aligned box in world units.
type bounds struct {
	minX, minY, maxX, maxY float64
}

func boundsOf(pts []point) bounds {
	b := bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		b.minX = math.Min(b.minX, p.x)
		b.minY = math.Min(b.minY, p.y)
		b.maxX = math.Max(b.maxX, p.x)
		b.maxY = math.Max(b.maxY, p.y)
	}
	return b
}

// segment is one LINE or sampled ARC piece awaiting chaining.
type segment struct{ start, end point }

// chainTolerance is the endpoint distance at which segments join.
const chainTolerance = 0.01

// ImportDXF reads closed shapes from a DXF drawing and turns each into an
// object record. Coordinates are world units with the same axes as the
// tank: a shape's bounding box origin becomes the tile origin and its
// longer side, rounded up to whole tiles, becomes the footprint.
// LWPOLYLINE and CIRCLE entities are shapes on their own; LINE and ARC
// entities are chained end to end.
func ImportDXF(path string, tileSize float64) ImportResult {
	result := ImportResult{}
	if tileSize <= 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid tile size %g", tileSize))
		return result
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes [][]point
	var segments []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			pts := polylinePoints(e)
			if len(pts) >= 3 {
				shapes = append(shapes, pts)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}
		case *entity.Circle:
			cx, cy, r := e.Center[0], e.Center[1], e.Radius
			shapes = append(shapes, []point{{cx - r, cy - r}, {cx + r, cy + r}})
		case *entity.Arc:
			pts := arcPoints(e, 16)
			for i := 0; i+1 < len(pts); i++ {
				segments = append(segments, segment{pts[i], pts[i+1]})
			}
		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		}
	}
	shapes = append(shapes, chainSegments(segments)...)

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for i, pts := range shapes {
		b := boundsOf(pts)
		w, h := b.maxX-b.minX, b.maxY-b.minY
		if w < chainTolerance || h < chainTolerance {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", w, h))
			continue
		}
		if b.minX < 0 || b.minY < 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Shape %d starts left of or above the tank, clamping to 0", i+1))
		}
		size := int(math.Ceil(math.Max(w, h)/tileSize - 1e-9))
		if size < 1 {
			size = 1
		}
		result.Objects = append(result.Objects, model.PlacedObject{
			SpriteRef: fmt.Sprintf("dxf/shape-%d", i+1),
			OriginCol: int(math.Max(0, math.Floor(b.minX/tileSize+1e-9))),
			OriginRow: int(math.Max(0, math.Floor(b.minY/tileSize+1e-9))),
			Footprint: size,
		})
	}
	return result
}

// polylinePoints returns the vertices of a polyline plus sampled points
// along any bulged segment so the bounds include the arcs.
func polylinePoints(lw *entity.LwPolyline) []point {
	var pts []point
	n := len(lw.Vertices)
	for i := 0; i < n; i++ {
		cur := point{lw.Vertices[i][0], lw.Vertices[i][1]}
		pts = append(pts, cur)
		if i >= len(lw.Bulges) || math.Abs(lw.Bulges[i]) < 1e-9 {
			continue
		}
		nv := lw.Vertices[(i+1)%n]
		pts = append(pts, bulgePoints(cur, point{nv[0], nv[1]}, lw.Bulges[i], 16)...)
	}
	return pts
}

// bulgePoints samples the arc between p1 and p2 described by a DXF bulge
// (tangent of a quarter of the included angle). Positive bulges run
// counter-clockwise.
func bulgePoints(p1, p2 point, bulge float64, steps int) []point {
	dx, dy := p2.x-p1.x, p2.y-p1.y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return nil
	}
	theta := 4 * math.Atan(bulge)
	radius := chord / (2 * math.Sin(math.Abs(theta)/2))

	// Centre sits on the chord bisector, on the left of p1->p2 for ccw arcs
	mx, my := (p1.x+p2.x)/2, (p1.y+p2.y)/2
	d := math.Sqrt(math.Max(0, radius*radius-chord*chord/4))
	sign := 1.0
	if (bulge > 0) != (math.Abs(theta) < math.Pi) {
		sign = -1.0
	}
	cx := mx - sign*d*dy/chord
	cy := my + sign*d*dx/chord

	start := math.Atan2(p1.y-cy, p1.x-cx)
	pts := make([]point, 0, steps)
	for i := 1; i < steps; i++ {
		a := start + theta*float64(i)/float64(steps)
		pts = append(pts, point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)})
	}
	return pts
}

// arcPoints samples a DXF ARC, which runs counter-clockwise from its start
// angle to its end angle in degrees.
func arcPoints(a *entity.Arc, steps int) []point {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	pts := make([]point, steps+1)
	for i := 0; i <= steps; i++ {
		ang := start + (end-start)*float64(i)/float64(steps)
		pts[i] = point{cx + r*math.Cos(ang), cy + r*math.Sin(ang)}
	}
	return pts
}

func near(a, b point) bool {
	return math.Hypot(a.x-b.x, a.y-b.y) <= chainTolerance
}

// chainSegments joins segments sharing endpoints into closed loops. Open
// chains are dropped.
func chainSegments(segs []segment) [][]point {
	used := make([]bool, len(segs))
	var loops [][]point

	for startIdx := range segs {
		if used[startIdx] {
			continue
		}
		used[startIdx] = true
		chain := []point{segs[startIdx].start, segs[startIdx].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			if len(chain) >= 4 && near(chain[0], tail) {
				break
			}
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case near(tail, s.start):
					chain = append(chain, s.end)
				case near(tail, s.end):
					chain = append(chain, s.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 4 && near(chain[0], chain[len(chain)-1]) {
			loops = append(loops, chain[:len(chain)-1])
		}
	}
	return loops
}
