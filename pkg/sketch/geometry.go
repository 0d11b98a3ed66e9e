package sketch

import (
	"math"

	"github.com/aretw0/cadbridge/pkg/domain"
	"gonum.org/v1/gonum/spatial/r2"
)

// Pt returns a sketch point in millimetres.
func Pt(x, y float64) r2.Vec {
	return r2.Vec{X: x, Y: y}
}

// Segment is a straight sketch line.
type Segment struct {
	Start, End r2.Vec
}

// Arc is a circular arc. Angles are in degrees, counter-clockwise from +X.
type Arc struct {
	Center     r2.Vec
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

// Endpoints returns the start and end points of the arc.
func (a Arc) Endpoints() (start, end r2.Vec) {
	return ArcEndpoints(a.Center, a.Radius, a.StartAngle, a.EndAngle)
}

// Direction is +1 for a counter-clockwise sweep and -1 otherwise.
func (a Arc) Direction() int32 {
	if a.EndAngle > a.StartAngle {
		return 1
	}
	return -1
}

// ArcEndpoints returns center + r(cos t, sin t) for both angles (degrees).
func ArcEndpoints(center r2.Vec, radius, startDeg, endDeg float64) (start, end r2.Vec) {
	return polar(center, radius, startDeg*math.Pi/180), polar(center, radius, endDeg*math.Pi/180)
}

// CircleEdgePoint returns the point on the circle the host uses to infer the radius.
func CircleEdgePoint(center r2.Vec, radius float64) r2.Vec {
	return r2.Add(center, r2.Vec{X: radius})
}

// PolygonVertices returns the vertices of a regular polygon inscribed in a
// circle of the given radius. The first vertex is straight below the center
// and the rest follow counter-clockwise.
func PolygonVertices(center r2.Vec, radius float64, sides int) ([]r2.Vec, error) {
	if sides < 3 {
		return nil, domain.Invalid("polygon needs at least 3 sides, got %d", sides)
	}
	if radius <= 0 {
		return nil, domain.Invalid("polygon radius must be positive, got %g", radius)
	}
	out := make([]r2.Vec, sides)
	for i := range out {
		angle := 2*math.Pi*float64(i)/float64(sides) - math.Pi/2
		out[i] = polar(center, radius, angle)
	}
	return out, nil
}

// PolygonEdges closes the vertex ring into segments, wraparound included.
func PolygonEdges(vertices []r2.Vec) []Segment {
	out := make([]Segment, len(vertices))
	for i, v := range vertices {
		out[i] = Segment{Start: v, End: vertices[(i+1)%len(vertices)]}
	}
	return out
}

// SlotProfile is the outline of a straight slot: two sides and two
// half-circle caps.
type SlotProfile struct {
	Sides [2]Segment
	Caps  [2]Arc
}

// SlotGeometry derives the outline of a slot whose centerline runs from
// start to end. A zero-length centerline yields domain.ErrDegenerateGeometry.
func SlotGeometry(start, end r2.Vec, width float64) (SlotProfile, error) {
	if width <= 0 {
		return SlotProfile{}, domain.Invalid("slot width must be positive, got %g", width)
	}
	axis := r2.Sub(end, start)
	if r2.Norm(axis) == 0 {
		return SlotProfile{}, domain.ErrDegenerateGeometry
	}
	u := r2.Unit(axis)
	perp := r2.Vec{X: -u.Y, Y: u.X}
	r := width / 2
	off := r2.Scale(r, perp)

	angle := math.Atan2(perp.Y, perp.X) * 180 / math.Pi
	return SlotProfile{
		Sides: [2]Segment{
			{Start: r2.Add(start, off), End: r2.Add(end, off)},
			{Start: r2.Sub(start, off), End: r2.Sub(end, off)},
		},
		Caps: [2]Arc{
			{Center: start, Radius: r, StartAngle: angle, EndAngle: angle + 180},
			{Center: end, Radius: r, StartAngle: angle + 180, EndAngle: angle + 360},
		},
	}, nil
}

func polar(center r2.Vec, radius, rad float64) r2.Vec {
	return r2.Add(center, r2.Vec{X: radius * math.Cos(rad), Y: radius * math.Sin(rad)})
}
