// Package sketch draws 2D sketch geometry on the host.
//
// All coordinates are millimetres and all angles degrees; the adapter
// converts to the host's metres and radians. Geometry that is derived rather
// than drawn directly (polygons, slots, arc endpoints) is computed by the
// pure functions in this package so it can be checked without a host.
package sketch

import (
	"context"
	"fmt"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
	"github.com/aretw0/cadbridge/pkg/selection"
	"github.com/aretw0/cadbridge/pkg/session"
	"github.com/aretw0/cadbridge/pkg/units"
	"gonum.org/v1/gonum/spatial/r2"
)

// Adapter issues sketch calls against the session's current part.
type Adapter struct {
	s *session.Session
}

// New returns a sketch adapter bound to s.
func New(s *session.Session) *Adapter {
	return &Adapter{s: s}
}

// Start selects plane and opens a sketch on it. Plane accepts short and
// localized names ("Front", "Oben") or the name of any plane-like feature.
func (a *Adapter) Start(ctx context.Context, plane string) error {
	if plane == "" {
		plane = string(domain.PlaneFront)
	}
	host := domain.ResolvePlane(plane)
	return a.s.Do(ctx, "sketch.start", func(ctx context.Context) error {
		if err := selection.SelectByID(ctx, a.s, string(host), domain.EntityPlane, false); err != nil {
			return err
		}
		return a.toggle(ctx)
	})
}

// End closes the open sketch.
func (a *Adapter) End(ctx context.Context) error {
	return a.s.Do(ctx, "sketch.end", a.toggle)
}

func (a *Adapter) toggle(ctx context.Context) error {
	sm, err := a.manager(ctx)
	if err != nil {
		return err
	}
	_, err = sm.Call(ctx, "InsertSketch", true)
	return err
}

// Line draws a straight line.
func (a *Adapter) Line(ctx context.Context, x1, y1, x2, y2 float64) error {
	return a.draw(ctx, "sketch.line", func(ctx context.Context, sm ports.Object) error {
		return a.line(ctx, sm, Segment{Start: Pt(x1, y1), End: Pt(x2, y2)})
	})
}

// Circle draws a circle from its center and radius or diameter.
func (a *Adapter) Circle(ctx context.Context, spec CircleSpec) error {
	r, err := spec.ResolveRadius()
	if err != nil {
		return err
	}
	return a.draw(ctx, "sketch.circle", func(ctx context.Context, sm ports.Object) error {
		c := spec.Center()
		return create(ctx, sm, "CreateCircle", coords(c, CircleEdgePoint(c, r))...)
	})
}

// Rectangle draws an axis-aligned rectangle from two opposite corners.
func (a *Adapter) Rectangle(ctx context.Context, x1, y1, x2, y2 float64) error {
	if x1 == x2 || y1 == y2 {
		return fmt.Errorf("rectangle (%g, %g)-(%g, %g): %w", x1, y1, x2, y2, domain.ErrDegenerateGeometry)
	}
	return a.draw(ctx, "sketch.rectangle", func(ctx context.Context, sm ports.Object) error {
		return create(ctx, sm, "CreateCornerRectangle", coords(Pt(x1, y1), Pt(x2, y2))...)
	})
}

// RectangleCentered draws a corner rectangle of size w x h around (cx, cy).
func (a *Adapter) RectangleCentered(ctx context.Context, w, h, cx, cy float64) error {
	if w <= 0 || h <= 0 {
		return domain.Invalid("rectangle size must be positive, got %g x %g", w, h)
	}
	return a.Rectangle(ctx, cx-w/2, cy-h/2, cx+w/2, cy+h/2)
}

// CenterRectangle draws a rectangle with the host's center-rectangle tool.
func (a *Adapter) CenterRectangle(ctx context.Context, cx, cy, w, h float64) error {
	if w <= 0 || h <= 0 {
		return domain.Invalid("rectangle size must be positive, got %g x %g", w, h)
	}
	return a.draw(ctx, "sketch.center_rectangle", func(ctx context.Context, sm ports.Object) error {
		return create(ctx, sm, "CreateCenterRectangle", coords(Pt(cx, cy), Pt(cx+w/2, cy+h/2))...)
	})
}

// Arc draws a circular arc between two angles (degrees). The sweep is
// counter-clockwise when end > start.
func (a *Adapter) Arc(ctx context.Context, cx, cy, r, start, end float64) error {
	if r <= 0 {
		return domain.Invalid("arc radius must be positive, got %g", r)
	}
	if start == end {
		return fmt.Errorf("arc with equal start and end angle: %w", domain.ErrDegenerateGeometry)
	}
	return a.draw(ctx, "sketch.arc", func(ctx context.Context, sm ports.Object) error {
		return a.arc(ctx, sm, Arc{Center: Pt(cx, cy), Radius: r, StartAngle: start, EndAngle: end})
	})
}

// ThreePointArc draws an arc from p1 through p2 to p3.
func (a *Adapter) ThreePointArc(ctx context.Context, p1, p2, p3 r2.Vec) error {
	if r2.Cross(r2.Sub(p2, p1), r2.Sub(p3, p1)) == 0 {
		return fmt.Errorf("three-point arc through collinear points: %w", domain.ErrDegenerateGeometry)
	}
	return a.draw(ctx, "sketch.three_point_arc", func(ctx context.Context, sm ports.Object) error {
		return create(ctx, sm, "Create3PointArc", coords(p1, p2, p3)...)
	})
}

// Polygon draws a regular polygon inscribed in a circle of radius r.
func (a *Adapter) Polygon(ctx context.Context, cx, cy, r float64, sides int) error {
	vertices, err := PolygonVertices(Pt(cx, cy), r, sides)
	if err != nil {
		return err
	}
	return a.draw(ctx, "sketch.polygon", func(ctx context.Context, sm ports.Object) error {
		for _, seg := range PolygonEdges(vertices) {
			if err := a.line(ctx, sm, seg); err != nil {
				return err
			}
		}
		return nil
	})
}

// Slot draws a straight slot of the given width around the centerline
// (x1, y1)-(x2, y2).
func (a *Adapter) Slot(ctx context.Context, x1, y1, x2, y2, width float64) error {
	profile, err := SlotGeometry(Pt(x1, y1), Pt(x2, y2), width)
	if err != nil {
		return err
	}
	return a.draw(ctx, "sketch.slot", func(ctx context.Context, sm ports.Object) error {
		for _, seg := range profile.Sides {
			if err := a.line(ctx, sm, seg); err != nil {
				return err
			}
		}
		for _, c := range profile.Caps {
			if err := a.arc(ctx, sm, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// Ellipse draws an axis-aligned ellipse with its major axis along X.
func (a *Adapter) Ellipse(ctx context.Context, spec EllipseSpec) error {
	major, minor, err := spec.Axes()
	if err != nil {
		return err
	}
	return a.draw(ctx, "sketch.ellipse", func(ctx context.Context, sm ports.Object) error {
		c := Pt(spec.CX, spec.CY)
		return create(ctx, sm, "CreateEllipse", coords(c, r2.Add(c, r2.Vec{X: major}), r2.Add(c, r2.Vec{Y: minor}))...)
	})
}

// Spline draws a spline through points, optionally closed.
func (a *Adapter) Spline(ctx context.Context, points []r2.Vec, closed bool) error {
	if len(points) < 2 {
		return domain.Invalid("spline needs at least 2 points, got %d", len(points))
	}
	flat := make([]float64, 0, 3*len(points))
	for _, p := range points {
		q := units.SketchPoint(p.X, p.Y)
		flat = append(flat, q[:]...)
	}
	return a.draw(ctx, "sketch.spline", func(ctx context.Context, sm ports.Object) error {
		return create(ctx, sm, "CreateSpline2", flat, closed)
	})
}

// AddRelation constrains the selected sketch entities. Name is an English or
// German relation name such as "horizontal" or "senkrecht".
func (a *Adapter) AddRelation(ctx context.Context, name string) error {
	rel, err := domain.ParseRelation(name)
	if err != nil {
		return err
	}
	return a.s.Do(ctx, "sketch.add_relation", func(ctx context.Context) error {
		model, err := a.s.Part()
		if err != nil {
			return err
		}
		_, err = model.Call(ctx, "SketchAddConstraints", int32(rel))
		return err
	})
}

func (a *Adapter) manager(ctx context.Context) (ports.Object, error) {
	if _, err := a.s.Part(); err != nil {
		return nil, err
	}
	return a.s.SketchManager(ctx)
}

func (a *Adapter) draw(ctx context.Context, op string, fn func(context.Context, ports.Object) error) error {
	return a.s.Do(ctx, op, func(ctx context.Context) error {
		sm, err := a.manager(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, sm)
	})
}

func (a *Adapter) line(ctx context.Context, sm ports.Object, seg Segment) error {
	return create(ctx, sm, "CreateLine", coords(seg.Start, seg.End)...)
}

func (a *Adapter) arc(ctx context.Context, sm ports.Object, arc Arc) error {
	start, end := arc.Endpoints()
	args := append(coords(arc.Center, start, end), arc.Direction())
	return create(ctx, sm, "CreateArc", args...)
}

// create calls a sketch-creation method and treats a nil segment as failure.
// The host returns nil when no sketch is open or the geometry is rejected.
func create(ctx context.Context, sm ports.Object, method string, args ...any) error {
	v, err := sm.Call(ctx, method, args...)
	if err != nil {
		return err
	}
	if v == nil {
		return domain.NewHostError(method, "no segment created (is a sketch open?)")
	}
	return nil
}

// coords flattens sketch points to native x, y, z argument triples.
func coords(points ...r2.Vec) []any {
	out := make([]any, 0, 3*len(points))
	for _, p := range points {
		q := units.SketchPoint(p.X, p.Y)
		out = append(out, q[0], q[1], q[2])
	}
	return out
}
