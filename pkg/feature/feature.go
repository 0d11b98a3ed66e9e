// Package feature creates 3D features on the host from the current sketch
// or selection.
//
// Each feature is described by a Params struct whose Args method yields the
// host's positional argument list. The adapter fills those structs from
// design-unit requests (millimetres, degrees) and checks that the host
// actually produced a feature.
package feature

import (
	"context"
	"fmt"
	"math"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
	"github.com/aretw0/cadbridge/pkg/selection"
	"github.com/aretw0/cadbridge/pkg/session"
	"github.com/aretw0/cadbridge/pkg/sketch"
	"github.com/aretw0/cadbridge/pkg/units"
	"gonum.org/v1/gonum/spatial/r2"
)

// Adapter issues feature calls against the session's current part.
type Adapter struct {
	s      *session.Session
	sketch *sketch.Adapter
}

// New returns a feature adapter bound to s.
func New(s *session.Session) *Adapter {
	return &Adapter{s: s, sketch: sketch.New(s)}
}

// ExtrudeOptions tunes Extrude. The zero value is a blind forward extrusion
// without draft.
type ExtrudeOptions struct {
	Direction    domain.Direction    `mapstructure:"direction"`
	DraftAngle   float64             `mapstructure:"draft_angle"`
	EndCondition domain.EndCondition `mapstructure:"end_condition"`
}

// ExtrusionFor builds the extrusion parameters for a depth in millimetres.
// Both splits the depth evenly between the two sides.
func ExtrusionFor(depth float64, opts ExtrudeOptions) (ExtrusionParams, error) {
	if !opts.Direction.Valid() {
		return ExtrusionParams{}, domain.Invalid("extrude direction %d", int(opts.Direction))
	}
	if !throughAll(opts.EndCondition) && depth <= 0 {
		return ExtrusionParams{}, domain.Invalid("extrude depth must be positive, got %g", depth)
	}
	d := units.ToNativeLength(depth)
	draft := units.ToNativeAngle(opts.DraftAngle)

	p := DefaultExtrusion()
	p.T1 = opts.EndCondition
	p.Dchk1 = opts.DraftAngle != 0
	p.Dang1 = draft
	switch opts.Direction {
	case domain.DirectionBoth:
		p.SingleDir = false
		p.T2 = opts.EndCondition
		p.D1, p.D2 = d/2, d/2
		p.Dchk2 = p.Dchk1
		p.Dang2 = draft
	default:
		p.Flip = opts.Direction == domain.DirectionReverse
		p.D1 = d
	}
	return p, nil
}

// Extrude turns the last closed sketch into a boss.
func (a *Adapter) Extrude(ctx context.Context, depth float64, opts ExtrudeOptions) error {
	p, err := ExtrusionFor(depth, opts)
	if err != nil {
		return err
	}
	return a.s.Do(ctx, "feature.extrude", func(ctx context.Context) error {
		return a.insert(ctx, "FeatureExtrusion3", p.Args())
	})
}

// CutOptions tunes Cut. Both is not supported.
type CutOptions struct {
	Direction  domain.Direction `mapstructure:"direction"`
	ThroughAll bool             `mapstructure:"through_all"`
}

// CutFor builds the cut parameters for a depth in millimetres.
func CutFor(depth float64, opts CutOptions) (CutParams, error) {
	switch opts.Direction {
	case domain.DirectionForward, domain.DirectionReverse:
	case domain.DirectionBoth:
		return CutParams{}, domain.Invalid("cut does not support both directions")
	default:
		return CutParams{}, domain.Invalid("cut direction %d", int(opts.Direction))
	}
	if !opts.ThroughAll && depth <= 0 {
		return CutParams{}, domain.Invalid("cut depth must be positive, got %g", depth)
	}
	p := DefaultCut()
	p.Flip = opts.Direction == domain.DirectionReverse
	p.D1 = units.ToNativeLength(depth)
	if opts.ThroughAll {
		p.T1 = domain.EndThroughAll
	}
	return p, nil
}

// Cut removes material along the last closed sketch.
func (a *Adapter) Cut(ctx context.Context, depth float64, opts CutOptions) error {
	p, err := CutFor(depth, opts)
	if err != nil {
		return err
	}
	return a.s.Do(ctx, "feature.cut", func(ctx context.Context) error {
		return a.insert(ctx, "FeatureCut", p.Args())
	})
}

// Chamfer bevels the selected edges by distance (mm) at angle (degrees).
func (a *Adapter) Chamfer(ctx context.Context, distance, angle float64) error {
	if distance <= 0 {
		return domain.Invalid("chamfer distance must be positive, got %g", distance)
	}
	if angle <= 0 || angle >= 90 {
		return domain.Invalid("chamfer angle must be between 0 and 90 degrees, got %g", angle)
	}
	p := DefaultChamfer()
	p.Width = units.ToNativeLength(distance)
	p.Angle = units.ToNativeAngle(angle)
	return a.s.Do(ctx, "feature.chamfer", func(ctx context.Context) error {
		return a.insert(ctx, "InsertFeatureChamfer", p.Args())
	})
}

// Fillet rounds the selected edges with radius (mm).
func (a *Adapter) Fillet(ctx context.Context, radius float64) error {
	if radius <= 0 {
		return domain.Invalid("fillet radius must be positive, got %g", radius)
	}
	p := DefaultFillet()
	p.R1 = units.ToNativeLength(radius)
	return a.s.Do(ctx, "feature.fillet", func(ctx context.Context) error {
		return a.insert(ctx, "FeatureFillet3", p.Args())
	})
}

// HolePositions returns n points evenly spaced on a circle of diameter pitch,
// starting at start degrees.
func HolePositions(n int, pitch, start float64) []r2.Vec {
	r := pitch / 2
	out := make([]r2.Vec, n)
	for i := range out {
		t := units.ToNativeAngle(start + float64(i)*360/float64(n))
		out[i] = r2.Vec{X: r * math.Cos(t), Y: r * math.Sin(t)}
	}
	return out
}

// CircularHolePattern cuts n holes of diameter holeD on a pitch circle of
// diameter pitchD on the Front plane. Each hole is its own sketch and cut.
func (a *Adapter) CircularHolePattern(ctx context.Context, n int, holeD, pitchD, depth, startAngle float64) error {
	switch {
	case n < 1:
		return domain.Invalid("hole count must be at least 1, got %d", n)
	case holeD <= 0:
		return domain.Invalid("hole diameter must be positive, got %g", holeD)
	case pitchD <= 0:
		return domain.Invalid("pitch diameter must be positive, got %g", pitchD)
	case depth <= 0:
		return domain.Invalid("hole depth must be positive, got %g", depth)
	}
	return a.s.Do(ctx, "feature.circular_hole_pattern", func(ctx context.Context) error {
		for i, c := range HolePositions(n, pitchD, startAngle) {
			if err := a.sketch.Start(ctx, string(domain.PlaneFront)); err != nil {
				return fmt.Errorf("hole %d: %w", i+1, err)
			}
			if err := a.sketch.Circle(ctx, sketch.CircleSpec{CX: c.X, CY: c.Y, Diameter: holeD}); err != nil {
				return fmt.Errorf("hole %d: %w", i+1, err)
			}
			if err := a.sketch.End(ctx); err != nil {
				return fmt.Errorf("hole %d: %w", i+1, err)
			}
			if err := a.Cut(ctx, depth, CutOptions{}); err != nil {
				return fmt.Errorf("hole %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// LinearPattern repeats the selected features count times along axis.
func (a *Adapter) LinearPattern(ctx context.Context, axis domain.Axis, count int, spacing float64) error {
	if count < 1 {
		return domain.Invalid("pattern count must be at least 1, got %d", count)
	}
	if spacing <= 0 {
		return domain.Invalid("pattern spacing must be positive, got %g", spacing)
	}
	if !axis.Valid() {
		return fmt.Errorf("%w: axis %d", domain.ErrUnknownName, int(axis))
	}
	p := DefaultLinearPattern()
	p.D1Num = int32(count)
	p.D1Spacing = units.ToNativeLength(spacing)
	p.D2Spacing = p.D1Spacing
	p.D1 = axis.Vector()
	return a.s.Do(ctx, "feature.linear_pattern", func(ctx context.Context) error {
		return a.insert(ctx, "FeatureLinearPattern4", p.Args())
	})
}

// RevolveOptions tunes Revolve. Axis names the sketch centerline the profile
// revolves around.
type RevolveOptions struct {
	Axis      domain.Axis      `mapstructure:"axis"`
	Direction domain.Direction `mapstructure:"direction"`
}

// RevolutionFor builds revolve parameters for an angle in degrees.
// Both revolves symmetrically about the sketch plane.
func RevolutionFor(angle float64, opts RevolveOptions, cut bool) (RevolveParams, error) {
	if angle <= 0 || angle > 360 {
		return RevolveParams{}, domain.Invalid("revolve angle must be in (0, 360], got %g", angle)
	}
	if !opts.Direction.Valid() {
		return RevolveParams{}, domain.Invalid("revolve direction %d", int(opts.Direction))
	}
	p := DefaultRevolve()
	p.IsCut = cut
	p.Dir1Angle = units.ToNativeAngle(angle)
	switch opts.Direction {
	case domain.DirectionBoth:
		if cut {
			return RevolveParams{}, domain.Invalid("revolve cut does not support both directions")
		}
		p.SingleDir = false
		p.Dir1Type = domain.EndMidPlane
	case domain.DirectionReverse:
		p.ReverseDir = true
	}
	return p, nil
}

// Revolve turns the last closed sketch around its centerline.
func (a *Adapter) Revolve(ctx context.Context, angle float64, opts RevolveOptions) error {
	if !opts.Axis.Valid() {
		return fmt.Errorf("%w: axis %d", domain.ErrUnknownName, int(opts.Axis))
	}
	p, err := RevolutionFor(angle, opts, false)
	if err != nil {
		return err
	}
	return a.s.Do(ctx, "feature.revolve", func(ctx context.Context) error {
		a.s.Logger().Debug("Revolve", "axis", opts.Axis.String(), "angle", angle)
		return a.insert(ctx, "FeatureRevolve2", p.Args())
	})
}

// RevolveCut removes material by revolving the last closed sketch.
func (a *Adapter) RevolveCut(ctx context.Context, angle float64, direction domain.Direction) error {
	p, err := RevolutionFor(angle, RevolveOptions{Direction: direction}, true)
	if err != nil {
		return err
	}
	return a.s.Do(ctx, "feature.revolve_cut", func(ctx context.Context) error {
		return a.insert(ctx, "FeatureRevolve2", p.Args())
	})
}

// ReferencePlane creates a plane offset (mm) from basePlane.
func (a *Adapter) ReferencePlane(ctx context.Context, offset float64, basePlane string) error {
	if offset == 0 || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return domain.Invalid("reference plane offset must be non-zero, got %g", offset)
	}
	if basePlane == "" {
		basePlane = string(domain.PlaneFront)
	}
	p := RefPlaneParams{FirstConstraint: RefPlaneOffset, FirstValue: units.ToNativeLength(offset)}
	return a.s.Do(ctx, "feature.reference_plane", func(ctx context.Context) error {
		if err := selection.SelectByID(ctx, a.s, string(domain.ResolvePlane(basePlane)), domain.EntityPlane, false); err != nil {
			return err
		}
		return a.insert(ctx, "InsertRefPlane", p.Args())
	})
}

// Mirror mirrors the selected features about plane.
func (a *Adapter) Mirror(ctx context.Context, plane string) error {
	if plane == "" {
		plane = string(domain.PlaneRight)
	}
	p := DefaultMirror()
	return a.s.Do(ctx, "feature.mirror", func(ctx context.Context) error {
		if err := selection.SelectByID(ctx, a.s, string(domain.ResolvePlane(plane)), domain.EntityPlane, true); err != nil {
			return err
		}
		return a.insert(ctx, "InsertMirrorFeature2", p.Args())
	})
}

// insert calls a feature-creation method and treats a nil feature as failure.
func (a *Adapter) insert(ctx context.Context, method string, args []any) error {
	if _, err := a.s.Part(); err != nil {
		return err
	}
	fm, err := a.s.FeatureManager(ctx)
	if err != nil {
		return err
	}
	v, err := fm.Call(ctx, method, args...)
	if err != nil {
		return err
	}
	if _, ok := ports.AsObject(v); !ok {
		return domain.NewHostError(method, "host created no feature")
	}
	return nil
}

func throughAll(e domain.EndCondition) bool {
	return e == domain.EndThroughAll || e == domain.EndThroughAllBoth
}
