package cadbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/feature"
	"github.com/aretw0/cadbridge/pkg/sketch"
	"gonum.org/v1/gonum/spatial/r2"
)

// axisLineHalfLength is the half length (mm) of the centerline drawn for revolves.
const axisLineHalfLength = 100

// RecipeResult summarizes a completed recipe.
type RecipeResult struct {
	Name     string        `json:"name"`
	Title    string        `json:"title"`
	Features int           `json:"features"`
	Duration time.Duration `json:"duration"`
}

func (r RecipeResult) String() string {
	return fmt.Sprintf("%s: %d feature(s) in %s", r.Name, r.Features, r.Title)
}

// recipe runs steps under one session operation, saves in place and reports.
func (a *Automation) recipe(ctx context.Context, name string, steps func(ctx context.Context, count func()) error) (RecipeResult, error) {
	res := RecipeResult{Name: name}
	start := time.Now()
	err := a.session.Do(ctx, "recipe."+name, func(ctx context.Context) error {
		if err := steps(ctx, func() { res.Features++ }); err != nil {
			return err
		}
		if err := a.Save(ctx, ""); err != nil {
			return err
		}
		title, err := a.Title(ctx)
		res.Title = title
		return err
	})
	res.Duration = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("%s: %w", name, err)
	}
	a.logger.Info("Recipe complete", "recipe", name, "features", res.Features, "title", res.Title)
	return res, nil
}

// profile draws one closed sketch on the Front plane.
func (a *Automation) profile(ctx context.Context, draw func(ctx context.Context) error) error {
	if err := a.NewSketch(ctx, string(domain.PlaneFront)); err != nil {
		return err
	}
	if err := draw(ctx); err != nil {
		return err
	}
	return a.EndSketch(ctx)
}

// Box builds a w x h rectangle centered on the origin extruded by d.
func (a *Automation) Box(ctx context.Context, w, h, d float64) (RecipeResult, error) {
	return a.recipe(ctx, "box", func(ctx context.Context, count func()) error {
		if err := a.profile(ctx, func(ctx context.Context) error {
			return a.sketch.RectangleCentered(ctx, w, h, 0, 0)
		}); err != nil {
			return err
		}
		if err := a.feature.Extrude(ctx, d, feature.ExtrudeOptions{}); err != nil {
			return err
		}
		count()
		return nil
	})
}

// Cylinder builds a circle of diameter on the origin extruded by height.
func (a *Automation) Cylinder(ctx context.Context, diameter, height float64) (RecipeResult, error) {
	return a.recipe(ctx, "cylinder", func(ctx context.Context, count func()) error {
		if err := a.profile(ctx, func(ctx context.Context) error {
			return a.sketch.Circle(ctx, sketch.CircleSpec{Diameter: diameter})
		}); err != nil {
			return err
		}
		if err := a.feature.Extrude(ctx, height, feature.ExtrudeOptions{}); err != nil {
			return err
		}
		count()
		return nil
	})
}

// Revolve draws profile as a polyline, closes it, adds a centerline along
// axis (X or Y) and revolves it by angle degrees.
func (a *Automation) Revolve(ctx context.Context, profile []r2.Vec, axis domain.Axis, angle float64) (RecipeResult, error) {
	if len(profile) < 3 {
		return RecipeResult{Name: "revolve"}, domain.Invalid("revolve profile needs at least 3 points, got %d", len(profile))
	}
	var centerline sketch.Segment
	switch axis {
	case domain.AxisX:
		centerline = sketch.Segment{Start: sketch.Pt(-axisLineHalfLength, 0), End: sketch.Pt(axisLineHalfLength, 0)}
	case domain.AxisY:
		centerline = sketch.Segment{Start: sketch.Pt(0, -axisLineHalfLength), End: sketch.Pt(0, axisLineHalfLength)}
	default:
		return RecipeResult{Name: "revolve"}, domain.Invalid("revolve axis must lie in the sketch plane (X or Y), got %s", axis)
	}

	return a.recipe(ctx, "revolve", func(ctx context.Context, count func()) error {
		if err := a.profile(ctx, func(ctx context.Context) error {
			for i := 0; i < len(profile)-1; i++ {
				if err := a.line(ctx, profile[i], profile[i+1]); err != nil {
					return err
				}
			}
			if first, last := profile[0], profile[len(profile)-1]; first != last {
				if err := a.line(ctx, last, first); err != nil {
					return err
				}
			}
			return a.line(ctx, centerline.Start, centerline.End)
		}); err != nil {
			return err
		}
		if err := a.feature.Revolve(ctx, angle, feature.RevolveOptions{Axis: axis}); err != nil {
			return err
		}
		count()
		return nil
	})
}

// Pipe builds a hollow cylinder: an outer boss with a through-all bore.
func (a *Automation) Pipe(ctx context.Context, outer, inner, length float64) (RecipeResult, error) {
	if inner <= 0 || inner >= outer {
		return RecipeResult{Name: "pipe"}, domain.Invalid("pipe inner diameter %g must be positive and below outer diameter %g", inner, outer)
	}
	return a.recipe(ctx, "pipe", func(ctx context.Context, count func()) error {
		if err := a.profile(ctx, func(ctx context.Context) error {
			return a.sketch.Circle(ctx, sketch.CircleSpec{Diameter: outer})
		}); err != nil {
			return err
		}
		if err := a.feature.Extrude(ctx, length, feature.ExtrudeOptions{}); err != nil {
			return err
		}
		count()
		if err := a.profile(ctx, func(ctx context.Context) error {
			return a.sketch.Circle(ctx, sketch.CircleSpec{Diameter: inner})
		}); err != nil {
			return err
		}
		if err := a.feature.Cut(ctx, 0, feature.CutOptions{ThroughAll: true}); err != nil {
			return err
		}
		count()
		return nil
	})
}

// PlateWithHoles builds an l x w plate of thickness t with its corner on the
// origin and a through hole of diameter holeD at each position.
func (a *Automation) PlateWithHoles(ctx context.Context, l, w, t, holeD float64, positions []r2.Vec) (RecipeResult, error) {
	return a.recipe(ctx, "plate", func(ctx context.Context, count func()) error {
		if err := a.profile(ctx, func(ctx context.Context) error {
			return a.sketch.Rectangle(ctx, 0, 0, l, w)
		}); err != nil {
			return err
		}
		if err := a.feature.Extrude(ctx, t, feature.ExtrudeOptions{}); err != nil {
			return err
		}
		count()
		for i, p := range positions {
			if err := a.profile(ctx, func(ctx context.Context) error {
				return a.sketch.Circle(ctx, sketch.CircleSpec{CX: p.X, CY: p.Y, Diameter: holeD})
			}); err != nil {
				return fmt.Errorf("hole %d: %w", i+1, err)
			}
			if err := a.feature.Cut(ctx, 0, feature.CutOptions{ThroughAll: true}); err != nil {
				return fmt.Errorf("hole %d: %w", i+1, err)
			}
			count()
		}
		return nil
	})
}

func (a *Automation) line(ctx context.Context, p, q r2.Vec) error {
	return a.sketch.Line(ctx, p.X, p.Y, q.X, q.Y)
}
