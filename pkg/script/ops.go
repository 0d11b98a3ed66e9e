package script

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/feature"
	"github.com/aretw0/cadbridge/pkg/registry"
	"github.com/aretw0/cadbridge/pkg/sketch"
	"github.com/mitchellh/mapstructure"
	"gonum.org/v1/gonum/spatial/r2"
)

// Operations builds the operation catalogue bound to cad. Argument names
// follow the mapstructure tags of the argument structs below; lengths are
// millimetres and angles degrees.
func Operations(cad *cadbridge.Automation) *registry.Registry {
	r := registry.New()

	// Sketch
	register(r, "sketch.start", "Open a sketch on a plane (Front, Top, Right or a named plane).",
		func(ctx context.Context, a planeArgs) (any, error) { return nil, cad.NewSketch(ctx, a.Plane) })
	register(r, "sketch.end", "Close the open sketch.",
		func(ctx context.Context, _ noArgs) (any, error) { return nil, cad.EndSketch(ctx) })
	register(r, "sketch.line", "Draw a line from (x1, y1) to (x2, y2).",
		func(ctx context.Context, a segmentArgs) (any, error) {
			return nil, cad.Sketch().Line(ctx, a.X1, a.Y1, a.X2, a.Y2)
		})
	register(r, "sketch.circle", "Draw a circle from its center and a diameter or radius.",
		func(ctx context.Context, a sketch.CircleSpec) (any, error) { return nil, cad.Sketch().Circle(ctx, a) })
	register(r, "sketch.rectangle", "Draw a corner rectangle from two opposite corners.",
		func(ctx context.Context, a segmentArgs) (any, error) {
			return nil, cad.Sketch().Rectangle(ctx, a.X1, a.Y1, a.X2, a.Y2)
		})
	register(r, "sketch.center_rectangle", "Draw a rectangle centered on (cx, cy).",
		func(ctx context.Context, a centerRectArgs) (any, error) {
			return nil, cad.Sketch().CenterRectangle(ctx, a.CX, a.CY, a.Width, a.Height)
		})
	register(r, "sketch.arc", "Draw a center-point arc between two angles.",
		func(ctx context.Context, a arcArgs) (any, error) {
			return nil, cad.Sketch().Arc(ctx, a.CX, a.CY, a.Radius, a.StartAngle, a.EndAngle)
		})
	register(r, "sketch.three_point_arc", "Draw an arc through start, mid and end points.",
		func(ctx context.Context, a pointsArgs) (any, error) {
			if len(a.Points) != 3 {
				return nil, domain.Invalid("three_point_arc needs 3 points, got %d", len(a.Points))
			}
			p := a.vecs()
			return nil, cad.Sketch().ThreePointArc(ctx, p[0], p[1], p[2])
		})
	register(r, "sketch.polygon", "Draw a regular polygon inscribed in a circle.",
		func(ctx context.Context, a polygonArgs) (any, error) {
			return nil, cad.Sketch().Polygon(ctx, a.CX, a.CY, a.Radius, a.Sides)
		})
	register(r, "sketch.slot", "Draw a straight slot around a centerline.",
		func(ctx context.Context, a slotArgs) (any, error) {
			return nil, cad.Sketch().Slot(ctx, a.X1, a.Y1, a.X2, a.Y2, a.Width)
		})
	register(r, "sketch.ellipse", "Draw an axis-aligned ellipse.",
		func(ctx context.Context, a sketch.EllipseSpec) (any, error) { return nil, cad.Sketch().Ellipse(ctx, a) })
	register(r, "sketch.spline", "Draw a spline through points.",
		func(ctx context.Context, a pointsArgs) (any, error) {
			return nil, cad.Sketch().Spline(ctx, a.vecs(), a.Closed)
		})
	register(r, "sketch.relation", "Add a relation (horizontal, vertical, parallel, ...) to the selected entities.",
		func(ctx context.Context, a relationArgs) (any, error) {
			return nil, cad.Sketch().AddRelation(ctx, a.Name)
		})

	// Features
	register(r, "feature.extrude", "Extrude the open sketch as a boss.",
		func(ctx context.Context, a extrudeArgs) (any, error) {
			return nil, cad.Feature().Extrude(ctx, a.Depth, a.ExtrudeOptions)
		})
	register(r, "feature.cut", "Cut-extrude the open sketch.",
		func(ctx context.Context, a cutArgs) (any, error) {
			return nil, cad.Feature().Cut(ctx, a.Depth, a.CutOptions)
		})
	register(r, "feature.chamfer", "Chamfer the selected edges.",
		func(ctx context.Context, a chamferArgs) (any, error) {
			return nil, cad.Feature().Chamfer(ctx, a.Distance, a.Angle)
		})
	register(r, "feature.fillet", "Fillet the selected edges.",
		func(ctx context.Context, a filletArgs) (any, error) {
			return nil, cad.Feature().Fillet(ctx, a.Radius)
		})
	register(r, "feature.hole_pattern", "Cut holes evenly spaced on a pitch circle.",
		func(ctx context.Context, a holePatternArgs) (any, error) {
			return nil, cad.Feature().CircularHolePattern(ctx, a.Count, a.HoleDiameter, a.PitchDiameter, a.Depth, a.StartAngle)
		})
	register(r, "feature.linear_pattern", "Pattern the selected feature along an axis.",
		func(ctx context.Context, a linearPatternArgs) (any, error) {
			return nil, cad.Feature().LinearPattern(ctx, a.Axis, a.Count, a.Spacing)
		})
	register(r, "feature.revolve", "Revolve the open sketch around its centerline.",
		func(ctx context.Context, a revolveArgs) (any, error) {
			return nil, cad.Feature().Revolve(ctx, a.Angle, a.RevolveOptions)
		})
	register(r, "feature.revolve_cut", "Revolve-cut the open sketch around its centerline.",
		func(ctx context.Context, a revolveCutArgs) (any, error) {
			return nil, cad.Feature().RevolveCut(ctx, a.Angle, a.Direction)
		})
	register(r, "feature.reference_plane", "Create a plane offset from a base plane.",
		func(ctx context.Context, a refPlaneArgs) (any, error) {
			return nil, cad.Feature().ReferencePlane(ctx, a.Offset, a.BasePlane)
		})
	register(r, "feature.mirror", "Mirror the selected feature about a plane.",
		func(ctx context.Context, a planeArgs) (any, error) {
			return nil, cad.Feature().Mirror(ctx, a.Plane)
		})

	// Selection
	register(r, "selection.by_id", "Select an entity by name and type.",
		func(ctx context.Context, a selectArgs) (any, error) {
			entity, err := domain.ParseEntityType(a.Type)
			if err != nil {
				return nil, err
			}
			return nil, cad.Selection().ByID(ctx, a.Name, entity, a.Append)
		})
	register(r, "selection.face", "Select a face by name.",
		func(ctx context.Context, a nameArgs) (any, error) { return nil, cad.SelectFace(ctx, a.Name) })
	register(r, "selection.face_at", "Select the face hit by a ray cast down onto (x, y, z).",
		func(ctx context.Context, a pointArgs) (any, error) {
			return nil, cad.Selection().FaceAt(ctx, a.X, a.Y, a.Z)
		})
	register(r, "selection.edge_at", "Select the edge hit by a ray cast down onto (x, y, z).",
		func(ctx context.Context, a pointArgs) (any, error) {
			return nil, cad.Selection().EdgeAt(ctx, a.X, a.Y, a.Z)
		})
	register(r, "selection.all_edges", "Select every edge of the first body.",
		func(ctx context.Context, _ noArgs) (any, error) { return cad.Selection().AllEdges(ctx) })
	register(r, "selection.count", "Count the selected entities.",
		func(ctx context.Context, _ noArgs) (any, error) { return cad.Selection().Count(ctx) })
	register(r, "selection.clear", "Clear the selection.",
		func(ctx context.Context, _ noArgs) (any, error) { return nil, cad.ClearSelection(ctx) })

	// Documents
	register(r, "document.new_part", "Create a part document.",
		func(ctx context.Context, a templateArgs) (any, error) {
			return cad.Documents().NewPart(ctx, a.Template)
		})
	register(r, "document.new_assembly", "Create an assembly document.",
		func(ctx context.Context, a templateArgs) (any, error) {
			return cad.Documents().NewAssembly(ctx, a.Template)
		})
	register(r, "document.new_drawing", "Create a drawing document.",
		func(ctx context.Context, a templateArgs) (any, error) {
			return cad.Documents().NewDrawing(ctx, a.Template)
		})
	register(r, "document.open", "Open a document from disk.",
		func(ctx context.Context, a pathArgs) (any, error) { return cad.Documents().Open(ctx, a.Path) })
	register(r, "document.save", "Save the active document, optionally under a new path.",
		func(ctx context.Context, a savePathArgs) (any, error) { return nil, cad.Save(ctx, a.Path) })
	register(r, "document.close", "Close the active document.",
		func(ctx context.Context, a closeArgs) (any, error) { return nil, cad.Documents().Close(ctx, a.Save) })
	register(r, "document.close_all", "Close every open document.",
		func(ctx context.Context, a closeArgs) (any, error) { return cad.Documents().CloseAll(ctx, a.Save) })
	register(r, "document.title", "Return the title of the active document.",
		func(ctx context.Context, _ noArgs) (any, error) { return cad.Title(ctx) })

	// Model
	register(r, "model.rebuild", "Force a rebuild of the active document.",
		func(ctx context.Context, _ noArgs) (any, error) { return nil, cad.Rebuild(ctx) })
	register(r, "model.revision", "Return the host revision number.",
		func(ctx context.Context, _ noArgs) (any, error) { return cad.Revision(ctx) })

	// Recipes
	register(r, "recipe.box", "Build and save a centered box.",
		func(ctx context.Context, a boxArgs) (any, error) { return cad.Box(ctx, a.Width, a.Height, a.Depth) })
	register(r, "recipe.cylinder", "Build and save a cylinder.",
		func(ctx context.Context, a cylinderArgs) (any, error) {
			return cad.Cylinder(ctx, a.Diameter, a.Height)
		})
	register(r, "recipe.pipe", "Build and save a pipe.",
		func(ctx context.Context, a pipeArgs) (any, error) {
			return cad.Pipe(ctx, a.Outer, a.Inner, a.Length)
		})
	register(r, "recipe.plate", "Build and save a plate with through holes.",
		func(ctx context.Context, a plateArgs) (any, error) {
			return cad.PlateWithHoles(ctx, a.Length, a.Width, a.Thickness, a.HoleDiameter, toVecs(a.Positions))
		})
	register(r, "recipe.revolve", "Build and save a revolved profile.",
		func(ctx context.Context, a revolveRecipeArgs) (any, error) {
			return cad.Revolve(ctx, toVecs(a.Profile), a.Axis, a.Angle)
		})

	return r
}

type noArgs struct{}

type planeArgs struct {
	Plane string `mapstructure:"plane" desc:"plane name"`
}

type nameArgs struct {
	Name string `mapstructure:"name" required:"true"`
}

type segmentArgs struct {
	X1 float64 `mapstructure:"x1" required:"true"`
	Y1 float64 `mapstructure:"y1" required:"true"`
	X2 float64 `mapstructure:"x2" required:"true"`
	Y2 float64 `mapstructure:"y2" required:"true"`
}

type centerRectArgs struct {
	CX     float64 `mapstructure:"cx"`
	CY     float64 `mapstructure:"cy"`
	Width  float64 `mapstructure:"width" required:"true"`
	Height float64 `mapstructure:"height" required:"true"`
}

type arcArgs struct {
	CX         float64 `mapstructure:"cx"`
	CY         float64 `mapstructure:"cy"`
	Radius     float64 `mapstructure:"radius" required:"true"`
	StartAngle float64 `mapstructure:"start_angle" required:"true" desc:"degrees"`
	EndAngle   float64 `mapstructure:"end_angle" required:"true" desc:"degrees"`
}

type pointsArgs struct {
	Points [][2]float64 `mapstructure:"points" required:"true" desc:"list of [x, y] pairs"`
	Closed bool         `mapstructure:"closed"`
}

func (a pointsArgs) vecs() []r2.Vec { return toVecs(a.Points) }

type polygonArgs struct {
	CX     float64 `mapstructure:"cx"`
	CY     float64 `mapstructure:"cy"`
	Radius float64 `mapstructure:"radius" required:"true" desc:"circumscribed radius"`
	Sides  int     `mapstructure:"sides" required:"true"`
}

type slotArgs struct {
	X1    float64 `mapstructure:"x1" required:"true"`
	Y1    float64 `mapstructure:"y1" required:"true"`
	X2    float64 `mapstructure:"x2" required:"true"`
	Y2    float64 `mapstructure:"y2" required:"true"`
	Width float64 `mapstructure:"width" required:"true"`
}

type relationArgs struct {
	Name string `mapstructure:"name" required:"true" desc:"relation name, e.g. horizontal"`
}

type extrudeArgs struct {
	Depth                  float64 `mapstructure:"depth" required:"true"`
	feature.ExtrudeOptions `mapstructure:",squash"`
}

type cutArgs struct {
	Depth              float64 `mapstructure:"depth"`
	feature.CutOptions `mapstructure:",squash"`
}

type chamferArgs struct {
	Distance float64 `mapstructure:"distance" required:"true"`
	Angle    float64 `mapstructure:"angle" desc:"degrees, defaults to 45"`
}

type filletArgs struct {
	Radius float64 `mapstructure:"radius" required:"true"`
}

type holePatternArgs struct {
	Count         int     `mapstructure:"count" required:"true"`
	HoleDiameter  float64 `mapstructure:"hole_diameter" required:"true"`
	PitchDiameter float64 `mapstructure:"pitch_diameter" required:"true"`
	Depth         float64 `mapstructure:"depth" required:"true"`
	StartAngle    float64 `mapstructure:"start_angle" desc:"degrees"`
}

type linearPatternArgs struct {
	Axis    domain.Axis `mapstructure:"axis" required:"true" desc:"X, Y or Z"`
	Count   int         `mapstructure:"count" required:"true"`
	Spacing float64     `mapstructure:"spacing" required:"true"`
}

type revolveArgs struct {
	Angle                  float64 `mapstructure:"angle" desc:"degrees, defaults to 360"`
	feature.RevolveOptions `mapstructure:",squash"`
}

type revolveCutArgs struct {
	Angle     float64          `mapstructure:"angle" desc:"degrees, defaults to 360"`
	Direction domain.Direction `mapstructure:"direction"`
}

type refPlaneArgs struct {
	Offset    float64 `mapstructure:"offset" required:"true"`
	BasePlane string  `mapstructure:"base_plane"`
}

type selectArgs struct {
	Name   string `mapstructure:"name" required:"true"`
	Type   string `mapstructure:"type" required:"true" desc:"PLANE, FACE, EDGE, ..."`
	Append bool   `mapstructure:"append"`
}

type pointArgs struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
	Z float64 `mapstructure:"z"`
}

type templateArgs struct {
	Template string `mapstructure:"template" desc:"template path, defaults to the configured one"`
}

type pathArgs struct {
	Path string `mapstructure:"path" required:"true"`
}

type savePathArgs struct {
	Path string `mapstructure:"path" desc:"save as this path; empty saves in place"`
}

type closeArgs struct {
	Save bool `mapstructure:"save"`
}

type boxArgs struct {
	Width  float64 `mapstructure:"width" required:"true"`
	Height float64 `mapstructure:"height" required:"true"`
	Depth  float64 `mapstructure:"depth" required:"true"`
}

type cylinderArgs struct {
	Diameter float64 `mapstructure:"diameter" required:"true"`
	Height   float64 `mapstructure:"height" required:"true"`
}

type pipeArgs struct {
	Outer  float64 `mapstructure:"outer" required:"true"`
	Inner  float64 `mapstructure:"inner" required:"true"`
	Length float64 `mapstructure:"length" required:"true"`
}

type plateArgs struct {
	Length       float64      `mapstructure:"length" required:"true"`
	Width        float64      `mapstructure:"width" required:"true"`
	Thickness    float64      `mapstructure:"thickness" required:"true"`
	HoleDiameter float64      `mapstructure:"hole_diameter" required:"true"`
	Positions    [][2]float64 `mapstructure:"positions" desc:"hole centers as [x, y] pairs"`
}

type revolveRecipeArgs struct {
	Profile [][2]float64 `mapstructure:"profile" required:"true" desc:"closed profile as [x, y] pairs"`
	Axis    domain.Axis  `mapstructure:"axis" desc:"X or Y"`
	Angle   float64      `mapstructure:"angle" desc:"degrees, defaults to 360"`
}

func toVecs(pairs [][2]float64) []r2.Vec {
	out := make([]r2.Vec, len(pairs))
	for i, p := range pairs {
		out[i] = sketch.Pt(p[0], p[1])
	}
	return out
}

// register binds fn under name, decoding the loose argument map into T.
func register[T any](r *registry.Registry, name, description string, fn func(context.Context, T) (any, error)) {
	r.Register(registry.Entry{
		Name:        name,
		Description: description,
		Params:      paramsOf(reflect.TypeOf((*T)(nil)).Elem()),
		Fn: func(ctx context.Context, args map[string]any) (any, error) {
			var in T
			if d, ok := any(&in).(defaulter); ok {
				d.defaults()
			}
			if err := Decode(args, &in); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return fn(ctx, in)
		},
	})
}

// defaulter is implemented by argument structs whose zero values are not
// the documented defaults.
type defaulter interface{ defaults() }

func (a *chamferArgs) defaults()       { a.Angle = 45 }
func (a *revolveArgs) defaults()       { a.Angle = 360 }
func (a *revolveCutArgs) defaults()    { a.Angle = 360 }
func (a *revolveRecipeArgs) defaults() { a.Angle = 360 }

// Decode copies loosely typed arguments into out. Unknown keys are
// rejected. Enum fields accept their names ("both", "X", "blind") and
// directions also accept the codes 1, -1 and 0.
func Decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.DecodeHookFuncType(directionCodeHook),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
	}
	return nil
}

var directionType = reflect.TypeOf(domain.Direction(0))

func directionCodeHook(from, to reflect.Type, data any) (any, error) {
	if to != directionType {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return domain.DirectionFromCode(v)
	case int64:
		return domain.DirectionFromCode(int(v))
	case float64:
		if v != float64(int(v)) {
			return nil, domain.Invalid("direction code %v", v)
		}
		return domain.DirectionFromCode(int(v))
	}
	return data, nil
}

func paramsOf(t reflect.Type) []registry.Param {
	var out []registry.Param
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if strings.Contains(tag, "squash") {
			out = append(out, paramsOf(f.Type)...)
			continue
		}
		if tag == "" {
			continue
		}
		out = append(out, registry.Param{
			Name:        tag,
			Type:        typeName(f.Type),
			Description: f.Tag.Get("desc"),
			Required:    f.Tag.Get("required") == "true",
		})
	}
	return out
}

func typeName(t reflect.Type) string {
	switch t {
	case directionType:
		return "direction"
	case reflect.TypeOf(domain.Axis(0)):
		return "axis"
	case reflect.TypeOf(domain.EndCondition(0)):
		return "end_condition"
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Int, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	}
	return "string"
}
