// Package selection drives the host's selection set: by name, by ray cast,
// and by walking the bodies of the current part.
package selection

import (
	"context"
	"fmt"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
	"github.com/aretw0/cadbridge/pkg/session"
	"github.com/aretw0/cadbridge/pkg/units"
	"gonum.org/v1/gonum/spatial/r3"
)

// RayRadius is the pick tolerance of a ray cast, in metres.
const RayRadius = 0.001

// solidBodies is the host's body-type filter for solid bodies.
const solidBodies int32 = 0

// DefaultRayDirection points down the -Z axis.
var DefaultRayDirection = r3.Vec{Z: -1}

// Adapter selects entities in the session's current document.
type Adapter struct {
	s *session.Session
}

// New returns a selection adapter bound to s.
func New(s *session.Session) *Adapter {
	return &Adapter{s: s}
}

// ByID selects an entity by its host name, e.g. "Front Plane" or "Boss-Extrude1".
// A host that cannot find the entity yields a *domain.HostError.
func (a *Adapter) ByID(ctx context.Context, name string, entity domain.EntityType, add bool) error {
	if name == "" {
		return domain.Invalid("selection name is required")
	}
	return a.s.Do(ctx, "selection.by_id", func(ctx context.Context) error {
		return SelectByID(ctx, a.s, name, entity, add)
	})
}

// SelectByID issues the select-by-name call directly. It must run inside s.Do.
func SelectByID(ctx context.Context, s *session.Session, name string, entity domain.EntityType, add bool) error {
	ext, err := s.Extension(ctx)
	if err != nil {
		return err
	}
	ok, err := ext.Call(ctx, "SelectByID2", name, string(entity), 0.0, 0.0, 0.0, add, int32(0), ports.Null, int32(0))
	if err != nil {
		return err
	}
	if !ports.AsBool(ok) {
		return domain.NewHostError("SelectByID2", fmt.Sprintf("%s %q not found", entity, name))
	}
	return nil
}

// ByRay selects the first entity of type kind hit by a ray from origin (mm).
// A zero direction casts along -Z.
func (a *Adapter) ByRay(ctx context.Context, origin, direction r3.Vec, kind domain.SelectionType) error {
	if kind != domain.SelectEdges && kind != domain.SelectFaces && kind != domain.SelectVertices {
		return fmt.Errorf("%w: selection type %d", domain.ErrUnknownName, int32(kind))
	}
	if direction == (r3.Vec{}) {
		direction = DefaultRayDirection
	}
	return a.s.Do(ctx, "selection.by_ray", func(ctx context.Context) error {
		ext, err := a.s.Extension(ctx)
		if err != nil {
			return err
		}
		ok, err := ext.Call(ctx, "SelectByRay",
			units.ToNativeLength(origin.X), units.ToNativeLength(origin.Y), units.ToNativeLength(origin.Z),
			direction.X, direction.Y, direction.Z,
			RayRadius, int32(kind), false, int32(0), int32(0),
		)
		if err != nil {
			return err
		}
		if !ports.AsBool(ok) {
			return domain.NewHostError("SelectByRay", fmt.Sprintf("no %s at (%g, %g, %g)", kind, origin.X, origin.Y, origin.Z))
		}
		return nil
	})
}

// FaceAt selects the face hit by a -Z ray from (x, y, z).
func (a *Adapter) FaceAt(ctx context.Context, x, y, z float64) error {
	return a.ByRay(ctx, r3.Vec{X: x, Y: y, Z: z}, DefaultRayDirection, domain.SelectFaces)
}

// EdgeAt selects the edge hit by a -Z ray from (x, y, z).
func (a *Adapter) EdgeAt(ctx context.Context, x, y, z float64) error {
	return a.ByRay(ctx, r3.Vec{X: x, Y: y, Z: z}, DefaultRayDirection, domain.SelectEdges)
}

// AllEdges appends every edge of every solid body to the selection and
// returns how many edges were selected.
func (a *Adapter) AllEdges(ctx context.Context) (int, error) {
	var n int
	err := a.s.Do(ctx, "selection.all_edges", func(ctx context.Context) error {
		bodies, err := a.bodies(ctx)
		if err != nil {
			return err
		}
		for _, body := range bodies {
			v, err := body.Call(ctx, "GetEdges")
			if err != nil {
				return err
			}
			for _, edge := range ports.AsObjects(v) {
				ok, err := edge.Call(ctx, "Select4", true, ports.Null)
				if err != nil {
					return err
				}
				if ports.AsBool(ok) {
					n++
				}
			}
		}
		return nil
	})
	return n, err
}

// Count returns the number of selected objects.
func (a *Adapter) Count(ctx context.Context) (int, error) {
	var n int32
	err := a.s.Do(ctx, "selection.count", func(ctx context.Context) error {
		sm, err := a.s.SelectionManager(ctx)
		if err != nil {
			return err
		}
		v, err := sm.Call(ctx, "GetSelectedObjectCount2", int32(-1))
		if err != nil {
			return err
		}
		n, err = ports.AsInt32(v)
		return err
	})
	return int(n), err
}

// Clear empties the selection set.
func (a *Adapter) Clear(ctx context.Context) error {
	return a.s.Do(ctx, "selection.clear", func(ctx context.Context) error {
		model, err := a.s.Model()
		if err != nil {
			return err
		}
		_, err = model.Call(ctx, "ClearSelection2", true)
		return err
	})
}

// FirstBody returns the first solid body of the part, or domain.ErrNotFound.
func (a *Adapter) FirstBody(ctx context.Context) (ports.Object, error) {
	var body ports.Object
	err := a.s.Do(ctx, "selection.first_body", func(ctx context.Context) error {
		bodies, err := a.bodies(ctx)
		if err != nil {
			return err
		}
		if len(bodies) == 0 {
			return fmt.Errorf("solid body: %w", domain.ErrNotFound)
		}
		body = bodies[0]
		return nil
	})
	return body, err
}

func (a *Adapter) bodies(ctx context.Context) ([]ports.Object, error) {
	model, err := a.s.Part()
	if err != nil {
		return nil, err
	}
	v, err := model.Call(ctx, "GetBodies2", solidBodies, true)
	if err != nil {
		return nil, err
	}
	return ports.AsObjects(v), nil
}
