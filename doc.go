/*
Package cadbridge drives a running parametric CAD application (a
SolidWorks-class part modeller) through its automation object model.

It translates modelling requests in millimetres and degrees into the
positional parameter lists, native units (metres, radians) and enum codes the
host expects. The host's geometry kernel, solver and file formats stay
opaque: cadbridge only issues calls and checks the host's answers.

# Architecture

The host is reached through a single port, ports.Object, a late-bound
dispatch handle with Call and Get. Adapters implement it:

  - pkg/adapters/ole: COM automation on Windows.
  - pkg/adapters/memory: an in-process simulated host that records every
    call. It backs the tests, dry runs and the "plan" command.

Middleware (pkg/middleware) wraps host objects for instrumentation and
circuit breaking. Domain adapters (pkg/sketch, pkg/feature, pkg/selection,
pkg/document) run every operation through a pkg/session Session, which
serializes access to the one shared host.

# Usage

	ctx := context.Background()
	cad, err := cadbridge.New(ctx, ole.NewDialer())
	if err != nil {
		log.Fatal(err)
	}
	defer cad.Close()

	_ = cad.NewSketch(ctx, "Front")
	_ = cad.Sketch().RectangleCentered(ctx, 100, 50, 0, 0)
	_ = cad.EndSketch(ctx)
	_ = cad.Feature().Extrude(ctx, 20, feature.ExtrudeOptions{Direction: domain.DirectionBoth})
	_ = cad.Save(ctx, "")

Recipes (Box, Cylinder, Revolve, Pipe, PlateWithHoles) bundle common
sequences, and pkg/script runs declarative YAML or JSON modelling scripts.
The cadbridge command serves the same operations over HTTP and MCP.
*/
package cadbridge
