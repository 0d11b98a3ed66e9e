package sketch_test

import (
	"context"
	"testing"

	"github.com/aretw0/cadbridge/pkg/adapters/memory"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/session"
	"github.com/aretw0/cadbridge/pkg/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func setup(t *testing.T, opts ...memory.Option) (*memory.Host, *sketch.Adapter) {
	t.Helper()
	host := memory.NewHost(opts...)
	s, err := session.Connect(context.Background(), host)
	require.NoError(t, err)
	return host, sketch.New(s)
}

func floats(t *testing.T, args []any) []float64 {
	t.Helper()
	out := make([]float64, 0, len(args))
	for _, a := range args {
		f, ok := a.(float64)
		require.True(t, ok, "argument %v is %T", a, a)
		out = append(out, f)
	}
	return out
}

func TestStart(t *testing.T) {
	ctx := context.Background()
	host, sk := setup(t)

	require.NoError(t, sk.Start(ctx, "Vorne"))
	calls := host.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "SelectByID2", calls[0].Method)
	assert.Equal(t, "Front Plane", calls[0].Args[0])
	assert.Equal(t, "PLANE", calls[0].Args[1])
	assert.Equal(t, "InsertSketch", calls[1].Method)

	err := sk.Start(ctx, "Does Not Exist")
	assert.ErrorIs(t, err, domain.ErrHostOperation)
}

func TestCircle_DiameterEqualsRadius(t *testing.T) {
	ctx := context.Background()
	host, sk := setup(t)
	require.NoError(t, sk.Start(ctx, "Front"))

	require.NoError(t, sk.Circle(ctx, sketch.CircleSpec{Diameter: 20}))
	require.NoError(t, sk.Circle(ctx, sketch.CircleSpec{Radius: 10}))

	circles := host.CallsTo("CreateCircle")
	require.Len(t, circles, 2)
	assert.Equal(t, circles[0].Args, circles[1].Args)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0.01, 0, 0}, floats(t, circles[0].Args), 1e-12)
}

func TestCircle_InvalidIssuesNoCall(t *testing.T) {
	ctx := context.Background()
	host, sk := setup(t)
	require.NoError(t, sk.Start(ctx, "Front"))
	host.Reset()

	err := sk.Circle(ctx, sketch.CircleSpec{Diameter: 20, Radius: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	assert.Empty(t, host.Calls())
}

func TestPolygon_IssuesWraparound(t *testing.T) {
	ctx := context.Background()
	host, sk := setup(t)
	require.NoError(t, sk.Start(ctx, "Front"))

	require.NoError(t, sk.Polygon(ctx, 0, 0, 10, 6))
	lines := host.CallsTo("CreateLine")
	require.Len(t, lines, 6)

	first := floats(t, lines[0].Args)
	last := floats(t, lines[5].Args)
	assert.InDeltaSlice(t, first[:3], last[3:], 1e-12)
	assert.InDelta(t, -0.01, first[1], 1e-12)
}

func TestSlot_Calls(t *testing.T) {
	ctx := context.Background()
	host, sk := setup(t)
	require.NoError(t, sk.Start(ctx, "Front"))

	require.NoError(t, sk.Slot(ctx, 0, 0, 100, 0, 20))
	assert.Len(t, host.CallsTo("CreateLine"), 2)
	arcs := host.CallsTo("CreateArc")
	require.Len(t, arcs, 2)
	assert.Equal(t, int32(1), arcs[0].Args[9])

	host.Reset()
	err := sk.Slot(ctx, 1, 1, 1, 1, 20)
	assert.ErrorIs(t, err, domain.ErrDegenerateGeometry)
	assert.Empty(t, host.Calls())
}

func TestDrawWithoutSketch(t *testing.T) {
	ctx := context.Background()
	_, sk := setup(t)

	err := sk.Line(ctx, 0, 0, 10, 0)
	var he *domain.HostError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "CreateLine", he.Method)
}

func TestOtherPrimitives(t *testing.T) {
	ctx := context.Background()
	host, sk := setup(t)
	require.NoError(t, sk.Start(ctx, "Top"))

	require.NoError(t, sk.RectangleCentered(ctx, 100, 50, 0, 0))
	require.NoError(t, sk.CenterRectangle(ctx, 0, 0, 10, 10))
	require.NoError(t, sk.Arc(ctx, 0, 0, 5, 0, 90))
	require.NoError(t, sk.ThreePointArc(ctx, sketch.Pt(0, 0), sketch.Pt(5, 5), sketch.Pt(10, 0)))
	require.NoError(t, sk.Ellipse(ctx, sketch.EllipseSpec{MajorRadius: 20, MinorRadius: 10}))
	require.NoError(t, sk.Spline(ctx, []r2.Vec{sketch.Pt(0, 0), sketch.Pt(10, 5), sketch.Pt(20, 0)}, false))
	require.NoError(t, sk.End(ctx))

	rect := host.CallsTo("CreateCornerRectangle")
	require.Len(t, rect, 1)
	assert.InDeltaSlice(t, []float64{-0.05, -0.025, 0, 0.05, 0.025, 0}, floats(t, rect[0].Args), 1e-12)

	spline := host.CallsTo("CreateSpline2")
	require.Len(t, spline, 1)
	assert.Len(t, spline[0].Args[0], 9)
	assert.Equal(t, false, spline[0].Args[1])

	err := sk.Spline(ctx, []r2.Vec{sketch.Pt(0, 0)}, false)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	err = sk.ThreePointArc(ctx, sketch.Pt(0, 0), sketch.Pt(1, 1), sketch.Pt(2, 2))
	assert.ErrorIs(t, err, domain.ErrDegenerateGeometry)
}

func TestAddRelation(t *testing.T) {
	ctx := context.Background()
	host, sk := setup(t)

	require.NoError(t, sk.AddRelation(ctx, "Senkrecht"))
	calls := host.CallsTo("SketchAddConstraints")
	require.Len(t, calls, 1)
	assert.Equal(t, int32(domain.RelationPerpendicular), calls[0].Args[0])

	err := sk.AddRelation(ctx, "sideways")
	assert.ErrorIs(t, err, domain.ErrUnknownName)
}

func TestNotConnected(t *testing.T) {
	sk := sketch.New(nil)
	err := sk.Line(context.Background(), 0, 0, 1, 1)
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}
