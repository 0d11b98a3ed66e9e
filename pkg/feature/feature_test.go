package feature_test

import (
	"context"
	"testing"

	"github.com/aretw0/cadbridge/pkg/adapters/memory"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/feature"
	"github.com/aretw0/cadbridge/pkg/selection"
	"github.com/aretw0/cadbridge/pkg/session"
	"github.com/aretw0/cadbridge/pkg/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	host   *memory.Host
	sketch *sketch.Adapter
	sel    *selection.Adapter
	feat   *feature.Adapter
}

func setup(t *testing.T, opts ...memory.Option) fixture {
	t.Helper()
	host := memory.NewHost(opts...)
	s, err := session.Connect(context.Background(), host)
	require.NoError(t, err)
	return fixture{host: host, sketch: sketch.New(s), sel: selection.New(s), feat: feature.New(s)}
}

func (f fixture) profile(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.sketch.Start(ctx, "Front"))
	require.NoError(t, f.sketch.RectangleCentered(ctx, 100, 50, 0, 0))
	require.NoError(t, f.sketch.End(ctx))
}

func TestExtrusionFor(t *testing.T) {
	p, err := feature.ExtrusionFor(20, feature.ExtrudeOptions{Direction: domain.DirectionBoth})
	require.NoError(t, err)
	assert.False(t, p.SingleDir)
	assert.InDelta(t, 0.01, p.D1, 1e-12)
	assert.InDelta(t, 0.01, p.D2, 1e-12)

	p, err = feature.ExtrusionFor(20, feature.ExtrudeOptions{Direction: domain.DirectionReverse, DraftAngle: 5})
	require.NoError(t, err)
	assert.True(t, p.SingleDir)
	assert.True(t, p.Flip)
	assert.InDelta(t, 0.02, p.D1, 1e-12)
	assert.Zero(t, p.D2)
	assert.True(t, p.Dchk1)
	assert.False(t, p.Dchk2)

	_, err = feature.ExtrusionFor(0, feature.ExtrudeOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	p, err = feature.ExtrusionFor(0, feature.ExtrudeOptions{EndCondition: domain.EndThroughAll})
	require.NoError(t, err)
	assert.Equal(t, domain.EndThroughAll, p.T1)
}

func TestExtrude_BothSides(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.profile(t)

	require.NoError(t, f.feat.Extrude(ctx, 20, feature.ExtrudeOptions{Direction: domain.DirectionBoth}))
	calls := f.host.CallsTo("FeatureExtrusion3")
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Args, 23)
	assert.Equal(t, false, calls[0].Args[0])
	assert.InDelta(t, 0.01, calls[0].Args[5], 1e-12)
	assert.InDelta(t, 0.01, calls[0].Args[6], 1e-12)
}

func TestExtrude_WithoutSketchIsHostError(t *testing.T) {
	f := setup(t)
	err := f.feat.Extrude(context.Background(), 10, feature.ExtrudeOptions{})
	var he *domain.HostError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "FeatureExtrusion3", he.Method)
}

func TestCut(t *testing.T) {
	ctx := context.Background()
	f := setup(t, memory.WithBodies(1))
	f.profile(t)

	err := f.feat.Cut(ctx, 10, feature.CutOptions{Direction: domain.DirectionBoth})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	require.NoError(t, f.feat.Cut(ctx, 0, feature.CutOptions{ThroughAll: true}))
	calls := f.host.CallsTo("FeatureCut")
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Args, 13)
	assert.Equal(t, int32(domain.EndThroughAll), calls[0].Args[3])
}

func TestCircularHolePattern(t *testing.T) {
	ctx := context.Background()
	f := setup(t, memory.WithBodies(1))

	require.NoError(t, f.feat.CircularHolePattern(ctx, 4, 8, 60, 10, 0))

	assert.Len(t, f.host.CallsTo("InsertSketch"), 8)
	assert.Len(t, f.host.CallsTo("FeatureCut"), 4)

	circles := f.host.CallsTo("CreateCircle")
	require.Len(t, circles, 4)
	want := [][2]float64{{30, 0}, {0, 30}, {-30, 0}, {0, -30}}
	for i, c := range circles {
		assert.InDelta(t, want[i][0]/1000, c.Args[0], 1e-12, "hole %d x", i)
		assert.InDelta(t, want[i][1]/1000, c.Args[1], 1e-12, "hole %d y", i)
		assert.InDelta(t, (want[i][0]+4)/1000, c.Args[3], 1e-12, "hole %d edge x", i)
	}
	for _, sel := range f.host.CallsTo("SelectByID2") {
		assert.Equal(t, "Front Plane", sel.Args[0])
	}

	err := f.feat.CircularHolePattern(ctx, 0, 8, 60, 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestHolePositions_StartAngle(t *testing.T) {
	ps := feature.HolePositions(2, 20, 90)
	require.Len(t, ps, 2)
	assert.InDelta(t, 0, ps[0].X, 1e-12)
	assert.InDelta(t, 10, ps[0].Y, 1e-12)
	assert.InDelta(t, -10, ps[1].Y, 1e-12)
}

func TestChamferAndFillet(t *testing.T) {
	ctx := context.Background()
	f := setup(t, memory.WithBodies(1))

	err := f.feat.Fillet(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrHostOperation, "nothing selected")

	_, err = f.sel.AllEdges(ctx)
	require.NoError(t, err)
	require.NoError(t, f.feat.Chamfer(ctx, 1, 45))

	ch := f.host.CallsTo("InsertFeatureChamfer")
	require.Len(t, ch, 1)
	assert.InDelta(t, 0.001, ch[0].Args[2], 1e-12)

	_, err = f.sel.AllEdges(ctx)
	require.NoError(t, err)
	require.NoError(t, f.feat.Fillet(ctx, 2))

	assert.ErrorIs(t, f.feat.Fillet(ctx, 0), domain.ErrInvalidParameter)
	assert.ErrorIs(t, f.feat.Chamfer(ctx, 1, 90), domain.ErrInvalidParameter)
}

func TestRevolve(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.profile(t)

	require.NoError(t, f.feat.Revolve(ctx, 180, feature.RevolveOptions{Axis: domain.AxisY, Direction: domain.DirectionBoth}))
	calls := f.host.CallsTo("FeatureRevolve2")
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Args, 20)
	assert.Equal(t, false, calls[0].Args[0])
	assert.Equal(t, int32(domain.EndMidPlane), calls[0].Args[6])

	err := f.feat.Revolve(ctx, 360, feature.RevolveOptions{Axis: domain.Axis(7)})
	assert.ErrorIs(t, err, domain.ErrUnknownName)

	f.profile(t)
	require.NoError(t, f.feat.RevolveCut(ctx, 90, domain.DirectionReverse))
	cut := f.host.CallsTo("FeatureRevolve2")[1]
	assert.Equal(t, true, cut.Args[3])
	assert.Equal(t, true, cut.Args[4])
}

func TestPatternPlaneMirror(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.profile(t)
	require.NoError(t, f.feat.Extrude(ctx, 10, feature.ExtrudeOptions{}))

	require.NoError(t, f.sel.ByID(ctx, "Boss-Extrude1", domain.EntityBodyFeature, false))
	require.NoError(t, f.feat.LinearPattern(ctx, domain.AxisZ, 3, 25))
	lp := f.host.CallsTo("FeatureLinearPattern4")
	require.Len(t, lp, 1)
	assert.Equal(t, int32(3), lp[0].Args[0])
	assert.InDelta(t, 0.025, lp[0].Args[1], 1e-12)
	assert.Equal(t, 1.0, lp[0].Args[8])

	require.NoError(t, f.feat.ReferencePlane(ctx, 15, "Top"))
	rp := f.host.CallsTo("InsertRefPlane")
	require.Len(t, rp, 1)
	assert.Equal(t, feature.RefPlaneOffset, rp[0].Args[0])
	assert.Equal(t, "Top Plane", f.host.CallsTo("SelectByID2")[2].Args[0])

	require.NoError(t, f.sel.ByID(ctx, "Boss-Extrude1", domain.EntityBodyFeature, false))
	require.NoError(t, f.feat.Mirror(ctx, "Rechts"))
	mirrorSel := f.host.CallsTo("SelectByID2")
	last := mirrorSel[len(mirrorSel)-1]
	assert.Equal(t, "Right Plane", last.Args[0])
	assert.Equal(t, true, last.Args[5])
	assert.Equal(t, 1, f.host.Features()["InsertMirrorFeature2"])

	assert.ErrorIs(t, f.feat.ReferencePlane(ctx, 0, "Top"), domain.ErrInvalidParameter)
}
