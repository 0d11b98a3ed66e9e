package cadbridge_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/pkg/adapters/memory"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/middleware"
	"github.com/aretw0/cadbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestNew_Preconditions(t *testing.T) {
	ctx := context.Background()

	_, err := cadbridge.New(ctx, memory.NewHost(memory.Unreachable()))
	assert.ErrorIs(t, err, domain.ErrConnection)

	_, err = cadbridge.New(ctx, memory.NewHost(memory.WithoutDocument()))
	assert.ErrorIs(t, err, domain.ErrNoActiveDocument)

	host := memory.NewHost(memory.WithActiveDocument(domain.DocumentDrawing, "Draw1"))
	_, err = cadbridge.New(ctx, host)
	assert.ErrorIs(t, err, domain.ErrWrongDocumentType)
	assert.Empty(t, host.Calls(), "no host method issued")
}

func TestWithoutDocument(t *testing.T) {
	ctx := context.Background()
	host := memory.NewHost(memory.WithoutDocument())

	cad, err := cadbridge.New(ctx, host, cadbridge.WithoutDocument())
	require.NoError(t, err)

	err = cad.NewSketch(ctx, "Front")
	assert.ErrorIs(t, err, domain.ErrNoActiveDocument)
	assert.Empty(t, host.Calls())

	_, err = cad.Documents().NewPart(ctx, "")
	require.NoError(t, err)
	require.NoError(t, cad.NewSketch(ctx, "Front"))
}

// unreadableApp dials fine but cannot report its active document.
type unreadableApp struct{ closed atomic.Int32 }

func (a *unreadableApp) Call(context.Context, string, ...any) (any, error) { return nil, nil }

func (a *unreadableApp) Get(context.Context, string) (any, error) {
	return nil, errors.New("RPC call rejected")
}

func (a *unreadableApp) Close() error {
	a.closed.Add(1)
	return nil
}

func TestNew_ReleasesAppOnFailure(t *testing.T) {
	ctx := context.Background()

	for _, opts := range [][]cadbridge.Option{nil, {cadbridge.WithoutDocument()}} {
		app := &unreadableApp{}
		dialer := ports.DialerFunc(func(context.Context) (ports.Object, error) { return app, nil })

		_, err := cadbridge.New(ctx, dialer, opts...)
		assert.ErrorIs(t, err, domain.ErrConnection)
		assert.Equal(t, int32(1), app.closed.Load(), "application released")
	}
}

func TestTopLevel(t *testing.T) {
	ctx := context.Background()
	host := memory.NewHost(memory.WithBodies(1))
	cad, err := cadbridge.New(ctx, host)
	require.NoError(t, err)

	rev, err := cad.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, "31.1.0", rev)

	title, err := cad.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Part1", title)

	require.NoError(t, cad.Rebuild(ctx))
	assert.Equal(t, false, host.CallsTo("ForceRebuild3")[0].Args[0])

	err = cad.SelectFace(ctx, "Face<1>")
	assert.ErrorIs(t, err, domain.ErrHostOperation)
	require.NoError(t, cad.ClearSelection(ctx))

	require.NoError(t, cad.Save(ctx, "/out/a.sldprt"))
	assert.Len(t, host.CallsTo("SaveAs"), 1)

	cad.Close()
	assert.ErrorIs(t, cad.Rebuild(ctx), domain.ErrNotConnected)
}

func TestWithHooks_SeesCallsAndOperations(t *testing.T) {
	ctx := context.Background()
	var calls, ops int32
	hooks := domain.Hooks{
		OnCall:      func(context.Context, *domain.CallEvent) { atomic.AddInt32(&calls, 1) },
		OnOperation: func(context.Context, *domain.OperationEvent) { atomic.AddInt32(&ops, 1) },
	}
	cad, err := cadbridge.New(ctx, memory.NewHost(), cadbridge.WithHooks(hooks))
	require.NoError(t, err)

	require.NoError(t, cad.NewSketch(ctx, "Top"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&ops))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestWithBreaker(t *testing.T) {
	ctx := context.Background()
	host := memory.NewHost()
	cfg := middleware.DefaultBreakerConfig()
	cfg.FailureThreshold = 2
	cad, err := cadbridge.New(ctx, host, cadbridge.WithBreaker(cfg))
	require.NoError(t, err)

	host.Break(errors.New("RPC server unavailable"))
	for i := 0; i < 2; i++ {
		assert.Error(t, cad.Rebuild(ctx))
	}
	assert.ErrorIs(t, cad.Rebuild(ctx), domain.ErrCircuitOpen)
}

func TestRecipes(t *testing.T) {
	ctx := context.Background()

	t.Run("cylinder", func(t *testing.T) {
		host := memory.NewHost()
		cad, err := cadbridge.New(ctx, host)
		require.NoError(t, err)
		res, err := cad.Cylinder(ctx, 40, 80)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Features)
		assert.Len(t, host.CallsTo("CreateCircle"), 1)
	})

	t.Run("pipe", func(t *testing.T) {
		host := memory.NewHost()
		cad, err := cadbridge.New(ctx, host)
		require.NoError(t, err)

		_, err = cad.Pipe(ctx, 20, 20, 100)
		assert.ErrorIs(t, err, domain.ErrInvalidParameter)
		assert.Empty(t, host.Calls())

		res, err := cad.Pipe(ctx, 30, 20, 100)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Features)
		cut := host.CallsTo("FeatureCut")
		require.Len(t, cut, 1)
		assert.Equal(t, int32(domain.EndThroughAll), cut[0].Args[3])
	})

	t.Run("revolve", func(t *testing.T) {
		host := memory.NewHost()
		cad, err := cadbridge.New(ctx, host)
		require.NoError(t, err)

		cone := []r2.Vec{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 0, Y: 50}}
		res, err := cad.Revolve(ctx, cone, domain.AxisY, 360)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Features)
		// Three profile edges, closing edge included, plus the centerline.
		assert.Len(t, host.CallsTo("CreateLine"), 4)

		_, err = cad.Revolve(ctx, cone, domain.AxisZ, 360)
		assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	})

	t.Run("plate with holes", func(t *testing.T) {
		host := memory.NewHost()
		cad, err := cadbridge.New(ctx, host)
		require.NoError(t, err)

		holes := []r2.Vec{{X: 20, Y: 15}, {X: 80, Y: 15}, {X: 20, Y: 35}, {X: 80, Y: 35}}
		res, err := cad.PlateWithHoles(ctx, 100, 50, 10, 8, holes)
		require.NoError(t, err)
		assert.Equal(t, 5, res.Features)
		assert.Equal(t, 4, host.Features()["FeatureCut"])
		assert.Len(t, host.CallsTo("Save3"), 1)
	})

	t.Run("host failure is reported", func(t *testing.T) {
		host := memory.NewHost()
		cad, err := cadbridge.New(ctx, host)
		require.NoError(t, err)
		host.Fail("FeatureExtrusion3")

		_, err = cad.Box(ctx, 10, 10, 10)
		assert.ErrorIs(t, err, domain.ErrHostOperation)
		assert.Contains(t, err.Error(), "box")
		assert.Empty(t, host.CallsTo("Save3"))
	})
}
