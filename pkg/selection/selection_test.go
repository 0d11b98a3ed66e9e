package selection_test

import (
	"context"
	"testing"

	"github.com/aretw0/cadbridge/pkg/adapters/memory"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/selection"
	"github.com/aretw0/cadbridge/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func setup(t *testing.T, opts ...memory.Option) (*memory.Host, *selection.Adapter) {
	t.Helper()
	host := memory.NewHost(opts...)
	s, err := session.Connect(context.Background(), host)
	require.NoError(t, err)
	return host, selection.New(s)
}

func TestByID(t *testing.T) {
	ctx := context.Background()
	host, sel := setup(t)

	require.NoError(t, sel.ByID(ctx, "Top Plane", domain.EntityPlane, false))
	require.NoError(t, sel.ByID(ctx, "Right Plane", domain.EntityPlane, true))
	assert.Equal(t, 2, host.Selection())

	calls := host.CallsTo("SelectByID2")
	require.Len(t, calls, 2)
	assert.Len(t, calls[0].Args, 9)
	assert.Equal(t, true, calls[1].Args[5])

	err := sel.ByID(ctx, "Boss-Extrude9", domain.EntityBodyFeature, false)
	assert.ErrorIs(t, err, domain.ErrHostOperation)
}

func TestByRay(t *testing.T) {
	ctx := context.Background()
	host, sel := setup(t, memory.WithBodies(1))

	require.NoError(t, sel.FaceAt(ctx, 10, 20, 50))
	calls := host.CallsTo("SelectByRay")
	require.Len(t, calls, 1)
	args := calls[0].Args
	assert.InDelta(t, 0.01, args[0], 1e-12)
	assert.InDelta(t, 0.02, args[1], 1e-12)
	assert.InDelta(t, 0.05, args[2], 1e-12)
	assert.Equal(t, -1.0, args[5])
	assert.Equal(t, selection.RayRadius, args[6])
	assert.Equal(t, int32(domain.SelectFaces), args[7])

	require.NoError(t, sel.ByRay(ctx, r3.Vec{}, r3.Vec{}, domain.SelectEdges))
	assert.Equal(t, -1.0, host.CallsTo("SelectByRay")[1].Args[5])

	err := sel.ByRay(ctx, r3.Vec{}, r3.Vec{}, domain.SelectionType(42))
	assert.ErrorIs(t, err, domain.ErrUnknownName)
}

func TestByRay_Miss(t *testing.T) {
	_, sel := setup(t)
	err := sel.EdgeAt(context.Background(), 0, 0, 0)
	assert.ErrorIs(t, err, domain.ErrHostOperation)
}

func TestAllEdges(t *testing.T) {
	ctx := context.Background()
	host, sel := setup(t, memory.WithBodies(2), memory.WithEdgesPerBody(12))

	n, err := sel.AllEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	assert.Equal(t, 24, host.Selection())

	count, err := sel.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, count)

	require.NoError(t, sel.Clear(ctx))
	count, err = sel.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFirstBody(t *testing.T) {
	ctx := context.Background()
	_, sel := setup(t)
	_, err := sel.FirstBody(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, sel = setup(t, memory.WithBodies(1))
	body, err := sel.FirstBody(ctx)
	require.NoError(t, err)
	assert.NotNil(t, body)
}
