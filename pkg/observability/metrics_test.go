package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/pkg/adapters/memory"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	h := m.Hooks()
	ctx := context.Background()

	h.OnCallReturn(ctx, &domain.CallEvent{Kind: domain.CallMethod, Name: "InsertSketch", Duration: time.Millisecond})
	h.OnCallReturn(ctx, &domain.CallEvent{Kind: domain.CallMethod, Name: "InsertSketch", Err: errors.New("rpc")})
	h.OnCallReturn(ctx, &domain.CallEvent{Kind: domain.CallMethod, Name: "Save3", Err: domain.ErrCircuitOpen})
	h.OnOperationDone(ctx, &domain.OperationEvent{Operation: "sketch.start"})
	h.OnOperationDone(ctx, &domain.OperationEvent{Operation: "sketch.start", Err: domain.ErrNotConnected})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calls.WithLabelValues("method", "InsertSketch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallErrors.WithLabelValues("InsertSketch")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CallErrors.WithLabelValues("Save3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitRejections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("sketch.start", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("sketch.start", "error")))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)

	_, err = observability.NewMetrics(nil)
	assert.NoError(t, err)
}

func TestMetrics_Automation(t *testing.T) {
	ctx := context.Background()
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cad, err := cadbridge.New(ctx, memory.NewHost(),
		cadbridge.WithHooks(m.Hooks().Merge(observability.LogHooks(logger))))
	require.NoError(t, err)
	defer cad.Close()

	_, err = cad.Box(ctx, 10, 20, 30)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("method", "FeatureExtrusion3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("recipe.box", "ok")))
	assert.Contains(t, buf.String(), "name=FeatureExtrusion3")
}
