package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/cadbridge/pkg/adapters/memory"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHost_Contract(t *testing.T) {
	ports.RunHostContract(t, memory.NewHost())
}

func TestMemoryHost_Unreachable(t *testing.T) {
	_, err := memory.NewHost(memory.Unreachable()).Dial(context.Background())
	assert.ErrorIs(t, err, domain.ErrConnection)
}

func activeDoc(t *testing.T, h *memory.Host) ports.Object {
	t.Helper()
	app, err := h.Dial(context.Background())
	require.NoError(t, err)
	v, err := app.Get(context.Background(), "ActiveDoc")
	require.NoError(t, err)
	doc, ok := ports.AsObject(v)
	require.True(t, ok)
	return doc
}

func manager(t *testing.T, doc ports.Object, name string) ports.Object {
	t.Helper()
	v, err := doc.Get(context.Background(), name)
	require.NoError(t, err)
	m, ok := ports.AsObject(v)
	require.True(t, ok)
	return m
}

func TestMemoryHost_SketchOutsideSketchModeFails(t *testing.T) {
	h := memory.NewHost()
	sm := manager(t, activeDoc(t, h), "SketchManager")

	seg, err := sm.Call(context.Background(), "CreateLine", 0.0, 0.0, 0.0, 0.01, 0.0, 0.0)
	require.NoError(t, err)
	assert.Nil(t, seg, "host returns nothing when no sketch is open")
}

func TestMemoryHost_ExtrudeNeedsClosedSketch(t *testing.T) {
	ctx := context.Background()
	h := memory.NewHost()
	doc := activeDoc(t, h)
	sm := manager(t, doc, "SketchManager")
	fm := manager(t, doc, "FeatureManager")

	f, err := fm.Call(ctx, "FeatureExtrusion3")
	require.NoError(t, err)
	assert.Nil(t, f)

	_, _ = sm.Call(ctx, "InsertSketch", true)
	_, _ = sm.Call(ctx, "CreateCircle", 0.0, 0.0, 0.0, 0.01, 0.0, 0.0)
	_, _ = sm.Call(ctx, "InsertSketch", true)

	f, err = fm.Call(ctx, "FeatureExtrusion3")
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, 1, h.Features()["FeatureExtrusion3"])
	assert.Equal(t, []string{"InsertSketch", "CreateCircle", "InsertSketch", "FeatureExtrusion3"}, h.Methods()[1:])
}

func TestMemoryHost_OpenDocReportsCodes(t *testing.T) {
	ctx := context.Background()
	h := memory.NewHost(memory.WithFile("/parts/a.sldprt"))
	app, err := h.Dial(ctx)
	require.NoError(t, err)

	var errs, warns ports.Out
	doc, err := app.Call(ctx, "OpenDoc6", "/parts/missing.sldprt", int32(1), int32(1), "", &errs, &warns)
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, int32(2), errs.Value)

	doc, err = app.Call(ctx, "OpenDoc6", "/parts/a.sldprt", int32(1), int32(1), "", &errs, &warns)
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Equal(t, []string{"Part1", "a.sldprt"}, h.Documents())
}

func TestMemoryHost_FailAndBreak(t *testing.T) {
	ctx := context.Background()
	h := memory.NewHost()
	ext := manager(t, activeDoc(t, h), "Extension")

	h.Fail("SelectByID2")
	ok, err := ext.Call(ctx, "SelectByID2", "Front Plane", "PLANE", 0.0, 0.0, 0.0, false, int32(0), ports.Null, int32(0))
	require.NoError(t, err)
	assert.False(t, ports.AsBool(ok))

	boom := errors.New("rpc server unavailable")
	h.Break(boom)
	_, err = ext.Call(ctx, "SelectByID2", "Front Plane")
	assert.ErrorIs(t, err, boom)

	h.Recover()
	ok, err = ext.Call(ctx, "SelectByID2", "Front Plane", "PLANE", 0.0, 0.0, 0.0, false, int32(0), ports.Null, int32(0))
	require.NoError(t, err)
	assert.True(t, ports.AsBool(ok))
	assert.Equal(t, 1, h.Selection())
}

func TestCall_String(t *testing.T) {
	c := memory.Call{Target: "SketchManager", Method: "CreateLine", Args: []any{0.0, 0.01, 0.0, true, &ports.Out{}}}
	assert.Equal(t, "SketchManager.CreateLine(0, 0.01, 0, true, &out)", c.String())
}
