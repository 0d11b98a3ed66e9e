package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/internal/testutils"
	cadhttp "github.com/aretw0/cadbridge/pkg/adapters/http"
	"github.com/aretw0/cadbridge/pkg/adapters/memory"
	"github.com/aretw0/cadbridge/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, host *memory.Host, opts ...cadbridge.Option) *httptest.Server {
	t.Helper()
	cad := testutils.NewAutomation(t, host, opts...)
	srv := httptest.NewServer(cadhttp.NewHandler(cad, cadhttp.WithMaxBodyBytes(4096)))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealthAndStatus(t *testing.T) {
	srv := newServer(t, memory.NewHost())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var st cadbridge.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "Part1", st.Document)
	assert.Equal(t, "31.1.0", st.Revision)
}

func TestListOperations(t *testing.T) {
	srv := newServer(t, memory.NewHost())
	resp, err := http.Get(srv.URL + "/v1/operations")
	require.NoError(t, err)
	defer resp.Body.Close()

	var entries []struct {
		Name   string `json:"name"`
		Params []struct {
			Name     string `json:"name"`
			Required bool   `json:"required"`
		} `json:"params"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	assert.True(t, names["feature.extrude"])
	assert.True(t, names["recipe.box"])
}

func TestExecuteOperation(t *testing.T) {
	host := memory.NewHost()
	srv := newServer(t, host)

	for _, step := range []struct{ op, body string }{
		{"sketch.start", `{"plane": "Top"}`},
		{"sketch.center_rectangle", `{"width": 40, "height": 20}`},
		{"sketch.end", ``},
		{"feature.extrude", `{"depth": 5}`},
	} {
		resp, out := post(t, srv.URL+"/v1/operations/"+step.op, step.body)
		require.Equal(t, http.StatusOK, resp.StatusCode, "%s: %v", step.op, out)
		assert.Equal(t, step.op, out["op"])
	}
	assert.Equal(t, 1, host.Features()["FeatureExtrusion3"])
}

func TestExecuteOperation_Errors(t *testing.T) {
	srv := newServer(t, memory.NewHost())

	tests := []struct {
		name, op, body string
		want           int
	}{
		{"unknown operation", "sketch.nope", `{}`, http.StatusNotFound},
		{"invalid argument", "sketch.polygon", `{"radius": 10, "sides": 2}`, http.StatusBadRequest},
		{"malformed body", "sketch.circle", `[1, 2]`, http.StatusBadRequest},
		{"body too large", "sketch.circle", `{"diameter": "` + strings.Repeat("9", 5000) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, srv.URL+"/v1/operations/"+tt.op, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestExecuteOperation_NoDocument(t *testing.T) {
	host := memory.NewHost(memory.WithoutDocument())
	srv := newServer(t, host, cadbridge.WithoutDocument())
	resp, _ := post(t, srv.URL+"/v1/operations/sketch.start", `{"plane": "Front"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Empty(t, host.Calls())
}

func TestRunScript(t *testing.T) {
	host := memory.NewHost()
	srv := newServer(t, host)

	resp, out := post(t, srv.URL+"/v1/scripts", `
name: http-plate
params: {n: 3}
steps:
  - repeat: {var: i, from: 1, to: "${n}"}
    steps:
      - op: sketch.start
        args: {plane: Front}
      - op: sketch.circle
        args: {cx: "${i * 10}", diameter: 4}
      - op: sketch.end
`)
	require.Equal(t, http.StatusOK, resp.StatusCode, out)
	assert.Equal(t, "http-plate", out["name"])
	assert.EqualValues(t, 9, out["operations"])
	assert.Len(t, host.CallsTo("CreateCircle"), 3)

	resp, out = post(t, srv.URL+"/v1/scripts", `steps: [{op: sketch.nope}]`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, out["error"], "sketch.nope")
	assert.Contains(t, out, "result")

	resp, _ = post(t, srv.URL+"/v1/scripts", `steps: [`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	cad := testutils.NewAutomation(t, nil, cadbridge.WithHooks(m.Hooks()))

	srv := httptest.NewServer(cadhttp.NewHandler(cad, cadhttp.WithGatherer(reg)))
	t.Cleanup(srv.Close)

	resp, _ := post(t, srv.URL+"/v1/operations/model.rebuild", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "cadbridge_host_calls_total")
}
