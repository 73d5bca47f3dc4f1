package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphweave/internal/config"
	"github.com/agenthands/graphweave/internal/core"
	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
	"github.com/agenthands/graphweave/internal/logging"
	"github.com/agenthands/graphweave/internal/metrics"
)

func setup(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w, err := core.NewWeaver(cfg, nil)
	require.NoError(t, err)
	w.Logger = logging.Nop

	reg := prometheus.NewRegistry()
	w.Metrics = metrics.New(reg)
	return NewServer(w, reg).SetupRouter()
}

func post(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestReconciliateEndpoint(t *testing.T) {
	r := setup(t, nil)
	rec := post(t, r, "/v1/reconciliate", ReconciliateRequest{
		Nodes: []model.Node{
			{ID: "0:source", Label: "source"},
			{ID: "0:source", Label: "source"},
			{ID: "A:target", Label: "target"},
		},
		Edges: []model.Edge{
			{ID: "e", SourceID: "0:source", TargetID: "A:target", Label: "link"},
			{ID: "e", SourceID: "0:source", TargetID: "A:target", Label: "link"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReconciliateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Nodes, 2)
	assert.Len(t, resp.Edges, 1)
}

func TestReconciliateEndpointEmpty(t *testing.T) {
	r := setup(t, nil)
	rec := post(t, r, "/v1/reconciliate", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, rec.Body.String())
}

func TestReconciliateEndpointMergeError(t *testing.T) {
	cfg := config.Default()
	cfg.Reconciliation.Nodes.Label = "ensure_identical"
	r := setup(t, cfg)

	rec := post(t, r, "/v1/reconciliate", ReconciliateRequest{Nodes: []model.Node{
		{ID: "a", Label: "x"},
		{ID: "a", Label: "y"},
	}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "merge", resp.Category)
	assert.Equal(t, gwerrors.ExitMerge, resp.ExitCode)
}

func TestReconciliateEndpointBadJSON(t *testing.T) {
	r := setup(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/reconciliate", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r := setup(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	post(t, r, "/v1/reconciliate", ReconciliateRequest{Nodes: []model.Node{{ID: "a", Label: "x"}, {ID: "a", Label: "x"}}})

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "graphweave_reconciliation_merged_groups_total")
}
