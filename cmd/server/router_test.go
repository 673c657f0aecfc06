package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wabisaby/toolrank/internal/handler"
	"github.com/wabisaby/toolrank/internal/model"
	"github.com/wabisaby/toolrank/internal/service"
)

type statusCounter map[int]int

func (s statusCounter) ObserveRequest(status int) { s[status]++ }

func rankedSnapshot(t *testing.T) *model.Snapshot {
	t.Helper()
	ab := model.NewTool(map[string]any{"Name": "AB", "Type": "Open-Source", "Repo": "a/b", "Best For": "Tables"})
	ab.Stars, ab.Popularity = 50, "50 Stars / 1 Forks"
	cd := model.NewTool(map[string]any{"Name": "CD", "Type": "Open-Source", "Repo": "c/d"})
	cd.Stars, cd.Popularity = 120, "120 Stars / 3 Forks"
	paid := model.NewTool(map[string]any{"Name": "Paid", "Type": "Proprietary", "Price": "$99"})
	paid.Popularity = model.PopularityUnavailable

	snap, err := model.NewSnapshot(service.Rank([]model.Tool{ab, paid, cd}))
	require.NoError(t, err)
	return snap
}

func newTestRouter(t *testing.T, snap *model.Snapshot, counter statusCounter) http.Handler {
	t.Helper()
	var observer handler.RequestObserver
	if counter != nil {
		observer = counter
	}
	return NewRouter(handler.NewToolsHandler(snap, observer), zap.NewNop())
}

func TestRouter_GetTools(t *testing.T) {
	counter := statusCounter{}
	router := newTestRouter(t, rankedSnapshot(t), counter)

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var tools []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tools))
	require.Len(t, tools, 3)

	assert.Equal(t, "CD", tools[0]["Name"])
	assert.EqualValues(t, 1, tools[0]["Rank"])
	assert.EqualValues(t, 120, tools[0]["Stars"])
	assert.Equal(t, "AB", tools[1]["Name"])
	assert.EqualValues(t, 2, tools[1]["Rank"])
	assert.Equal(t, "Tables", tools[1]["Best For"])
	assert.Equal(t, "Paid", tools[2]["Name"])
	assert.NotContains(t, tools[2], "Rank")
	assert.Equal(t, "N/A", tools[2]["Popularity"])

	assert.Equal(t, 1, counter[http.StatusOK])
}

func TestRouter_EmptySnapshotReturns500(t *testing.T) {
	snap, err := model.NewSnapshot(nil)
	require.NoError(t, err)
	counter := statusCounter{}
	router := newTestRouter(t, snap, counter)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error": "No tools available, check backend setup"}`, rec.Body.String())
	assert.Equal(t, 1, counter[http.StatusInternalServerError])
}

func TestRouter_NilSnapshotReturns500(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_OnlyToolsRoute(t *testing.T) {
	router := newTestRouter(t, rankedSnapshot(t), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tools", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, rankedSnapshot(t), nil)

	req := httptest.NewRequest(http.MethodOptions, "/tools", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_SnapshotServedRepeatedly(t *testing.T) {
	snap := rankedSnapshot(t)
	router := newTestRouter(t, snap, nil)

	var first string
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		if i == 0 {
			first = rec.Body.String()
			continue
		}
		assert.Equal(t, first, rec.Body.String())
	}
}
