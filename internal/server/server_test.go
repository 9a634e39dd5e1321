package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varuna/varuna/internal/config"
	"github.com/varuna/varuna/internal/di"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		DataDir:             t.TempDir(),
		Port:                0,
		AllowedOrigins:      []string{"*"},
		RecomputeSchedule:   "0 0 2 * * *",
		MaintenanceSchedule: "0 15 * * * *",
		BackupSchedule:      "0 30 3 * * *",
	}

	container, err := di.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	return New(Config{
		Log:       zerolog.Nop(),
		Config:    cfg,
		Container: container,
		Port:      cfg.Port,
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestServer_Health(t *testing.T) {
	srv := testServer(t)

	rec, body := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	databases, ok := body["databases"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, databases, 4)
	for name, status := range databases {
		assert.Equal(t, "ok", status, "database %s", name)
	}
}

func TestServer_ListRoutes(t *testing.T) {
	srv := testServer(t)

	rec, body := doJSON(t, srv.Router(), http.MethodGet, "/api/routes/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5, body["count"])

	routes, ok := body["routes"].([]interface{})
	require.True(t, ok)
	first, ok := routes[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "R002", first["routeId"])
	assert.Equal(t, true, first["isBaseline"])
}

func TestServer_Comparison(t *testing.T) {
	srv := testServer(t)

	rec, body := doJSON(t, srv.Router(), http.MethodGet, "/api/routes/comparison?comparisonRouteId=R001", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "R002", body["baselineRouteId"])
	assert.Equal(t, "R001", body["comparisonRouteId"])
	// 91.0 vs 76.5 baseline
	assert.InDelta(t, (91.0/76.5-1)*100, body["percentDiff"].(float64), 1e-9)
	assert.Equal(t, false, body["compliant"])
}

func TestServer_SetBaseline(t *testing.T) {
	srv := testServer(t)

	rec, body := doJSON(t, srv.Router(), http.MethodPost, "/api/routes/R004/baseline", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "R004", body["routeId"])
	assert.Equal(t, true, body["isBaseline"])

	rec, _ = doJSON(t, srv.Router(), http.MethodPost, "/api/routes/NOPE/baseline", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ComplianceBalance(t *testing.T) {
	srv := testServer(t)

	rec, body := doJSON(t, srv.Router(), http.MethodGet, "/api/compliance/cb?shipId=R001&year=2024", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "R001", body["shipId"])
	assert.Equal(t, "DEFICIT", body["status"])
	// (89.3368 - 91.0) * 5000 * 41000
	assert.InDelta(t, (89.3368-91.0)*5000*41000, body["cbGco2eq"].(float64), 1e-3)

	rec, _ = doJSON(t, srv.Router(), http.MethodGet, "/api/compliance/cb?shipId=UNKNOWN&year=2024", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, srv.Router(), http.MethodGet, "/api/compliance/cb?shipId=R001&year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_BankingFlow(t *testing.T) {
	srv := testServer(t)

	// Materialize the balance first, then bank against it
	rec, _ := doJSON(t, srv.Router(), http.MethodGet, "/api/compliance/cb?shipId=R004&year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, srv.Router(), http.MethodPost, "/api/banking/bank", map[string]interface{}{
		"shipId":       "R004",
		"year":         2024,
		"amountGco2eq": 1000.0,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	entry, ok := body["entry"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "BANK", entry["transactionType"])

	rec, body = doJSON(t, srv.Router(), http.MethodGet, "/api/banking/records?shipId=R004&year=2024", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])
	assert.InDelta(t, 1000.0, body["availableBankedGco2eq"].(float64), 1e-9)

	// Over-application is a rule violation
	rec, _ = doJSON(t, srv.Router(), http.MethodPost, "/api/banking/apply", map[string]interface{}{
		"shipId":       "R004",
		"year":         2024,
		"amountGco2eq": 5000.0,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = doJSON(t, srv.Router(), http.MethodPost, "/api/banking/apply", map[string]interface{}{
		"shipId":       "R004",
		"year":         2024,
		"amountGco2eq": 400.0,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Pools(t *testing.T) {
	srv := testServer(t)

	// Single-ship pools are rejected at the API boundary
	rec, _ := doJSON(t, srv.Router(), http.MethodPost, "/api/pools/", map[string]interface{}{
		"year":    2024,
		"shipIds": []string{"R001"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := doJSON(t, srv.Router(), http.MethodPost, "/api/pools/", map[string]interface{}{
		"year":    2024,
		"shipIds": []string{"R001", "R004"},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	pool, ok := body["pool"].(map[string]interface{})
	require.True(t, ok)
	poolID := pool["id"].(float64)

	rec, _ = doJSON(t, srv.Router(), http.MethodGet, fmt.Sprintf("/api/pools/%d", int64(poolID)), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, srv.Router(), http.MethodGet, "/api/pools/?year=2024", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])
}

func TestServer_FleetStats(t *testing.T) {
	srv := testServer(t)

	rec, body := doJSON(t, srv.Router(), http.MethodGet, "/api/analytics/fleet", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5, body["routeCount"])
	assert.InDelta(t, 89.3368, body["targetIntensity"].(float64), 1e-9)
}

func TestServer_Jobs(t *testing.T) {
	srv := testServer(t)

	rec, body := doJSON(t, srv.Router(), http.MethodGet, "/api/system/jobs", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	jobs, ok := body["jobs"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, jobs, "recompute_balances")

	rec, _ = doJSON(t, srv.Router(), http.MethodPost, "/api/system/jobs/recompute_balances/run", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The recompute job fills in every missing balance
	rec, body = doJSON(t, srv.Router(), http.MethodGet, "/api/compliance/cb?shipId=R005&year=2024", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SURPLUS", body["status"])

	rec, _ = doJSON(t, srv.Router(), http.MethodPost, "/api/system/jobs/no_such_job/run", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
