package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/commune-qc/internal/config"
	"github.com/sells-group/commune-qc/internal/engine"
	"github.com/sells-group/commune-qc/internal/model"
	"github.com/sells-group/commune-qc/internal/store"
	"github.com/sells-group/commune-qc/internal/taxonomy"
)

func newTestAPIServer(t *testing.T) *apiServer {
	t.Helper()

	cfg = &config.Config{
		Server: config.ServerConfig{RateLimit: 0},
		Scorer: config.ScorerConfig{
			PrimaryWeight:   0.30,
			SecondaryWeight: 0.60,
			TicketWeight:    0.05,
			GapWeight:       0.05,
			PassThreshold:   90.0,
		},
	}

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return &apiServer{
		analyzer: engine.New(taxonomy.Default(), cfg.Scorer),
		store:    st,
	}
}

func TestServeHealth(t *testing.T) {
	api := newTestAPIServer(t)
	srv := httptest.NewServer(api.router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeAnalyzeAndFetchRun(t *testing.T) {
	api := newTestAPIServer(t)
	srv := httptest.NewServer(api.router())
	defer srv.Close()

	req := analyzeRequest{
		Commune: "Sainte-Anne",
		Survey: []model.SiteRecord{
			{SiteKey: "IMB/1", Number: "10", Label: "grande rue", Category: "resolved", ReferenceAddress: "12 grande rue"},
		},
		Tracking: []model.TrackingRecord{
			{SiteKey: "IMB/1", Category: "resolved", Ticket501511: "501-1"},
		},
		Save: true,
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/analyze", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ar analyzeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ar))
	require.NotNil(t, ar.Result)
	assert.Equal(t, "Sainte-Anne", ar.Result.Commune)
	assert.Equal(t, model.StatusOK, ar.Result.Status)
	require.NotEmpty(t, ar.RunID)

	// The persisted run is retrievable.
	getResp, err := http.Get(srv.URL + "/api/runs/" + ar.RunID)
	require.NoError(t, err)
	defer getResp.Body.Close() //nolint:errcheck
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var run model.Run
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&run))
	assert.Equal(t, ar.RunID, run.ID)
	assert.Equal(t, "Sainte-Anne", run.Commune)

	// And shows up in the listing.
	listResp, err := http.Get(srv.URL + "/api/runs?commune=Sainte-Anne")
	require.NoError(t, err)
	defer listResp.Body.Close() //nolint:errcheck
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var listing struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listing))
	require.Len(t, listing.Runs, 1)
}

func TestServeAnalyzeBadBody(t *testing.T) {
	api := newTestAPIServer(t)
	srv := httptest.NewServer(api.router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/analyze", "application/json", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeGetRunNotFound(t *testing.T) {
	api := newTestAPIServer(t)
	srv := httptest.NewServer(api.router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/runs/nonexistent")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := rateLimitMiddleware(rate.Limit(1), 2)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	statuses := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:4321"
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	// Burst of 2, so the third immediate request is rejected.
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	// A different client has its own bucket.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:4321"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
