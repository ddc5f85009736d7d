package analysis

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUniverse struct {
	symbols []string
}

func (f *fakeUniverse) Symbols() ([]string, error) {
	return f.symbols, nil
}

func newTestRouter(svc *Service) *chi.Mux {
	h := NewHandlers(svc, &fakeUniverse{symbols: []string{"A", "B", "C"}}, testLogger())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func runTestSession(t *testing.T, svc *Service) {
	t.Helper()
	_, err := svc.Run("2024-01-01", "2024-01-05", []string{"A", "B", "C"})
	require.NoError(t, err)
}

func doRequest(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlersRun(t *testing.T) {
	svc := newTestService(&fakePriceSource{table: lockstepTable()}, 0.68)
	router := newTestRouter(svc)

	body := []byte(`{"start": "2024-01-01", "end": "2024-01-05"}`)
	rec := doRequest(router, http.MethodPost, "/analysis/run", body)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary SessionSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "2024-01-01", summary.Start)
	assert.Equal(t, 3, summary.Symbols)
	assert.Equal(t, 2, summary.Communities)
	assert.Equal(t, 0.68, summary.Threshold)
}

func TestHandlersErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		withRun    bool
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{
			name:       "invalid date format",
			withRun:    false,
			method:     http.MethodPost,
			target:     "/analysis/run",
			body:       `{"start": "01/01/2024", "end": "2024-01-05"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			withRun:    false,
			method:     http.MethodPost,
			target:     "/analysis/run",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no session yet",
			withRun:    false,
			method:     http.MethodGet,
			target:     "/analysis/session",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "peers before first run",
			withRun:    false,
			method:     http.MethodGet,
			target:     "/analysis/peers/A",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown instrument",
			withRun:    true,
			method:     http.MethodGet,
			target:     "/analysis/peers/ZZZZ",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown correlation pair",
			withRun:    true,
			method:     http.MethodGet,
			target:     "/analysis/correlation?a=A&b=ZZZZ",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing correlation params",
			withRun:    true,
			method:     http.MethodGet,
			target:     "/analysis/correlation?a=A",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&fakePriceSource{table: lockstepTable()}, 0.68)
			if tt.withRun {
				runTestSession(t, svc)
			}
			router := newTestRouter(svc)

			rec := doRequest(router, tt.method, tt.target, []byte(tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var errResp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.NotEmpty(t, errResp["error"])
		})
	}
}

func TestHandlersPeers(t *testing.T) {
	svc := newTestService(&fakePriceSource{table: lockstepTable()}, 0.68)
	runTestSession(t, svc)
	router := newTestRouter(svc)

	rec := doRequest(router, http.MethodGet, "/analysis/peers/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PeersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A", resp.Symbol, "symbols are normalized to upper case")
	assert.Equal(t, []string{"B"}, resp.Peers)

	// A known symbol with no peers answers with an empty list, not an error
	rec = doRequest(router, http.MethodGet, "/analysis/peers/C", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{}, resp.Peers)
}

func TestHandlersCorrelation(t *testing.T) {
	svc := newTestService(&fakePriceSource{table: lockstepTable()}, 0.68)
	runTestSession(t, svc)
	router := newTestRouter(svc)

	rec := doRequest(router, http.MethodGet, "/analysis/correlation?a=A&b=B", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CorrelationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Correlation)
	assert.InDelta(t, 1.0, *resp.Correlation, 1e-9)
}

func TestHandlersCorrelationUndefinedIsNull(t *testing.T) {
	// FLAT never moves, so its correlation with anything is undefined
	table := lockstepTable()
	table.Symbols = append(table.Symbols, "FLAT")
	table.Close["FLAT"] = []float64{100, 100, 100, 100, 100}

	svc := newTestService(&fakePriceSource{table: table}, 0.68)
	_, err := svc.Run("2024-01-01", "2024-01-05", []string{"A", "B", "C", "FLAT"})
	require.NoError(t, err)
	router := newTestRouter(svc)

	rec := doRequest(router, http.MethodGet, "/analysis/correlation?a=A&b=FLAT", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Nil(t, raw["correlation"], "undefined correlation must serialize as null")
}

func TestHandlersRunFallsBackToUniverse(t *testing.T) {
	svc := newTestService(&fakePriceSource{table: lockstepTable()}, 0.68)
	router := newTestRouter(svc)

	body := []byte(`{"start": "2024-01-01", "end": "2024-01-05"}`)
	rec := doRequest(router, http.MethodPost, "/analysis/run", body)
	require.Equal(t, http.StatusOK, rec.Code)

	session, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, session.Matrix.Symbols())
}
