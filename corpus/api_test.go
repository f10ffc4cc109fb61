package corpus

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiServer(t *testing.T, svc *Service) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	svc.RegisterHTTP(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPI_Health(t *testing.T) {
	svc := testService(t)
	srv := apiServer(t, svc)

	resp, err := http.Get(srv.URL + "/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status            string `json:"status"`
		FallbackAvailable bool   `json:"fallback_available"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.FallbackAvailable)
}

func TestAPI_IngestAndDataset(t *testing.T) {
	svc := testService(t)
	srv := apiServer(t, svc)

	dir := t.TempDir()
	path := filepath.Join(dir, "budget.txt")
	os.WriteFile(path, []byte("annual budget"), 0644)

	body := `{"pairs":[{"path":"` + path + `","label":"finance"}]}`
	resp, err := http.Post(srv.URL+"/v1/ingest", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report IngestReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 1, report.Succeeded)

	resp, err = http.Get(srv.URL + "/v1/dataset?include_text=true")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ds struct {
		Count int `json:"count"`
		Rows  []struct {
			Label string `json:"label"`
		} `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ds))
	require.Equal(t, 1, ds.Count)
	assert.Equal(t, "finance", ds.Rows[0].Label)
}

func TestAPI_IngestRejectsEmptyBatch(t *testing.T) {
	svc := testService(t)
	srv := apiServer(t, svc)

	resp, err := http.Post(srv.URL+"/v1/ingest", "application/json", strings.NewReader(`{"pairs":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_TrainTooFewRows(t *testing.T) {
	svc := testService(t)
	srv := apiServer(t, svc)

	resp, err := http.Post(srv.URL+"/v1/train", "application/json", strings.NewReader(`{"seed":42}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
