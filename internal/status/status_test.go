package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kasunw/tripitaka-harvester/internal/bulk"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := New(":0", nil, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProgressReportsSnapshot(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	srv := New(":0", func() bulk.Progress {
		return bulk.Progress{
			ScrapedCount: 1234,
			ErrorCount:   56,
			LastUpdate:   started.Add(time.Hour),
			StartTime:    &started,
		}
	}, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/progress")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var got bulk.Progress
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 1234, got.ScrapedCount)
	assert.Equal(t, 56, got.ErrorCount)
	require.NotNil(t, got.StartTime)
	assert.True(t, got.StartTime.Equal(started))
}

func TestMetricsEndpointServesPrometheusText(t *testing.T) {
	t.Parallel()

	srv := New(":0", nil, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
