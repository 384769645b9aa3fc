package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	metrics "skyledger/internal/metrics"
	"skyledger/pkg/customerrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", time.Second, metrics.NewMetrics(prometheus.NewRegistry()))
}

func TestDescribe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Prompt, "London")
		_, _ = w.Write([]byte(`{"text":"A drizzly autumn day."}`))
	})

	text, err := client.Describe(context.Background(), "Describe the weather in London.")
	require.NoError(t, err)
	assert.Equal(t, "A drizzly autumn day.", text)
}

func TestDescribeQuotaExceeded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Describe(context.Background(), "anything")
	assert.ErrorIs(t, err, customerrors.ErrUpstream)
}
