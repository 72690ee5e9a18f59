package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/fellowship/internal/metrics"
)

func TestNewRouter_Metrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("exposes prometheus metrics when enabled", func(t *testing.T) {
		metrics.RecordUtterance("done")
		router := NewRouter(RouterConfig{MetricsEnabled: true})

		w := doRequest(router, "GET", "/metrics", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "fellowship_readaloud_utterances_total")
	})

	t.Run("no metrics route when disabled", func(t *testing.T) {
		router := NewRouter(RouterConfig{})

		w := doRequest(router, "GET", "/metrics", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestNewRouter_OptionalRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterConfig{})

	assert.Equal(t, http.StatusOK, doRequest(router, "GET", "/health", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, "GET", "/api/notes", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, "GET", "/api/hymns", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, "POST", "/api/devotionals/sync", "").Code)
}
