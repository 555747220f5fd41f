package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method string
	route  string
	status int
}

type recordingHTTPObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recordingHTTPObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{method: method, route: route, status: status})
}

func TestMetrics(t *testing.T) {
	obs := &recordingHTTPObserver{}
	router := gin.New()
	router.Use(Metrics(obs))
	router.GET("/api/orders/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/250301ABC", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Len(t, obs.seen, 2)
	assert.Equal(t, observation{http.MethodGet, "/api/orders/:id", http.StatusOK}, obs.seen[0])
	assert.Equal(t, observation{http.MethodGet, UnmatchedRoute, http.StatusNotFound}, obs.seen[1])
}

func TestMetricsNilObserver(t *testing.T) {
	router := gin.New()
	router.Use(Metrics(nil))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}
