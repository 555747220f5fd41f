package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) { c.String(http.StatusOK, c.FullPath()) }

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouterBasePath(t *testing.T) {
	tests := []struct {
		name    string
		opts    []RouterOption
		path    string
		wantHit string
	}{
		{"unversioned", nil, "/api", "/api/data"},
		{"versioned", []RouterOption{WithAPIVersion("v2")}, "/api/v2", "/api/v2/data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			r := NewRouter(engine, tt.opts...)
			assert.Equal(t, tt.path, r.BasePath())

			r.Register(NewDomainGroup("orders", "").GET("/data", ok))
			r.Setup()

			w := serve(engine, http.MethodGet, tt.wantHit)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantHit, w.Body.String())
		})
	}
}

func TestDomainGroupNesting(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	var order []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}

	sync := NewDomainGroup("sync", "/sync").Use(mark("group"))
	sync.GET("/status", ok)
	sync.Group("runs", "/runs").POST("/trigger", ok)
	assert.Equal(t, "sync", sync.Name())
	assert.Equal(t, "/sync", sync.Prefix())

	r.Use(mark("api")).Register(sync)
	r.Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/sync/status").Code)
	assert.Equal(t, []string{"api", "group"}, order)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/sync/runs/trigger").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/sync/runs/trigger").Code)
}
