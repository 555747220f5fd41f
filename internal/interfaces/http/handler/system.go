package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/infrastructure/scheduler"
)

// OrderCounter reports the number of stored orders
type OrderCounter interface {
	Len() int
}

// SystemHandler serves liveness and build info
type SystemHandler struct {
	BaseHandler
	orders    OrderCounter
	sync      SyncController
	startTime time.Time
	now       func() time.Time
}

// NewSystemHandler creates a new SystemHandler. sync may be nil.
func NewSystemHandler(orders OrderCounter, sync SyncController) *SystemHandler {
	return &SystemHandler{
		orders:    orders,
		sync:      sync,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status      string             `json:"status"`
	Time        string             `json:"time"`
	Uptime      string             `json:"uptime"`
	GoVersion   string             `json:"go_version"`
	Orders      int                `json:"orders"`
	SyncRunning bool               `json:"sync_running"`
	LastSync    *scheduler.SyncRun `json:"last_sync,omitempty"`
}

// Health reports liveness with the store size and the last sync summary.
// The process is healthy while it serves; a failing sync shows in last_sync only.
func (h *SystemHandler) Health(c *gin.Context) {
	now := h.now()
	resp := HealthResponse{
		Status:    "healthy",
		Time:      now.Format(time.RFC3339),
		Uptime:    now.Sub(h.startTime).Round(time.Second).String(),
		GoVersion: runtime.Version(),
	}
	if h.orders != nil {
		resp.Orders = h.orders.Len()
	}
	if h.sync != nil {
		st := h.sync.Status()
		resp.SyncRunning = st.Running
		resp.LastSync = st.LastRun
	}
	c.JSON(http.StatusOK, resp)
}

// Ping answers pong
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
