package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/infrastructure/scheduler"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/router"
)

// defaultHistoryLimit applies when the history request names no limit
const defaultHistoryLimit = 20

// SyncController exposes the reconciliation scheduler to operators
type SyncController interface {
	Status() scheduler.SchedulerStatus
	History(limit int) []scheduler.SyncRun
	TriggerNow() error
}

// SyncHandler serves sync status, run history and manual triggers.
// A nil controller means the scheduler was never started (e.g. no marketplace token).
type SyncHandler struct {
	BaseHandler
	sync SyncController
}

// NewSyncHandler creates a new SyncHandler. sync may be nil.
func NewSyncHandler(sync SyncController) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// TriggerResponse acknowledges a queued pass
type TriggerResponse struct {
	Queued bool `json:"queued"`
}

// Routes returns the /sync route group
func (h *SyncHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("sync", "/sync")
	g.GET("/status", h.GetStatus)
	g.GET("/history", h.GetHistory)
	g.POST("/trigger", h.Trigger)
	return g
}

// GetStatus reports whether the scheduler runs and how the last pass went
func (h *SyncHandler) GetStatus(c *gin.Context) {
	if h.sync == nil {
		h.Success(c, scheduler.SchedulerStatus{})
		return
	}
	h.Success(c, h.sync.Status())
}

// GetHistory returns recent passes, newest first
func (h *SyncHandler) GetHistory(c *gin.Context) {
	var req dto.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultHistoryLimit
	}

	if h.sync == nil {
		h.Success(c, []scheduler.SyncRun{})
		return
	}
	h.Success(c, h.sync.History(req.Limit))
}

// Trigger queues an immediate pass
func (h *SyncHandler) Trigger(c *gin.Context) {
	if h.sync == nil {
		h.ServiceUnavailable(c, "order sync is not configured")
		return
	}
	if err := h.sync.TriggerNow(); err != nil {
		if errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			h.ServiceUnavailable(c, "order sync is not running")
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, TriggerResponse{Queued: true})
}
