package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	fulfillmentapp "github.com/wms/backend/internal/application/fulfillment"
	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/router"
)

// OrderUseCases is the query/command surface the order routes call
type OrderUseCases interface {
	ListOrders(ctx context.Context) []fulfillment.Order
	AssignOrder(ctx context.Context, orderID, assignee string) error
	MarkShipped(ctx context.Context, orderID string) error
	LookupProduct(ctx context.Context, itemID int64) fulfillmentapp.ProductLookupResult
}

// OrderHandler serves the picking page routes
type OrderHandler struct {
	BaseHandler
	orders OrderUseCases
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderUseCases) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Routes returns the order route group, mounted directly under the API prefix
func (h *OrderHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("orders", "")
	g.GET("/data", h.ListOrders)
	g.POST("/assign", h.AssignOrder)
	g.POST("/ship", h.MarkShipped)
	g.GET("/product", h.LookupProduct)
	return g
}

// ListOrders returns every stored order as a bare JSON array
func (h *OrderHandler) ListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.orders.ListOrders(c.Request.Context()))
}

// AssignOrder sets who is picking an order. Unknown orders are a silent no-op.
func (h *OrderHandler) AssignOrder(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	err := h.orders.AssignOrder(c.Request.Context(), req.ID, req.User)
	h.commandResult(c, req.ID, err)
}

// MarkShipped marks an order Processed. Unknown orders are a silent no-op.
func (h *OrderHandler) MarkShipped(c *gin.Context) {
	var req dto.OrderIDRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	err := h.orders.MarkShipped(c.Request.Context(), req.ID)
	h.commandResult(c, req.ID, err)
}

func (h *OrderHandler) commandResult(c *gin.Context, orderID string, err error) {
	orderID = strings.TrimSpace(orderID)
	switch {
	case err == nil:
		h.Success(c, fulfillmentapp.CommandResult{OrderID: orderID, Found: true})
	case errors.Is(err, fulfillment.ErrOrderNotFound):
		logger.GetGinLogger(c).Debug("Command for unknown order ignored", zap.String("order_id", orderID))
		h.Success(c, fulfillmentapp.CommandResult{OrderID: orderID, Found: false})
	default:
		h.HandleError(c, err)
	}
}

// LookupProduct proxies a live item lookup to the marketplace.
// A missing or non-numeric id answers 400 with the failed lookup shape.
func (h *OrderHandler) LookupProduct(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, fulfillmentapp.FailedLookup())
		return
	}
	itemID, err := strconv.ParseInt(req.ID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, fulfillmentapp.FailedLookup())
		return
	}

	c.JSON(http.StatusOK, h.orders.LookupProduct(c.Request.Context(), itemID))
}
