package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	fulfillmentapp "github.com/wms/backend/internal/application/fulfillment"
	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/infrastructure/scheduler"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type MockOrderUseCases struct {
	mock.Mock
}

func (m *MockOrderUseCases) ListOrders(ctx context.Context) []fulfillment.Order {
	args := m.Called(ctx)
	return args.Get(0).([]fulfillment.Order)
}

func (m *MockOrderUseCases) AssignOrder(ctx context.Context, orderID, assignee string) error {
	args := m.Called(ctx, orderID, assignee)
	return args.Error(0)
}

func (m *MockOrderUseCases) MarkShipped(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderUseCases) LookupProduct(ctx context.Context, itemID int64) fulfillmentapp.ProductLookupResult {
	args := m.Called(ctx, itemID)
	return args.Get(0).(fulfillmentapp.ProductLookupResult)
}

type MockSyncController struct {
	mock.Mock
}

func (m *MockSyncController) Status() scheduler.SchedulerStatus {
	args := m.Called()
	return args.Get(0).(scheduler.SchedulerStatus)
}

func (m *MockSyncController) History(limit int) []scheduler.SyncRun {
	args := m.Called(limit)
	return args.Get(0).([]scheduler.SyncRun)
}

func (m *MockSyncController) TriggerNow() error {
	args := m.Called()
	return args.Error(0)
}

// newTestEngine mounts groups under /api the way the server does
func newTestEngine(groups ...*router.DomainGroup) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine)
	for _, g := range groups {
		r.Register(g)
	}
	r.Setup()
	return engine
}

func do(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData re-decodes the envelope's data field into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NoError(t, json.Unmarshal(resp.Data, out))
}
