package servers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pizzatracker/internal/api/servers"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type recordingServer struct {
	called  string
	orderID servers.OrderId
}

func (s *recordingServer) Health(ctx echo.Context) error {
	s.called = "Health"
	return ctx.NoContent(http.StatusOK)
}

func (s *recordingServer) ListOrders(ctx echo.Context) error {
	s.called = "ListOrders"
	return ctx.NoContent(http.StatusOK)
}

func (s *recordingServer) PlaceOrder(ctx echo.Context) error {
	s.called = "PlaceOrder"
	return ctx.NoContent(http.StatusCreated)
}

func (s *recordingServer) GetOrder(ctx echo.Context, orderID servers.OrderId) error {
	s.called = "GetOrder"
	s.orderID = orderID
	return ctx.NoContent(http.StatusOK)
}

func (s *recordingServer) SubscribeNotifications(ctx echo.Context) error {
	s.called = "SubscribeNotifications"
	return ctx.NoContent(http.StatusNoContent)
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRegisterHandlers_Routes(t *testing.T) {
	tests := []struct {
		method string
		target string
		want   string
	}{
		{http.MethodGet, "/health", "Health"},
		{http.MethodGet, "/api/v1/orders", "ListOrders"},
		{http.MethodPost, "/api/v1/orders", "PlaceOrder"},
		{http.MethodGet, "/api/v1/orders/42", "GetOrder"},
		{http.MethodPut, "/api/v1/notifications/subscribe", "SubscribeNotifications"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			e := echo.New()
			si := &recordingServer{}
			servers.RegisterHandlers(e, si)

			rec := serve(e, tt.method, tt.target)

			assert.Less(t, rec.Code, 300)
			assert.Equal(t, tt.want, si.called)
		})
	}
}

func TestGetOrder_BindsPathParameter(t *testing.T) {
	e := echo.New()
	si := &recordingServer{}
	servers.RegisterHandlers(e, si)

	serve(e, http.MethodGet, "/api/v1/orders/9001")
	assert.Equal(t, servers.OrderId(9001), si.orderID)

	si.called = ""
	rec := serve(e, http.MethodGet, "/api/v1/orders/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, si.called)
}

func TestRegisterHandlersWithBaseURL_AppliesMiddlewareToAPIRoutesOnly(t *testing.T) {
	e := echo.New()
	si := &recordingServer{}
	deny := func(echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			return ctx.NoContent(http.StatusUnauthorized)
		}
	}
	servers.RegisterHandlersWithBaseURL(e, si, "", deny)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/api/v1/orders").Code)
}

func TestGetSwagger(t *testing.T) {
	doc, err := servers.GetSwagger()
	require.NoError(t, err)

	assert.Equal(t, "Pizza Tracker API", doc.Info.Title)
	assert.NotNil(t, doc.Paths.Find("/api/v1/orders/{orderId}"))
	assert.NotNil(t, doc.Paths.Find("/api/v1/tracking/ws"))
}

func TestRegisterSwagger(t *testing.T) {
	raw, err := servers.RegisterSwagger()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"/api/v1/notifications/subscribe"`)

	again, err := servers.RegisterSwagger()
	require.NoError(t, err)
	assert.Equal(t, raw, again)

	require.NotNil(t, swag.GetSwagger(swag.Name))
	assert.JSONEq(t, string(raw), swag.GetSwagger(swag.Name).ReadDoc())
}
