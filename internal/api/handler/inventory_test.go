package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-inventory/internal/application"
	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
	"github.com/sanosuguru/go-event-inventory/internal/domain/registration"
	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
)

// MockLedgerService はLedgerServiceInterfaceのモック
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) AvailableCapacity(ctx context.Context, eventID string) (map[string]int, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockLedgerService) TicketsSold(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerService) Revenue(ctx context.Context, eventID string) (*application.RevenueSummary, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.RevenueSummary), args.Error(1)
}

func (m *MockLedgerService) CategoryBreakdown(ctx context.Context) ([]application.CategoryStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.CategoryStat), args.Error(1)
}

func (m *MockLedgerService) StatusBreakdown(ctx context.Context) ([]application.StatusStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.StatusStat), args.Error(1)
}

func (m *MockLedgerService) TopEvents(ctx context.Context, limit int) ([]application.EventRanking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.EventRanking), args.Error(1)
}

func (m *MockLedgerService) PendingOlderThan(ctx context.Context, olderThan time.Duration) ([]application.PendingSummary, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.PendingSummary), args.Error(1)
}

func (m *MockLedgerService) PaymentStatusByEvent(ctx context.Context) ([]application.PaymentStatusStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.PaymentStatusStat), args.Error(1)
}

func TestInventoryHandler_AvailableCapacity(t *testing.T) {
	e := NewTestEcho()

	t.Run("区分ごとの残数を返す", func(t *testing.T) {
		mockService := new(MockLedgerService)
		mockService.On("AvailableCapacity", mock.Anything, "event-1").
			Return(map[string]int{"一般": 2, "VIP": 5}, nil)

		handler := NewInventoryHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/events/:id/capacity")
		c.SetParamNames("id")
		c.SetParamValues("event-1")

		err := handler.AvailableCapacity(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp AvailableCapacityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "event-1", resp.EventID)
		assert.Equal(t, map[string]int{"一般": 2, "VIP": 5}, resp.Capacity)
	})

	t.Run("存在しないイベントは404", func(t *testing.T) {
		mockService := new(MockLedgerService)
		mockService.On("AvailableCapacity", mock.Anything, "no-such").
			Return(nil, event.ErrEventNotFound)

		handler := NewInventoryHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("no-such")

		err := handler.AvailableCapacity(c)

		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("在庫不整合は500", func(t *testing.T) {
		mockService := new(MockLedgerService)
		mockService.On("AvailableCapacity", mock.Anything, "event-1").
			Return(nil, tickettype.ErrInventoryCorrupted)

		handler := NewInventoryHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-1")

		err := handler.AvailableCapacity(c)

		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, he.Code)
	})
}

func TestInventoryHandler_Revenue(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockLedgerService)
	mockService.On("Revenue", mock.Anything, "event-1").Return(&application.RevenueSummary{
		EventID:            "event-1",
		TotalRevenue:       decimal.RequireFromString("350.50"),
		TotalRegistrations: 2,
		TotalTicketsSold:   3,
		AverageTicketValue: decimal.RequireFromString("175.25"),
	}, nil)

	handler := NewInventoryHandler(mockService)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("event-1")

	err := handler.Revenue(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp RevenueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "350.50", resp.TotalRevenue)
	assert.Equal(t, 2, resp.TotalRegistrations)
	assert.Equal(t, "175.25", resp.AverageTicketValue)
}

func TestInventoryHandler_TopEvents(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockLedgerService)
	mockService.On("TopEvents", mock.Anything, 5).Return([]application.EventRanking{
		{EventID: "e2", EventName: "Big", RegistrationCount: 2, TicketsSold: 4, Revenue: decimal.RequireFromString("350.00")},
		{EventID: "e1", EventName: "Small", RegistrationCount: 1, TicketsSold: 1, Revenue: decimal.RequireFromString("100.00")},
	}, nil)

	handler := NewInventoryHandler(mockService)

	req := httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.TopEvents(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []EventRankingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "e2", resp[0].EventID)
	assert.Equal(t, "350.00", resp[0].Revenue)
}

func TestInventoryHandler_PendingOlderThan(t *testing.T) {
	e := NewTestEcho()

	t.Run("期間を指定して取得する", func(t *testing.T) {
		mockService := new(MockLedgerService)
		mockService.On("PendingOlderThan", mock.Anything, 48*time.Hour).
			Return([]application.PendingSummary{
				{
					RegistrationID: "reg-1",
					EventID:        "event-1",
					CustomerEmail:  "taro@example.com",
					TotalAmount:    decimal.RequireFromString("80.00"),
					RegisteredAt:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
				},
			}, nil)

		handler := NewInventoryHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/?older_than=48h", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.PendingOlderThan(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []PendingSummaryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "reg-1", resp[0].RegistrationID)
		assert.Equal(t, "80.00", resp[0].TotalAmount)
	})

	t.Run("期間未指定はデフォルト24h", func(t *testing.T) {
		mockService := new(MockLedgerService)
		mockService.On("PendingOlderThan", mock.Anything, 24*time.Hour).
			Return([]application.PendingSummary{}, nil)

		handler := NewInventoryHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.PendingOlderThan(c)

		require.NoError(t, err)
		mockService.AssertExpectations(t)
	})

	t.Run("不正な期間表記は400", func(t *testing.T) {
		mockService := new(MockLedgerService)
		handler := NewInventoryHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/?older_than=yesterday", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.PendingOlderThan(c)

		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockService.AssertNotCalled(t, "PendingOlderThan", mock.Anything, mock.Anything)
	})
}

func TestInventoryHandler_PaymentStatusByEvent(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockLedgerService)
	mockService.On("PaymentStatusByEvent", mock.Anything).Return([]application.PaymentStatusStat{
		{
			EventID:           "e1",
			PaymentStatus:     registration.PaymentCompleted,
			RegistrationCount: 2,
			TicketCount:       3,
			TotalAmount:       decimal.RequireFromString("300.00"),
		},
	}, nil)

	handler := NewInventoryHandler(mockService)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.PaymentStatusByEvent(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []PaymentStatusStatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "completed", resp[0].PaymentStatus)
	assert.Equal(t, "300.00", resp[0].TotalAmount)
}
