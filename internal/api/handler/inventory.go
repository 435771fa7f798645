package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-inventory/internal/application"
	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
)

// InventoryHandler は在庫・売上集計のハンドラー
type InventoryHandler struct {
	service LedgerServiceInterface
}

// NewInventoryHandler はInventoryHandlerを作成する
func NewInventoryHandler(s LedgerServiceInterface) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// AvailableCapacityResponse はイベントの空き在庫レスポンス
type AvailableCapacityResponse struct {
	EventID  string         `json:"event_id"`
	Capacity map[string]int `json:"capacity"`
}

// AvailableCapacity godoc
// @Summary 空き在庫を取得
// @Description イベント配下の各チケット区分の残り在庫数を返します
// @Tags inventory
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} AvailableCapacityResponse
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string "在庫データ不整合"
// @Router /events/{id}/capacity [get]
func (h *InventoryHandler) AvailableCapacity(c echo.Context) error {
	eventID := c.Param("id")
	capacity, err := h.service.AvailableCapacity(c.Request().Context(), eventID)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.JSON(http.StatusOK, AvailableCapacityResponse{
		EventID:  eventID,
		Capacity: capacity,
	})
}

// TicketsSoldResponse は販売数レスポンス
type TicketsSoldResponse struct {
	EventID     string `json:"event_id"`
	TicketsSold int    `json:"tickets_sold"`
}

// TicketsSold godoc
// @Summary 販売数を取得
// @Description イベント全区分の販売数合計を返します
// @Tags inventory
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} TicketsSoldResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id}/tickets-sold [get]
func (h *InventoryHandler) TicketsSold(c echo.Context) error {
	eventID := c.Param("id")
	sold, err := h.service.TicketsSold(c.Request().Context(), eventID)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.JSON(http.StatusOK, TicketsSoldResponse{
		EventID:     eventID,
		TicketsSold: sold,
	})
}

// RevenueResponse は売上集計レスポンス
type RevenueResponse struct {
	EventID            string `json:"event_id"`
	TotalRevenue       string `json:"total_revenue" example:"350.50"`
	TotalRegistrations int    `json:"total_registrations" example:"2"`
	TotalTicketsSold   int    `json:"total_tickets_sold" example:"3"`
	AverageTicketValue string `json:"average_ticket_value" example:"175.25"`
}

// Revenue godoc
// @Summary 売上を取得
// @Description 支払い済み申込の売上集計を返します
// @Tags inventory
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} RevenueResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id}/revenue [get]
func (h *InventoryHandler) Revenue(c echo.Context) error {
	summary, err := h.service.Revenue(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapLedgerError(err)
	}
	return c.JSON(http.StatusOK, RevenueResponse{
		EventID:            summary.EventID,
		TotalRevenue:       summary.TotalRevenue.StringFixed(2),
		TotalRegistrations: summary.TotalRegistrations,
		TotalTicketsSold:   summary.TotalTicketsSold,
		AverageTicketValue: summary.AverageTicketValue.StringFixed(2),
	})
}

// CategoryStatResponse はカテゴリ別集計レスポンスの行
type CategoryStatResponse struct {
	Category       string `json:"category" example:"tech"`
	EventCount     int    `json:"event_count" example:"3"`
	ActiveEvents   int    `json:"active_events" example:"2"`
	UpcomingEvents int    `json:"upcoming_events" example:"1"`
}

// CategoryBreakdown godoc
// @Summary カテゴリ別集計を取得
// @Description 全イベントのカテゴリ別集計を返します
// @Tags stats
// @Produce json
// @Success 200 {array} CategoryStatResponse
// @Router /stats/categories [get]
func (h *InventoryHandler) CategoryBreakdown(c echo.Context) error {
	stats, err := h.service.CategoryBreakdown(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	responses := make([]CategoryStatResponse, len(stats))
	for i, s := range stats {
		responses[i] = CategoryStatResponse{
			Category:       s.Category,
			EventCount:     s.EventCount,
			ActiveEvents:   s.ActiveEvents,
			UpcomingEvents: s.UpcomingEvents,
		}
	}
	return c.JSON(http.StatusOK, responses)
}

// StatusStatResponse は状態別集計レスポンスの行
type StatusStatResponse struct {
	Status     string `json:"status" example:"active"`
	EventCount int    `json:"event_count" example:"5"`
}

// StatusBreakdown godoc
// @Summary 状態別集計を取得
// @Description 全イベントの状態別集計を返します
// @Tags stats
// @Produce json
// @Success 200 {array} StatusStatResponse
// @Router /stats/statuses [get]
func (h *InventoryHandler) StatusBreakdown(c echo.Context) error {
	stats, err := h.service.StatusBreakdown(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	responses := make([]StatusStatResponse, len(stats))
	for i, s := range stats {
		responses[i] = StatusStatResponse{
			Status:     string(s.Status),
			EventCount: s.EventCount,
		}
	}
	return c.JSON(http.StatusOK, responses)
}

// EventRankingResponse は売上ランキングレスポンスの行
type EventRankingResponse struct {
	EventID           string `json:"event_id"`
	EventName         string `json:"event_name"`
	RegistrationCount int    `json:"registration_count"`
	TicketsSold       int    `json:"tickets_sold"`
	Revenue           string `json:"revenue" example:"350.00"`
}

// TopEvents godoc
// @Summary 売上上位イベントを取得
// @Description 売上の降順でイベントランキングを返します
// @Tags stats
// @Produce json
// @Param limit query int false "取得件数" default(10)
// @Success 200 {array} EventRankingResponse
// @Router /stats/top-events [get]
func (h *InventoryHandler) TopEvents(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	rankings, err := h.service.TopEvents(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	responses := make([]EventRankingResponse, len(rankings))
	for i, r := range rankings {
		responses[i] = EventRankingResponse{
			EventID:           r.EventID,
			EventName:         r.EventName,
			RegistrationCount: r.RegistrationCount,
			TicketsSold:       r.TicketsSold,
			Revenue:           r.Revenue.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, responses)
}

// PendingSummaryResponse は支払い待ち申込レスポンスの行
type PendingSummaryResponse struct {
	RegistrationID string `json:"registration_id"`
	EventID        string `json:"event_id"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	TotalAmount    string `json:"total_amount" example:"80.00"`
	RegisteredAt   string `json:"registered_at"`
}

// PendingOlderThan godoc
// @Summary 古い支払い待ち申込を取得
// @Description 指定時間より前に申し込まれた支払い待ちの申込を返します
// @Tags stats
// @Produce json
// @Param older_than query string false "期間（例: 24h）" default(24h)
// @Success 200 {array} PendingSummaryResponse
// @Failure 400 {object} map[string]string
// @Router /stats/pending [get]
func (h *InventoryHandler) PendingOlderThan(c echo.Context) error {
	olderThan := 24 * time.Hour
	if raw := c.QueryParam("older_than"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "期間の形式が不正です")
		}
		olderThan = parsed
	}

	pending, err := h.service.PendingOlderThan(c.Request().Context(), olderThan)
	if err != nil {
		if errors.Is(err, application.ErrInvalidDuration) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	responses := make([]PendingSummaryResponse, len(pending))
	for i, p := range pending {
		responses[i] = PendingSummaryResponse{
			RegistrationID: p.RegistrationID,
			EventID:        p.EventID,
			CustomerName:   p.CustomerName,
			CustomerEmail:  p.CustomerEmail,
			TotalAmount:    p.TotalAmount.StringFixed(2),
			RegisteredAt:   p.RegisteredAt.Format(time.RFC3339),
		}
	}
	return c.JSON(http.StatusOK, responses)
}

// PaymentStatusStatResponse はイベント×支払い状態の集計レスポンスの行
type PaymentStatusStatResponse struct {
	EventID           string `json:"event_id"`
	PaymentStatus     string `json:"payment_status" example:"completed"`
	RegistrationCount int    `json:"registration_count"`
	TicketCount       int    `json:"ticket_count"`
	TotalAmount       string `json:"total_amount" example:"300.00"`
}

// PaymentStatusByEvent godoc
// @Summary イベント別支払い状態集計を取得
// @Description 全申込をイベントと支払い状態で集計して返します
// @Tags stats
// @Produce json
// @Success 200 {array} PaymentStatusStatResponse
// @Router /stats/payment-statuses [get]
func (h *InventoryHandler) PaymentStatusByEvent(c echo.Context) error {
	stats, err := h.service.PaymentStatusByEvent(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	responses := make([]PaymentStatusStatResponse, len(stats))
	for i, s := range stats {
		responses[i] = PaymentStatusStatResponse{
			EventID:           s.EventID,
			PaymentStatus:     string(s.PaymentStatus),
			RegistrationCount: s.RegistrationCount,
			TicketCount:       s.TicketCount,
			TotalAmount:       s.TotalAmount.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, responses)
}

// mapLedgerError は集計系のドメインエラーをHTTPエラーへ変換する
func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, event.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, tickettype.ErrInventoryCorrupted):
		// 在庫不整合は握りつぶさずサーバーエラーとして返す
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
