package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-event-inventory/internal/application"
	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type CreateEventRequest struct {
	Name           string `json:"name" validate:"required" example:"東京テックカンファレンス2026"`
	Description    string `json:"description" example:"年次技術カンファレンス"`
	Location       string `json:"location" example:"東京ビッグサイト"`
	Category       string `json:"category" validate:"required" example:"tech"`
	StartAt        string `json:"start_at" validate:"required" example:"2026-10-01T10:00:00+09:00"`
	EndAt          string `json:"end_at" validate:"required" example:"2026-10-01T18:00:00+09:00"`
	MaxAttendees   int    `json:"max_attendees" validate:"required,gt=0" example:"500"`
	OrganizerName  string `json:"organizer_name" example:"実行委員会"`
	OrganizerEmail string `json:"organizer_email" validate:"omitempty,email" example:"organizer@example.com"`
}

type UpdateEventRequest struct {
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	Category       string `json:"category" validate:"required"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive cancelled"`
	StartAt        string `json:"start_at" validate:"required"`
	EndAt          string `json:"end_at" validate:"required"`
	MaxAttendees   int    `json:"max_attendees" validate:"required,gt=0"`
	OrganizerName  string `json:"organizer_name"`
	OrganizerEmail string `json:"organizer_email" validate:"omitempty,email"`
}

type EventResponse struct {
	ID             string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name           string `json:"name" example:"東京テックカンファレンス2026"`
	Description    string `json:"description,omitempty"`
	Location       string `json:"location,omitempty" example:"東京ビッグサイト"`
	Category       string `json:"category" example:"tech"`
	Status         string `json:"status" example:"active"`
	StartAt        string `json:"start_at" example:"2026-10-01T10:00:00+09:00"`
	EndAt          string `json:"end_at" example:"2026-10-01T18:00:00+09:00"`
	MaxAttendees   int    `json:"max_attendees" example:"500"`
	OrganizerName  string `json:"organizer_name,omitempty"`
	OrganizerEmail string `json:"organizer_email,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		Location:       e.Location,
		Category:       e.Category,
		Status:         string(e.Status),
		StartAt:        e.StartAt.Format(time.RFC3339),
		EndAt:          e.EndAt.Format(time.RFC3339),
		MaxAttendees:   e.MaxAttendees,
		OrganizerName:  e.OrganizerName,
		OrganizerEmail: e.OrganizerEmail,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      e.UpdatedAt.Format(time.RFC3339),
	}
}

func toEventResponses(events []*event.Event) []*EventResponse {
	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return responses
}

// Create godoc
// @Summary イベントを作成
// @Description 新しいイベントを作成します
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "終了時刻の形式が不正です")
	}

	e, err := h.eventService.CreateEvent(c.Request().Context(), application.CreateEventInput{
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		Category:       req.Category,
		StartAt:        startAt,
		EndAt:          endAt,
		MaxAttendees:   req.MaxAttendees,
		OrganizerName:  req.OrganizerName,
		OrganizerEmail: req.OrganizerEmail,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントを取得します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	e, err := h.eventService.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary イベント一覧を取得
// @Description イベントの一覧を取得します
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := h.eventService.ListEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// ListUpcoming godoc
// @Summary 開催予定イベント一覧を取得
// @Description 現在時刻より後に開始する有効なイベントを開始時刻順で返します
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(10)
// @Success 200 {array} EventResponse
// @Router /events/upcoming [get]
func (h *EventHandler) ListUpcoming(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	events, err := h.eventService.ListUpcomingEvents(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// Search godoc
// @Summary イベントを検索
// @Description カテゴリ・開催地の部分一致で有効なイベントを検索します
// @Tags events
// @Produce json
// @Param category query string false "カテゴリ"
// @Param location query string false "開催地"
// @Success 200 {array} EventResponse
// @Router /events/search [get]
func (h *EventHandler) Search(c echo.Context) error {
	events, err := h.eventService.SearchEvents(c.Request().Context(),
		c.QueryParam("category"), c.QueryParam("location"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// Update godoc
// @Summary イベントを更新
// @Description 指定IDのイベントを更新します
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "イベントID"
// @Param request body UpdateEventRequest true "イベント情報"
// @Success 200 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "終了時刻の形式が不正です")
	}

	e, err := h.eventService.UpdateEvent(c.Request().Context(), application.UpdateEventInput{
		ID:             c.Param("id"),
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		Category:       req.Category,
		Status:         event.Status(req.Status),
		StartAt:        startAt,
		EndAt:          endAt,
		MaxAttendees:   req.MaxAttendees,
		OrganizerName:  req.OrganizerName,
		OrganizerEmail: req.OrganizerEmail,
	})
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete godoc
// @Summary イベントを削除
// @Description 指定IDのイベントを削除します
// @Tags events
// @Param id path string true "イベントID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.eventService.DeleteEvent(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type CreateTicketTypeRequest struct {
	Name        string `json:"name" validate:"required" example:"一般"`
	Description string `json:"description" example:"通常入場チケット"`
	Price       string `json:"price" validate:"required" example:"50.00"`
	Quantity    int    `json:"quantity" validate:"required,gt=0" example:"100"`
}

type TicketTypeResponse struct {
	ID          string `json:"id"`
	EventID     string `json:"event_id"`
	Name        string `json:"name" example:"一般"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price" example:"50.00"`
	Quantity    int    `json:"quantity" example:"100"`
	Sold        int    `json:"sold" example:"8"`
}

func toTicketTypeResponse(t *tickettype.TicketType) *TicketTypeResponse {
	return &TicketTypeResponse{
		ID:          t.ID,
		EventID:     t.EventID,
		Name:        t.Name,
		Description: t.Description,
		Price:       t.Price.StringFixed(2),
		Quantity:    t.Quantity,
		Sold:        t.Sold,
	}
}

// CreateTicketType godoc
// @Summary チケット区分を作成
// @Description イベント配下にチケット区分を作成します
// @Tags ticket-types
// @Accept json
// @Produce json
// @Param id path string true "イベントID"
// @Param request body CreateTicketTypeRequest true "チケット区分情報"
// @Success 201 {object} TicketTypeResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id}/ticket-types [post]
func (h *EventHandler) CreateTicketType(c echo.Context) error {
	var req CreateTicketTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "価格の形式が不正です")
	}

	t, err := h.eventService.CreateTicketType(c.Request().Context(), application.CreateTicketTypeInput{
		EventID:     c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toTicketTypeResponse(t))
}

// ListTicketTypes godoc
// @Summary チケット区分一覧を取得
// @Description イベント配下のチケット区分一覧を取得します
// @Tags ticket-types
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {array} TicketTypeResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id}/ticket-types [get]
func (h *EventHandler) ListTicketTypes(c echo.Context) error {
	types, err := h.eventService.GetTicketTypes(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	responses := make([]*TicketTypeResponse, len(types))
	for i, t := range types {
		responses[i] = toTicketTypeResponse(t)
	}
	return c.JSON(http.StatusOK, responses)
}
