package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-inventory/internal/application"
	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
	"github.com/sanosuguru/go-event-inventory/internal/domain/registration"
	"github.com/sanosuguru/go-event-inventory/internal/domain/ticket"
	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
)

// FulfillmentHandler は購入・支払い・発券のハンドラー
type FulfillmentHandler struct {
	service FulfillmentServiceInterface
}

// NewFulfillmentHandler はFulfillmentHandlerを作成する
func NewFulfillmentHandler(s FulfillmentServiceInterface) *FulfillmentHandler {
	return &FulfillmentHandler{service: s}
}

type FulfillRequest struct {
	EventID       string `json:"event_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	TicketTypeID  string `json:"ticket_type_id" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,gt=0" example:"2"`
	CustomerName  string `json:"customer_name" example:"山田太郎"`
	CustomerEmail string `json:"customer_email" validate:"required,email" example:"taro@example.com"`
}

type RegistrationResponse struct {
	ID            string     `json:"id"`
	EventID       string     `json:"event_id"`
	TicketTypeID  string     `json:"ticket_type_id"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	Quantity      int        `json:"quantity" example:"2"`
	TotalAmount   string     `json:"total_amount" example:"100.00"`
	PaymentStatus string     `json:"payment_status" example:"pending"`
	RegisteredAt  time.Time  `json:"registered_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func toRegistrationResponse(r *registration.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:            r.ID,
		EventID:       r.EventID,
		TicketTypeID:  r.TicketTypeID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Quantity:      r.Quantity,
		TotalAmount:   r.TotalAmount.StringFixed(2),
		PaymentStatus: string(r.PaymentStatus),
		RegisteredAt:  r.RegisteredAt,
		CompletedAt:   r.CompletedAt,
	}
}

type TicketResponse struct {
	ID             string     `json:"id"`
	RegistrationID string     `json:"registration_id"`
	TicketTypeID   string     `json:"ticket_type_id"`
	Code           string     `json:"code"`
	CheckedIn      bool       `json:"checked_in"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`
}

func toTicketResponse(t *ticket.Ticket) TicketResponse {
	return TicketResponse{
		ID:             t.ID,
		RegistrationID: t.RegistrationID,
		TicketTypeID:   t.TicketTypeID,
		Code:           t.Code,
		CheckedIn:      t.CheckedIn,
		CheckedInAt:    t.CheckedInAt,
	}
}

func toTicketResponses(tickets []*ticket.Ticket) []TicketResponse {
	responses := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		responses[i] = toTicketResponse(t)
	}
	return responses
}

// Fulfill godoc
// @Summary チケットを購入
// @Description 在庫を確保し支払い待ちの申込を作成します
// @Tags registrations
// @Accept json
// @Produce json
// @Param request body FulfillRequest true "購入情報"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "在庫不足または競合"
// @Router /registrations [post]
func (h *FulfillmentHandler) Fulfill(c echo.Context) error {
	var req FulfillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reg, err := h.service.Fulfill(c.Request().Context(), application.FulfillInput{
		EventID:       req.EventID,
		TicketTypeID:  req.TicketTypeID,
		Quantity:      req.Quantity,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		return mapFulfillmentError(err)
	}
	return c.JSON(http.StatusCreated, toRegistrationResponse(reg))
}

// GetRegistration godoc
// @Summary 申込を取得
// @Description 指定IDの申込を取得します
// @Tags registrations
// @Produce json
// @Param id path string true "申込ID"
// @Success 200 {object} RegistrationResponse
// @Failure 404 {object} map[string]string
// @Router /registrations/{id} [get]
func (h *FulfillmentHandler) GetRegistration(c echo.Context) error {
	reg, err := h.service.GetRegistration(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, registration.ErrRegistrationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(reg))
}

// ConfirmPaymentResponse は支払い完了レスポンス
type ConfirmPaymentResponse struct {
	Registration RegistrationResponse `json:"registration"`
	Tickets      []TicketResponse     `json:"tickets"`
}

// ConfirmPayment godoc
// @Summary 支払いを完了
// @Description 申込の支払いを完了し、数量分のチケットを発券します
// @Tags registrations
// @Produce json
// @Param id path string true "申込ID"
// @Success 200 {object} ConfirmPaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "状態競合"
// @Router /registrations/{id}/confirm [post]
func (h *FulfillmentHandler) ConfirmPayment(c echo.Context) error {
	reg, tickets, err := h.service.ConfirmPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, registration.ErrRegistrationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if errors.Is(err, registration.ErrPaymentStateConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, ConfirmPaymentResponse{
		Registration: toRegistrationResponse(reg),
		Tickets:      toTicketResponses(tickets),
	})
}

// FailPayment godoc
// @Summary 支払いを失敗にする
// @Description 申込の支払いを失敗にし、確保していた在庫を解放します
// @Tags registrations
// @Produce json
// @Param id path string true "申込ID"
// @Success 200 {object} RegistrationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "状態競合"
// @Router /registrations/{id}/fail [post]
func (h *FulfillmentHandler) FailPayment(c echo.Context) error {
	reg, err := h.service.FailPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, registration.ErrRegistrationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if errors.Is(err, registration.ErrPaymentStateConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(reg))
}

// RefundPayment godoc
// @Summary 返金する
// @Description 支払い済みの申込を返金し、在庫を解放します
// @Tags registrations
// @Produce json
// @Param id path string true "申込ID"
// @Success 200 {object} RegistrationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "状態競合"
// @Router /registrations/{id}/refund [post]
func (h *FulfillmentHandler) RefundPayment(c echo.Context) error {
	reg, err := h.service.RefundPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, registration.ErrRegistrationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if errors.Is(err, registration.ErrPaymentStateConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(reg))
}

// GetTickets godoc
// @Summary 発券済みチケット一覧を取得
// @Description 申込に対する発券済みチケットを取得します
// @Tags tickets
// @Produce json
// @Param id path string true "申込ID"
// @Success 200 {array} TicketResponse
// @Failure 404 {object} map[string]string
// @Router /registrations/{id}/tickets [get]
func (h *FulfillmentHandler) GetTickets(c echo.Context) error {
	tickets, err := h.service.GetTickets(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, registration.ErrRegistrationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toTicketResponses(tickets))
}

// CheckIn godoc
// @Summary チケットで入場する
// @Description コードでチケットを照合し入場済みにします
// @Tags tickets
// @Produce json
// @Param code path string true "チケットコード"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "入場済み"
// @Router /tickets/{code}/check-in [post]
func (h *FulfillmentHandler) CheckIn(c echo.Context) error {
	tk, err := h.service.CheckInTicket(c.Request().Context(), c.Param("code"))
	if err != nil {
		switch {
		case errors.Is(err, ticket.ErrTicketNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ticket.ErrAlreadyCheckedIn):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, toTicketResponse(tk))
}

// mapFulfillmentError は購入系のドメインエラーをHTTPエラーへ変換する
func mapFulfillmentError(err error) error {
	switch {
	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, tickettype.ErrTicketTypeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, tickettype.ErrCapacityExceeded),
		errors.Is(err, application.ErrFulfillmentConflict),
		errors.Is(err, application.ErrLockBusy):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, registration.ErrInvalidQuantity),
		errors.Is(err, registration.ErrCustomerEmailRequired),
		errors.Is(err, event.ErrEventNotActive):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
