package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-event-inventory/internal/application"
	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
	"github.com/sanosuguru/go-event-inventory/internal/domain/registration"
	"github.com/sanosuguru/go-event-inventory/internal/domain/ticket"
	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	ListUpcomingEvents(ctx context.Context, limit int) ([]*event.Event, error)
	SearchEvents(ctx context.Context, category, location string) ([]*event.Event, error)
	UpdateEvent(ctx context.Context, input application.UpdateEventInput) (*event.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CreateTicketType(ctx context.Context, input application.CreateTicketTypeInput) (*tickettype.TicketType, error)
	GetTicketTypes(ctx context.Context, eventID string) ([]*tickettype.TicketType, error)
}

// LedgerServiceInterface は在庫・売上集計サービスのインターフェース
type LedgerServiceInterface interface {
	AvailableCapacity(ctx context.Context, eventID string) (map[string]int, error)
	TicketsSold(ctx context.Context, eventID string) (int, error)
	Revenue(ctx context.Context, eventID string) (*application.RevenueSummary, error)
	CategoryBreakdown(ctx context.Context) ([]application.CategoryStat, error)
	StatusBreakdown(ctx context.Context) ([]application.StatusStat, error)
	TopEvents(ctx context.Context, limit int) ([]application.EventRanking, error)
	PendingOlderThan(ctx context.Context, olderThan time.Duration) ([]application.PendingSummary, error)
	PaymentStatusByEvent(ctx context.Context) ([]application.PaymentStatusStat, error)
}

// FulfillmentServiceInterface は購入サービスのインターフェース
type FulfillmentServiceInterface interface {
	Fulfill(ctx context.Context, input application.FulfillInput) (*registration.Registration, error)
	ConfirmPayment(ctx context.Context, registrationID string) (*registration.Registration, []*ticket.Ticket, error)
	FailPayment(ctx context.Context, registrationID string) (*registration.Registration, error)
	RefundPayment(ctx context.Context, registrationID string) (*registration.Registration, error)
	GetRegistration(ctx context.Context, id string) (*registration.Registration, error)
	GetTickets(ctx context.Context, registrationID string) ([]*ticket.Ticket, error)
	CheckInTicket(ctx context.Context, code string) (*ticket.Ticket, error)
}
