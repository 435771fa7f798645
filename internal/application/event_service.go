package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
)

type EventService struct {
	eventRepo event.Repository
	tierRepo  tickettype.Repository

	// now は「開催予定」判定の基準時刻を返す。テストで差し替える
	now func() time.Time
}

func NewEventService(eventRepo event.Repository, tierRepo tickettype.Repository) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		tierRepo:  tierRepo,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CreateEventInput struct {
	Name           string
	Description    string
	Location       string
	Category       string
	StartAt        time.Time
	EndAt          time.Time
	MaxAttendees   int
	OrganizerName  string
	OrganizerEmail string
}

func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewEvent(
		input.Name, input.Description, input.Location, input.Category,
		input.StartAt, input.EndAt, input.MaxAttendees,
		input.OrganizerName, input.OrganizerEmail,
	)
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return e, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.eventRepo.List(ctx, limit, offset)
}

// ListUpcomingEvents は基準時刻より後に開始する有効なイベントを開始時刻順で返す
func (s *EventService) ListUpcomingEvents(ctx context.Context, limit int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.eventRepo.ListUpcoming(ctx, s.now(), limit)
}

// SearchEvents はカテゴリ・開催地の部分一致でイベントを検索する
func (s *EventService) SearchEvents(ctx context.Context, category, location string) ([]*event.Event, error) {
	return s.eventRepo.Search(ctx, category, location)
}

type UpdateEventInput struct {
	ID             string
	Name           string
	Description    string
	Location       string
	Category       string
	Status         event.Status
	StartAt        time.Time
	EndAt          time.Time
	MaxAttendees   int
	OrganizerName  string
	OrganizerEmail string
}

func (s *EventService) UpdateEvent(ctx context.Context, input UpdateEventInput) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	e.Name = input.Name
	e.Description = input.Description
	e.Location = input.Location
	e.Category = input.Category
	if input.Status != "" {
		e.Status = input.Status
	}
	e.StartAt = input.StartAt
	e.EndAt = input.EndAt
	e.MaxAttendees = input.MaxAttendees
	e.OrganizerName = input.OrganizerName
	e.OrganizerEmail = input.OrganizerEmail
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	return s.eventRepo.Delete(ctx, id)
}

type CreateTicketTypeInput struct {
	EventID     string
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

// CreateTicketType はイベント配下にチケット区分を作成する
func (s *EventService) CreateTicketType(ctx context.Context, input CreateTicketTypeInput) (*tickettype.TicketType, error) {
	if _, err := s.eventRepo.GetByID(ctx, input.EventID); err != nil {
		return nil, err
	}
	t := tickettype.NewTicketType(input.EventID, input.Name, input.Description, input.Price, input.Quantity)
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.tierRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("チケット区分作成に失敗しました: %w", err)
	}
	return t, nil
}

// GetTicketTypes はイベント配下のチケット区分一覧を返す
func (s *EventService) GetTicketTypes(ctx context.Context, eventID string) ([]*tickettype.TicketType, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.tierRepo.GetByEventID(ctx, eventID)
}
