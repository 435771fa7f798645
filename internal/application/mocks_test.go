package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
	"github.com/sanosuguru/go-event-inventory/internal/domain/registration"
	"github.com/sanosuguru/go-event-inventory/internal/domain/ticket"
	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
	"github.com/sanosuguru/go-event-inventory/internal/domain/transaction"
)

// MockEventRepository はイベントリポジトリのモック
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) ListAll(ctx context.Context) ([]*event.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*event.Event, error) {
	args := m.Called(ctx, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) Search(ctx context.Context, category, location string) ([]*event.Event, error) {
	args := m.Called(ctx, category, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTicketTypeRepository はチケット区分リポジトリのモック
type MockTicketTypeRepository struct {
	mock.Mock
}

func (m *MockTicketTypeRepository) Create(ctx context.Context, t *tickettype.TicketType) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTicketTypeRepository) GetByID(ctx context.Context, id string) (*tickettype.TicketType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tickettype.TicketType), args.Error(1)
}

func (m *MockTicketTypeRepository) GetByEventID(ctx context.Context, eventID string) ([]*tickettype.TicketType, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tickettype.TicketType), args.Error(1)
}

func (m *MockTicketTypeRepository) ReserveInventory(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

func (m *MockTicketTypeRepository) ReleaseInventory(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

// MockRegistrationRepository は申込リポジトリのモック
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, tx transaction.Tx, r *registration.Registration) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockRegistrationRepository) GetByID(ctx context.Context, id string) (*registration.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) GetByEventID(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListAll(ctx context.Context) ([]*registration.Registration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListCompleted(ctx context.Context) ([]*registration.Registration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListPendingBefore(ctx context.Context, before time.Time) ([]*registration.Registration, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, r *registration.Registration, expected registration.PaymentStatus) error {
	args := m.Called(ctx, tx, r, expected)
	return args.Error(0)
}

// MockTicketRepository はチケットリポジトリのモック
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tx transaction.Tx, tickets []*ticket.Ticket) error {
	args := m.Called(ctx, tx, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByRegistrationID(ctx context.Context, registrationID string) ([]*ticket.Ticket, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ticket.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByCode(ctx context.Context, code string) (*ticket.Ticket, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// fakeTx はテスト用のトランザクション。Commit/Rollbackは常に成功する
type fakeTx struct{}

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }

// fakeTxManager はテスト用のトランザクションマネージャー
type fakeTxManager struct{}

func (m *fakeTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	return &fakeTx{}, nil
}
