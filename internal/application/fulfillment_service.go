package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
	"github.com/sanosuguru/go-event-inventory/internal/domain/registration"
	"github.com/sanosuguru/go-event-inventory/internal/domain/ticket"
	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
	"github.com/sanosuguru/go-event-inventory/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-event-inventory/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-inventory/internal/pkg/logger"
	"github.com/sanosuguru/go-event-inventory/internal/pkg/metrics"
)

// FulfillmentService は購入（在庫確保→申込→支払い→発券）の書き込み経路を担う
// 在庫の確認と加算は単一の条件付きUPDATEで行い、呼び出し側が競合を再現できない
// 単位として公開する
type FulfillmentService struct {
	txManager   transaction.Manager
	eventRepo   event.Repository
	tierRepo    tickettype.Repository
	regRepo     registration.Repository
	ticketRepo  ticket.Repository
	lockManager *redisinfra.LockManager
	cache       *redisinfra.AvailabilityCache
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewFulfillmentService はFulfillmentServiceを作成する
// lockManager・cache・metrics はnilを許容する（単体テスト用）
func NewFulfillmentService(
	tm transaction.Manager,
	er event.Repository,
	tr tickettype.Repository,
	rr registration.Repository,
	tkr ticket.Repository,
	lm *redisinfra.LockManager,
	cache *redisinfra.AvailabilityCache,
	m *metrics.Metrics,
) *FulfillmentService {
	return &FulfillmentService{
		txManager:   tm,
		eventRepo:   er,
		tierRepo:    tr,
		regRepo:     rr,
		ticketRepo:  tkr,
		lockManager: lm,
		cache:       cache,
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// FulfillInput は購入リクエスト
type FulfillInput struct {
	EventID       string
	TicketTypeID  string
	Quantity      int
	CustomerName  string
	CustomerEmail string
}

// Fulfill は在庫を確保して支払い待ちの申込を作成する
// 在庫の確認と販売数の加算はトランザクション内の条件付きUPDATE1回で行い、
// 競合を検出した場合は内部で1回だけリトライする
func (s *FulfillmentService) Fulfill(ctx context.Context, input FulfillInput) (*registration.Registration, error) {
	if input.Quantity <= 0 {
		s.countFulfillment("validation")
		return nil, registration.ErrInvalidQuantity
	}
	if input.CustomerEmail == "" {
		s.countFulfillment("validation")
		return nil, registration.ErrCustomerEmailRequired
	}

	ev, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		s.countFulfillment("error")
		return nil, err
	}
	if !ev.IsActive() {
		s.countFulfillment("validation")
		return nil, event.ErrEventNotActive
	}

	tier, err := s.tierRepo.GetByID(ctx, input.TicketTypeID)
	if err != nil {
		s.countFulfillment("error")
		return nil, err
	}
	if tier.EventID != input.EventID {
		s.countFulfillment("error")
		return nil, tickettype.ErrTicketTypeNotFound
	}

	// 同一区分への購入を直列化する。別区分・別イベントはブロックしない
	if s.lockManager != nil {
		lock, err := s.acquireTierLock(ctx, input.TicketTypeID)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countFulfillment("lock_failed")
				return nil, ErrLockBusy
			}
			s.countFulfillment("error")
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer s.releaseTierLock(ctx, lock)
	}

	reg, err := s.fulfillOnce(ctx, input, tier)
	if err != nil && errors.Is(err, tickettype.ErrReservationRace) {
		// 競合の内部リトライは1回だけ
		logger.Warn("在庫更新が競合したためリトライ",
			zap.String("ticket_type_id", input.TicketTypeID))
		reg, err = s.fulfillOnce(ctx, input, tier)
		if err != nil && errors.Is(err, tickettype.ErrReservationRace) {
			err = ErrFulfillmentConflict
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, tickettype.ErrCapacityExceeded):
			s.countFulfillment("capacity_exceeded")
		case errors.Is(err, ErrFulfillmentConflict):
			s.countFulfillment("conflict")
		default:
			s.countFulfillment("error")
		}
		return nil, err
	}

	s.countFulfillment("success")
	s.invalidateCache(ctx, input.EventID)
	return reg, nil
}

// fulfillOnce は1回分の購入試行。確保と申込作成を同一トランザクションで行う
func (s *FulfillmentService) fulfillOnce(ctx context.Context, input FulfillInput, tier *tickettype.TicketType) (*registration.Registration, error) {
	reg := registration.NewRegistration(
		input.EventID, input.TicketTypeID,
		input.CustomerName, input.CustomerEmail,
		input.Quantity, tier.Price,
	)
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.tierRepo.ReserveInventory(ctx, tx, input.TicketTypeID, input.Quantity); err != nil {
		return nil, err
	}
	if err := s.regRepo.Create(ctx, tx, reg); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return reg, nil
}

// ConfirmPayment は支払いを完了させ、数量分のチケットを発券する
func (s *FulfillmentService) ConfirmPayment(ctx context.Context, registrationID string) (*registration.Registration, []*ticket.Ticket, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, nil, err
	}
	if err := reg.Complete(); err != nil {
		return nil, nil, err
	}

	tickets := make([]*ticket.Ticket, reg.Quantity)
	for i := range tickets {
		tickets[i] = ticket.NewTicket(reg.ID, reg.TicketTypeID)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// pendingからの遷移を条件付きUPDATEで適用する。クライアントの再送や
	// 並行confirmはここで弾かれ、発券は一度しか行われない
	if err := s.regRepo.UpdateStatus(ctx, tx, reg, registration.PaymentPending); err != nil {
		return nil, nil, err
	}
	if err := s.ticketRepo.CreateBatch(ctx, tx, tickets); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TicketsIssuedTotal.Add(float64(len(tickets)))
	}
	logger.Info("支払い完了・発券",
		zap.String("registration_id", reg.ID),
		zap.Int("tickets", len(tickets)),
	)
	return reg, tickets, nil
}

// FailPayment は支払いを失敗にし、確保していた在庫を戻す
func (s *FulfillmentService) FailPayment(ctx context.Context, registrationID string) (*registration.Registration, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := reg.Fail(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.regRepo.UpdateStatus(ctx, tx, reg, registration.PaymentPending); err != nil {
		return nil, err
	}
	if err := s.tierRepo.ReleaseInventory(ctx, tx, reg.TicketTypeID, reg.Quantity); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, reg.EventID)
	return reg, nil
}

// RefundPayment は支払い済みの申込を返金し、在庫を戻す
func (s *FulfillmentService) RefundPayment(ctx context.Context, registrationID string) (*registration.Registration, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := reg.Refund(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// completedからの遷移を条件付きUPDATEで適用する。二重返金による
	// 在庫の二重解放をここで防ぐ
	if err := s.regRepo.UpdateStatus(ctx, tx, reg, registration.PaymentCompleted); err != nil {
		return nil, err
	}
	if err := s.tierRepo.ReleaseInventory(ctx, tx, reg.TicketTypeID, reg.Quantity); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, reg.EventID)
	return reg, nil
}

// GetRegistration はIDから申込を取得する
func (s *FulfillmentService) GetRegistration(ctx context.Context, id string) (*registration.Registration, error) {
	return s.regRepo.GetByID(ctx, id)
}

// GetTickets は申込に対する発券済みチケットを取得する
func (s *FulfillmentService) GetTickets(ctx context.Context, registrationID string) ([]*ticket.Ticket, error) {
	if _, err := s.regRepo.GetByID(ctx, registrationID); err != nil {
		return nil, err
	}
	return s.ticketRepo.GetByRegistrationID(ctx, registrationID)
}

// CheckInTicket はコードでチケットを照合し入場済みにする
func (s *FulfillmentService) CheckInTicket(ctx context.Context, code string) (*ticket.Ticket, error) {
	tk, err := s.ticketRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := tk.CheckIn(s.now()); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Update(ctx, tk); err != nil {
		return nil, err
	}
	return tk, nil
}

func (s *FulfillmentService) acquireTierLock(ctx context.Context, tierID string) (*redisinfra.DistributedLock, error) {
	start := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, "tier:"+tierID, 10*time.Second, 3, 100*time.Millisecond)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		s.metrics.DistributedLockDuration.WithLabelValues("acquire", status).Observe(time.Since(start).Seconds())
	}
	return lock, err
}

func (s *FulfillmentService) releaseTierLock(ctx context.Context, lock *redisinfra.DistributedLock) {
	start := time.Now()
	err := lock.Release(ctx)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		s.metrics.DistributedLockDuration.WithLabelValues("release", status).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		logger.Warn("ロック解放エラー", zap.Error(err))
	}
}

func (s *FulfillmentService) countFulfillment(status string) {
	if s.metrics != nil {
		s.metrics.FulfillmentsTotal.WithLabelValues(status).Inc()
	}
}

func (s *FulfillmentService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("空き在庫キャッシュ無効化エラー", zap.Error(err))
	}
}
