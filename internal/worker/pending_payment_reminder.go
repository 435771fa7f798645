package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-inventory/internal/application"
	"github.com/sanosuguru/go-event-inventory/internal/pkg/logger"
	"github.com/sanosuguru/go-event-inventory/internal/pkg/metrics"
)

// PendingLister は古い支払い待ち申込を列挙するインターフェース
type PendingLister interface {
	PendingOlderThan(ctx context.Context, olderThan time.Duration) ([]application.PendingSummary, error)
}

// PendingPaymentReminder は支払い待ちのまま放置された申込を定期的に検出するワーカー
// 状態は変更しない。件数をメトリクスに記録し、督促対象をログに残すだけ
type PendingPaymentReminder struct {
	ledger    PendingLister
	metrics   *metrics.Metrics
	interval  time.Duration
	olderThan time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewPendingPaymentReminder は新しいリマインダーを作成
// metrics はnilを許容する
func NewPendingPaymentReminder(
	ledger PendingLister,
	m *metrics.Metrics,
	interval time.Duration,
	olderThan time.Duration,
) *PendingPaymentReminder {
	return &PendingPaymentReminder{
		ledger:    ledger,
		metrics:   m,
		interval:  interval,
		olderThan: olderThan,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start はリマインダーを開始
func (r *PendingPaymentReminder) Start(ctx context.Context) {
	logger.Info("支払いリマインダー開始",
		zap.Duration("interval", r.interval),
		zap.Duration("older_than", r.olderThan),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("支払いリマインダー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("支払いリマインダー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.remind(ctx)
		}
	}
}

// Stop はリマインダーを停止
func (r *PendingPaymentReminder) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// remind は古い支払い待ち申込を検出してログとメトリクスに記録する
func (r *PendingPaymentReminder) remind(ctx context.Context) {
	log := logger.Get()
	log.Debug("古い支払い待ち申込の確認開始")

	pending, err := r.ledger.PendingOlderThan(ctx, r.olderThan)
	if err != nil {
		log.Error("支払い待ち申込の取得失敗", zap.Error(err))
		return
	}

	if r.metrics != nil {
		r.metrics.StalePendingRegistrations.Set(float64(len(pending)))
	}

	if len(pending) == 0 {
		log.Debug("古い支払い待ち申込なし")
		return
	}

	log.Info("古い支払い待ち申込を検出", zap.Int("count", len(pending)))
	for _, p := range pending {
		log.Info("督促対象",
			zap.String("registration_id", p.RegistrationID),
			zap.String("event_id", p.EventID),
			zap.String("customer_email", p.CustomerEmail),
			zap.Time("registered_at", p.RegisteredAt),
		)
	}
}
