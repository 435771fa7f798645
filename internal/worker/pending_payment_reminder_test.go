package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-event-inventory/internal/application"
	"github.com/sanosuguru/go-event-inventory/internal/pkg/metrics"
)

// MockPendingLister はPendingListerのモック
type MockPendingLister struct {
	mock.Mock
}

func (m *MockPendingLister) PendingOlderThan(ctx context.Context, olderThan time.Duration) ([]application.PendingSummary, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.PendingSummary), args.Error(1)
}

func TestNewPendingPaymentReminder(t *testing.T) {
	mockLedger := new(MockPendingLister)

	reminder := NewPendingPaymentReminder(mockLedger, nil, 10*time.Minute, 24*time.Hour)

	assert.NotNil(t, reminder)
	assert.Equal(t, 10*time.Minute, reminder.interval)
	assert.Equal(t, 24*time.Hour, reminder.olderThan)
	assert.NotNil(t, reminder.stopCh)
	assert.NotNil(t, reminder.doneCh)
}

func TestPendingPaymentReminder_Remind(t *testing.T) {
	t.Run("検出件数をゲージに記録する", func(t *testing.T) {
		mockLedger := new(MockPendingLister)
		mockLedger.On("PendingOlderThan", mock.Anything, 24*time.Hour).
			Return([]application.PendingSummary{
				{RegistrationID: "reg-1", EventID: "e1", CustomerEmail: "a@example.com", TotalAmount: decimal.RequireFromString("80.00")},
				{RegistrationID: "reg-2", EventID: "e1", CustomerEmail: "b@example.com", TotalAmount: decimal.RequireFromString("50.00")},
			}, nil)

		registry := prometheus.NewRegistry()
		m := metrics.NewWithRegistry(registry)
		reminder := NewPendingPaymentReminder(mockLedger, m, 10*time.Minute, 24*time.Hour)

		reminder.remind(context.Background())

		assert.Equal(t, float64(2), testutil.ToFloat64(m.StalePendingRegistrations))
		mockLedger.AssertExpectations(t)
	})

	t.Run("対象なしの場合はゲージを0にする", func(t *testing.T) {
		mockLedger := new(MockPendingLister)
		mockLedger.On("PendingOlderThan", mock.Anything, 24*time.Hour).
			Return([]application.PendingSummary{}, nil)

		registry := prometheus.NewRegistry()
		m := metrics.NewWithRegistry(registry)
		reminder := NewPendingPaymentReminder(mockLedger, m, 10*time.Minute, 24*time.Hour)

		reminder.remind(context.Background())

		assert.Equal(t, float64(0), testutil.ToFloat64(m.StalePendingRegistrations))
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		mockLedger := new(MockPendingLister)
		mockLedger.On("PendingOlderThan", mock.Anything, 24*time.Hour).
			Return(nil, assert.AnError)

		reminder := NewPendingPaymentReminder(mockLedger, nil, 10*time.Minute, 24*time.Hour)

		// パニックしないことを確認
		reminder.remind(context.Background())

		mockLedger.AssertExpectations(t)
	})
}

func TestPendingPaymentReminder_StartStop(t *testing.T) {
	mockLedger := new(MockPendingLister)
	mockLedger.On("PendingOlderThan", mock.Anything, 24*time.Hour).
		Return([]application.PendingSummary{}, nil).Maybe()

	reminder := NewPendingPaymentReminder(mockLedger, nil, 10*time.Millisecond, 24*time.Hour)

	go reminder.Start(context.Background())

	// 何回か実行させてから停止
	time.Sleep(50 * time.Millisecond)
	reminder.Stop()

	// doneCh が閉じていることを確認
	select {
	case <-reminder.doneCh:
		// 期待通り
	case <-time.After(1 * time.Second):
		t.Fatal("ワーカーが停止しない")
	}
}
