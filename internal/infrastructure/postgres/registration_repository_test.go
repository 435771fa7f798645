package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-inventory/internal/config"
	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
	"github.com/sanosuguru/go-event-inventory/internal/domain/registration"
	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
	"github.com/sanosuguru/go-event-inventory/internal/domain/transaction"
)

// setupTestDB はテスト用DBへ接続する。DB未起動時はスキップ
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := config.Load()
	db, err := NewConnection(&cfg.Database)
	if err != nil {
		t.Skip("PostgreSQL not available")
	}
	if err := RunMigrations(db.DB, "../../../migrations"); err != nil {
		db.Close()
		t.Skipf("マイグレーション実行エラー: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("TRUNCATE TABLE tickets, registrations, ticket_types, events RESTART IDENTITY CASCADE")
		db.Close()
	})
	return db
}

// seedEvent はテスト用イベントを1件作成する
func seedEvent(t *testing.T, db *sqlx.DB) *event.Event {
	t.Helper()
	ev := event.NewEvent(
		"テストイベント", "", "テスト会場", "tech",
		time.Now().Add(14*24*time.Hour), time.Now().Add(14*24*time.Hour+8*time.Hour),
		500, "", "",
	)
	require.NoError(t, NewEventRepository(db).Create(context.Background(), ev))
	return ev
}

// seedTier はテスト用チケット区分を1件作成する
func seedTier(t *testing.T, db *sqlx.DB, eventID string, quantity int) *tickettype.TicketType {
	t.Helper()
	tier := tickettype.NewTicketType(eventID, "一般", "", decimal.RequireFromString("50.00"), quantity)
	require.NoError(t, NewTicketTypeRepository(db).Create(context.Background(), tier))
	return tier
}

// inTx はトランザクション内で関数を実行しコミットする
func inTx(t *testing.T, db *sqlx.DB, fn func(tx transaction.Tx) error) error {
	t.Helper()
	tx, err := NewTxManager(db).Begin(context.Background())
	require.NoError(t, err)
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	require.NoError(t, tx.Commit())
	return nil
}

func TestRegistrationRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ev := seedEvent(t, db)
	tier := seedTier(t, db, ev.ID, 10)
	repo := NewRegistrationRepository(db)

	newPendingReg := func() *registration.Registration {
		reg := registration.NewRegistration(ev.ID, tier.ID, "山田太郎", "taro@example.com", 2, tier.Price)
		require.NoError(t, inTx(t, db, func(tx transaction.Tx) error {
			return repo.Create(ctx, tx, reg)
		}))
		return reg
	}

	t.Run("pendingからcompletedへ遷移できる", func(t *testing.T) {
		reg := newPendingReg()
		require.NoError(t, reg.Complete())

		err := inTx(t, db, func(tx transaction.Tx) error {
			return repo.UpdateStatus(ctx, tx, reg, registration.PaymentPending)
		})
		require.NoError(t, err)

		stored, err := repo.GetByID(ctx, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, registration.PaymentCompleted, stored.PaymentStatus)
		assert.NotNil(t, stored.CompletedAt)
	})

	t.Run("既に遷移済みの申込への再適用は状態競合", func(t *testing.T) {
		reg := newPendingReg()
		require.NoError(t, reg.Complete())
		require.NoError(t, inTx(t, db, func(tx transaction.Tx) error {
			return repo.UpdateStatus(ctx, tx, reg, registration.PaymentPending)
		}))

		// 再送されたconfirmを再現する。遷移元はもうpendingではない
		err := inTx(t, db, func(tx transaction.Tx) error {
			return repo.UpdateStatus(ctx, tx, reg, registration.PaymentPending)
		})
		assert.ErrorIs(t, err, registration.ErrPaymentStateConflict)
	})

	t.Run("存在しない申込はNotFound", func(t *testing.T) {
		reg := registration.NewRegistration(ev.ID, tier.ID, "", "ghost@example.com", 1, tier.Price)
		reg.ID = "00000000-0000-0000-0000-000000000000"
		require.NoError(t, reg.Complete())

		err := inTx(t, db, func(tx transaction.Tx) error {
			return repo.UpdateStatus(ctx, tx, reg, registration.PaymentPending)
		})
		assert.ErrorIs(t, err, registration.ErrRegistrationNotFound)
	})
}
