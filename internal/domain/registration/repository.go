package registration

import (
	"context"
	"time"

	"github.com/sanosuguru/go-event-inventory/internal/domain/transaction"
)

// Repository は申込リポジトリのインターフェース
type Repository interface {
	// Create は新しい申込を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, r *Registration) error

	// GetByID はIDから申込を取得する
	GetByID(ctx context.Context, id string) (*Registration, error)

	// GetByEventID はイベントIDから申込一覧を取得する
	GetByEventID(ctx context.Context, eventID string) ([]*Registration, error)

	// ListAll は全申込を取得する（集計用）
	ListAll(ctx context.Context) ([]*Registration, error)

	// ListCompleted は支払い済みの申込を全件取得する（集計用）
	ListCompleted(ctx context.Context) ([]*Registration, error)

	// ListPendingBefore は基準時刻より前に申し込まれた支払い待ちの申込を取得する
	ListPendingBefore(ctx context.Context, before time.Time) ([]*Registration, error)

	// UpdateStatus はexpectedからr.PaymentStatusへの状態遷移を適用する（トランザクション必須）
	// 他の処理が先に状態を変えていた場合はErrPaymentStateConflictを返す
	UpdateStatus(ctx context.Context, tx transaction.Tx, r *Registration, expected PaymentStatus) error
}
