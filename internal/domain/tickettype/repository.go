package tickettype

import (
	"context"

	"github.com/sanosuguru/go-event-inventory/internal/domain/transaction"
)

// Repository はチケット区分リポジトリのインターフェース
type Repository interface {
	// Create は新しいチケット区分を作成する
	Create(ctx context.Context, t *TicketType) error

	// GetByID はIDからチケット区分を取得する
	GetByID(ctx context.Context, id string) (*TicketType, error)

	// GetByEventID はイベントIDからチケット区分一覧を取得する
	GetByEventID(ctx context.Context, eventID string) ([]*TicketType, error)

	// ReserveInventory は在庫の確認と販売数の加算を単一の条件付きUPDATEで行う
	// （トランザクション必須）。在庫不足の場合は ErrCapacityExceeded、
	// 区分が消えている等の競合の場合は ErrReservationRace を返す
	ReserveInventory(ctx context.Context, tx transaction.Tx, id string, quantity int) error

	// ReleaseInventory は販売数を減算する（返金時、トランザクション必須）
	ReleaseInventory(ctx context.Context, tx transaction.Tx, id string, quantity int) error
}
