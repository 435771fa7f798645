package ticket

import (
	"context"

	"github.com/sanosuguru/go-event-inventory/internal/domain/transaction"
)

// Repository はチケットリポジトリのインターフェース
type Repository interface {
	// CreateBatch は複数のチケットを一括発行する（トランザクション必須）
	// コードのユニーク制約違反は ErrDuplicateCode として返す
	CreateBatch(ctx context.Context, tx transaction.Tx, tickets []*Ticket) error

	// GetByRegistrationID は申込IDからチケット一覧を取得する
	GetByRegistrationID(ctx context.Context, registrationID string) ([]*Ticket, error)

	// GetByCode はコードからチケットを取得する
	GetByCode(ctx context.Context, code string) (*Ticket, error)

	// Update はチケットを更新する（入場記録）
	Update(ctx context.Context, t *Ticket) error
}
