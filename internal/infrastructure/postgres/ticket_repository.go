package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-inventory/internal/domain/ticket"
	"github.com/sanosuguru/go-event-inventory/internal/domain/transaction"
)

// ticketRow はDBの行を表す構造体
type ticketRow struct {
	ID             string     `db:"id"`
	RegistrationID string     `db:"registration_id"`
	TicketTypeID   string     `db:"ticket_type_id"`
	Code           string     `db:"code"`
	CheckedIn      bool       `db:"checked_in"`
	CheckedInAt    *time.Time `db:"checked_in_at"`
	CreatedAt      time.Time  `db:"created_at"`
}

func (r *ticketRow) toEntity() *ticket.Ticket {
	return &ticket.Ticket{
		ID:             r.ID,
		RegistrationID: r.RegistrationID,
		TicketTypeID:   r.TicketTypeID,
		Code:           r.Code,
		CheckedIn:      r.CheckedIn,
		CheckedInAt:    r.CheckedInAt,
		CreatedAt:      r.CreatedAt,
	}
}

const ticketColumns = `id, registration_id, ticket_type_id, code, checked_in, checked_in_at, created_at`

// uniqueViolation はPostgreSQLの一意制約違反エラーコード
const uniqueViolation = "23505"

// TicketRepository はチケットリポジトリのPostgreSQL実装
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository はTicketRepositoryを作成する
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// CreateBatch は複数のチケットを一括発行する
func (r *TicketRepository) CreateBatch(ctx context.Context, tx transaction.Tx, tickets []*ticket.Ticket) error {
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tickets (registration_id, ticket_type_id, code, checked_in, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, t := range tickets {
		err := sqlxTx.QueryRowContext(ctx, query,
			t.RegistrationID, t.TicketTypeID, t.Code, t.CheckedIn, t.CreatedAt,
		).Scan(&t.ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
				return ticket.ErrDuplicateCode
			}
			return fmt.Errorf("チケット発行に失敗しました: %w", err)
		}
	}
	return nil
}

// GetByRegistrationID は申込IDからチケット一覧を取得する
func (r *TicketRepository) GetByRegistrationID(ctx context.Context, registrationID string) ([]*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE registration_id = $1 ORDER BY created_at ASC`

	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, registrationID); err != nil {
		return nil, fmt.Errorf("チケット一覧取得に失敗しました: %w", err)
	}

	tickets := make([]*ticket.Ticket, len(rows))
	for i, row := range rows {
		tickets[i] = row.toEntity()
	}
	return tickets, nil
}

// GetByCode はコードからチケットを取得する
func (r *TicketRepository) GetByCode(ctx context.Context, code string) (*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE code = $1`

	var row ticketRow
	err := r.db.GetContext(ctx, &row, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("チケット取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// Update はチケットを更新する（入場記録）
func (r *TicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	query := `
		UPDATE tickets
		SET checked_in = $1, checked_in_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, t.CheckedIn, t.CheckedInAt, t.ID)
	if err != nil {
		return fmt.Errorf("チケット更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return ticket.ErrTicketNotFound
	}
	return nil
}

var _ ticket.Repository = (*TicketRepository)(nil)
