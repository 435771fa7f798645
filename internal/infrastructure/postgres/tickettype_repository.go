package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
	"github.com/sanosuguru/go-event-inventory/internal/domain/transaction"
)

// ticketTypeRow はDBの行を表す構造体
type ticketTypeRow struct {
	ID          string          `db:"id"`
	EventID     string          `db:"event_id"`
	Name        string          `db:"name"`
	Description *string         `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Quantity    int             `db:"quantity"`
	Sold        int             `db:"sold"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	Version     int             `db:"version"`
}

func (r *ticketTypeRow) toEntity() *tickettype.TicketType {
	t := &tickettype.TicketType{
		ID:        r.ID,
		EventID:   r.EventID,
		Name:      r.Name,
		Price:     r.Price,
		Quantity:  r.Quantity,
		Sold:      r.Sold,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	return t
}

const ticketTypeColumns = `id, event_id, name, description, price, quantity, sold, created_at, updated_at, version`

// TicketTypeRepository はチケット区分リポジトリのPostgreSQL実装
type TicketTypeRepository struct {
	db *sqlx.DB
}

// NewTicketTypeRepository はTicketTypeRepositoryを作成する
func NewTicketTypeRepository(db *sqlx.DB) *TicketTypeRepository {
	return &TicketTypeRepository{db: db}
}

// Create は新しいチケット区分を作成する
func (r *TicketTypeRepository) Create(ctx context.Context, t *tickettype.TicketType) error {
	query := `
		INSERT INTO ticket_types (event_id, name, description, price, quantity, sold, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		t.EventID, t.Name, nullable(t.Description), t.Price, t.Quantity, t.Sold, t.CreatedAt, t.UpdatedAt, t.Version,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("チケット区分作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからチケット区分を取得する
func (r *TicketTypeRepository) GetByID(ctx context.Context, id string) (*tickettype.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = $1`

	var row ticketTypeRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tickettype.ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("チケット区分取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByEventID はイベントに属するチケット区分を取得する
func (r *TicketTypeRepository) GetByEventID(ctx context.Context, eventID string) ([]*tickettype.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE event_id = $1 ORDER BY price ASC`

	var rows []ticketTypeRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("チケット区分一覧取得に失敗しました: %w", err)
	}

	types := make([]*tickettype.TicketType, len(rows))
	for i, row := range rows {
		types[i] = row.toEntity()
	}
	return types, nil
}

// ReserveInventory は条件付きUPDATEで在庫を確保する。
// 残数不足ならErrCapacityExceeded、並行更新に敗れた場合はErrReservationRaceを返す。
func (r *TicketTypeRepository) ReserveInventory(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE ticket_types
		SET sold = sold + $2, updated_at = $3, version = version + 1
		WHERE id = $1 AND sold + $2 <= quantity
	`
	result, err := sqlxTx.ExecContext(ctx, query, id, quantity, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("在庫確保に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// 0行更新は「容量超過」か「並行更新負け」か「存在しない」のいずれか。
	// 現在値を読み直して切り分ける。
	var row ticketTypeRow
	err = sqlxTx.GetContext(ctx, &row, `SELECT `+ticketTypeColumns+` FROM ticket_types WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tickettype.ErrTicketTypeNotFound
		}
		return fmt.Errorf("チケット区分取得に失敗しました: %w", err)
	}
	if row.Sold+quantity > row.Quantity {
		return tickettype.ErrCapacityExceeded
	}
	return tickettype.ErrReservationRace
}

// ReleaseInventory は確保済み在庫を解放する。
// 解放すると販売数が負になる場合はErrInventoryCorruptedを返す（黙って丸めない）。
func (r *TicketTypeRepository) ReleaseInventory(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE ticket_types
		SET sold = sold - $2, updated_at = $3, version = version + 1
		WHERE id = $1 AND sold - $2 >= 0
	`
	result, err := sqlxTx.ExecContext(ctx, query, id, quantity, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("在庫解放に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// 0行更新は「行が存在しない」か「解放すると負になる」のいずれか。
	// 読み直して切り分ける。
	var row ticketTypeRow
	err = sqlxTx.GetContext(ctx, &row, `SELECT `+ticketTypeColumns+` FROM ticket_types WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tickettype.ErrTicketTypeNotFound
		}
		return fmt.Errorf("チケット区分取得に失敗しました: %w", err)
	}
	return tickettype.ErrInventoryCorrupted
}

var _ tickettype.Repository = (*TicketTypeRepository)(nil)
