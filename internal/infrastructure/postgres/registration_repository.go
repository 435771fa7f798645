package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-event-inventory/internal/domain/registration"
	"github.com/sanosuguru/go-event-inventory/internal/domain/transaction"
)

// registrationRow はDBの行を表す構造体
type registrationRow struct {
	ID            string          `db:"id"`
	EventID       string          `db:"event_id"`
	TicketTypeID  string          `db:"ticket_type_id"`
	CustomerName  string          `db:"customer_name"`
	CustomerEmail string          `db:"customer_email"`
	Quantity      int             `db:"quantity"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	PaymentStatus string          `db:"payment_status"`
	RegisteredAt  time.Time       `db:"registered_at"`
	CompletedAt   *time.Time      `db:"completed_at"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r *registrationRow) toEntity() *registration.Registration {
	return &registration.Registration{
		ID:            r.ID,
		EventID:       r.EventID,
		TicketTypeID:  r.TicketTypeID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Quantity:      r.Quantity,
		TotalAmount:   r.TotalAmount,
		PaymentStatus: registration.PaymentStatus(r.PaymentStatus),
		RegisteredAt:  r.RegisteredAt,
		CompletedAt:   r.CompletedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

const registrationColumns = `id, event_id, ticket_type_id, customer_name, customer_email, quantity, total_amount, payment_status, registered_at, completed_at, created_at, updated_at`

// RegistrationRepository は申込リポジトリのPostgreSQL実装
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository はRegistrationRepositoryを作成する
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create は新しい申込を作成する
func (r *RegistrationRepository) Create(ctx context.Context, tx transaction.Tx, reg *registration.Registration) error {
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO registrations (event_id, ticket_type_id, customer_name, customer_email, quantity, total_amount, payment_status, registered_at, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = sqlxTx.QueryRowContext(ctx, query,
		reg.EventID, reg.TicketTypeID, reg.CustomerName, reg.CustomerEmail,
		reg.Quantity, reg.TotalAmount, string(reg.PaymentStatus),
		reg.RegisteredAt, reg.CompletedAt, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		return fmt.Errorf("申込作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから申込を取得する
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*registration.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	var row registrationRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("申込取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByEventID はイベントIDから申込一覧を取得する
func (r *RegistrationRepository) GetByEventID(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 ORDER BY registered_at DESC`

	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("申込一覧取得に失敗しました: %w", err)
	}
	return toRegistrations(rows), nil
}

// ListAll は全申込を取得する
func (r *RegistrationRepository) ListAll(ctx context.Context) ([]*registration.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations ORDER BY id`

	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("申込一覧取得に失敗しました: %w", err)
	}
	return toRegistrations(rows), nil
}

// ListCompleted は支払い済みの申込を全件取得する
func (r *RegistrationRepository) ListCompleted(ctx context.Context) ([]*registration.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE payment_status = 'completed' ORDER BY id`

	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("支払い済み申込の取得に失敗しました: %w", err)
	}
	return toRegistrations(rows), nil
}

// ListPendingBefore は基準時刻より前に申し込まれた支払い待ちの申込を取得する
func (r *RegistrationRepository) ListPendingBefore(ctx context.Context, before time.Time) ([]*registration.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE payment_status = 'pending' AND registered_at < $1 ORDER BY registered_at ASC`

	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query, before); err != nil {
		return nil, fmt.Errorf("支払い待ち申込の取得に失敗しました: %w", err)
	}
	return toRegistrations(rows), nil
}

// UpdateStatus は条件付きUPDATEで支払い状態を遷移させる。
// WHERE句で遷移元の状態を確認するため、同じ申込への並行リクエストは
// どちらか一方だけが成功する（二重発券・二重解放の防止）。
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, reg *registration.Registration, expected registration.PaymentStatus) error {
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE registrations
		SET payment_status = $1, completed_at = $2, updated_at = $3
		WHERE id = $4 AND payment_status = $5
	`
	result, err := sqlxTx.ExecContext(ctx, query,
		string(reg.PaymentStatus), reg.CompletedAt, reg.UpdatedAt, reg.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("申込更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// 0行更新は「行が存在しない」か「別の処理が先に状態を変えた」のいずれか
	var current string
	err = sqlxTx.GetContext(ctx, &current, `SELECT payment_status FROM registrations WHERE id = $1`, reg.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return registration.ErrRegistrationNotFound
		}
		return fmt.Errorf("申込取得に失敗しました: %w", err)
	}
	return registration.ErrPaymentStateConflict
}

func toRegistrations(rows []registrationRow) []*registration.Registration {
	regs := make([]*registration.Registration, len(rows))
	for i, row := range rows {
		regs[i] = row.toEntity()
	}
	return regs
}

var _ registration.Repository = (*RegistrationRepository)(nil)
