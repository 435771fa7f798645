package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Description    *string   `db:"description"`
	Location       *string   `db:"location"`
	Category       string    `db:"category"`
	Status         string    `db:"status"`
	StartAt        time.Time `db:"start_at"`
	EndAt          time.Time `db:"end_at"`
	MaxAttendees   int       `db:"max_attendees"`
	OrganizerName  *string   `db:"organizer_name"`
	OrganizerEmail *string   `db:"organizer_email"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	Version        int       `db:"version"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	e := &event.Event{
		ID:           r.ID,
		Name:         r.Name,
		Category:     r.Category,
		Status:       event.Status(r.Status),
		StartAt:      r.StartAt,
		EndAt:        r.EndAt,
		MaxAttendees: r.MaxAttendees,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Version:      r.Version,
	}
	if r.Description != nil {
		e.Description = *r.Description
	}
	if r.Location != nil {
		e.Location = *r.Location
	}
	if r.OrganizerName != nil {
		e.OrganizerName = *r.OrganizerName
	}
	if r.OrganizerEmail != nil {
		e.OrganizerEmail = *r.OrganizerEmail
	}
	return e
}

const eventColumns = `id, name, description, location, category, status, start_at, end_at, max_attendees, organizer_name, organizer_email, created_at, updated_at, version`

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (name, description, location, category, status, start_at, end_at, max_attendees, organizer_name, organizer_email, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		e.Name, nullable(e.Description), nullable(e.Location), e.Category, string(e.Status),
		e.StartAt, e.EndAt, e.MaxAttendees,
		nullable(e.OrganizerName), nullable(e.OrganizerEmail),
		e.CreatedAt, e.UpdatedAt, e.Version,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はイベント一覧を取得する
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY start_at DESC LIMIT $1 OFFSET $2`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}
	return toEntities(rows), nil
}

// ListAll は全イベントを取得する（集計用）
func (r *EventRepository) ListAll(ctx context.Context) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY id`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}
	return toEntities(rows), nil
}

// ListUpcoming は基準時刻より後に開始する有効なイベントを開始時刻順で取得する
func (r *EventRepository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE start_at > $1 AND status = 'active' ORDER BY start_at ASC LIMIT $2`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, after, limit); err != nil {
		return nil, fmt.Errorf("開催予定イベント取得に失敗しました: %w", err)
	}
	return toEntities(rows), nil
}

// Search はカテゴリ・開催地の部分一致で有効なイベントを検索する
func (r *EventRepository) Search(ctx context.Context, category, location string) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = 'active'`
	args := []interface{}{}

	if category != "" {
		args = append(args, "%"+category+"%")
		query += fmt.Sprintf(" AND category ILIKE $%d", len(args))
	}
	if location != "" {
		args = append(args, "%"+location+"%")
		query += fmt.Sprintf(" AND location ILIKE $%d", len(args))
	}
	query += " ORDER BY start_at ASC"

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("イベント検索に失敗しました: %w", err)
	}
	return toEntities(rows), nil
}

// Update はイベントを更新する（楽観的ロック）
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, location = $3, category = $4, status = $5,
		    start_at = $6, end_at = $7, max_attendees = $8,
		    organizer_name = $9, organizer_email = $10,
		    updated_at = $11, version = version + 1
		WHERE id = $12 AND version = $13
	`
	result, err := r.db.ExecContext(ctx, query,
		e.Name, nullable(e.Description), nullable(e.Location), e.Category, string(e.Status),
		e.StartAt, e.EndAt, e.MaxAttendees,
		nullable(e.OrganizerName), nullable(e.OrganizerEmail),
		time.Now().UTC(), e.ID, e.Version,
	)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		// 行が存在しないか、バージョンが古い
		if _, getErr := r.GetByID(ctx, e.ID); getErr != nil {
			return getErr
		}
		return event.ErrOptimisticLockConflict
	}

	e.Version++
	return nil
}

// Delete はイベントを削除する
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("イベント削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

func toEntities(rows []eventRow) []*event.Event {
	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
