package event

import (
	"context"
	"time"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// List はイベント一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Event, error)

	// ListAll は全イベントを取得する（集計用）
	ListAll(ctx context.Context) ([]*Event, error)

	// ListUpcoming は基準時刻より後に開始する有効なイベントを開始時刻順で取得する
	ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*Event, error)

	// Search はカテゴリ・開催地の部分一致で有効なイベントを検索する
	Search(ctx context.Context, category, location string) ([]*Event, error)

	// Update はイベントを更新する（楽観的ロック）
	Update(ctx context.Context, event *Event) error

	// Delete はイベントを削除する
	Delete(ctx context.Context, id string) error
}
