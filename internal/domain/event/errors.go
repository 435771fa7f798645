package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound          = errors.New("イベントが見つかりません")
	ErrEventNameRequired      = errors.New("イベント名は必須です")
	ErrInvalidMaxAttendees    = errors.New("定員は1以上である必要があります")
	ErrInvalidEventTime       = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrInvalidStatus          = errors.New("不正なイベント状態です")
	ErrEventNotActive         = errors.New("イベントは販売受付中ではありません")
	ErrOptimisticLockConflict = errors.New("楽観的ロックの競合が発生しました")
)
