package application

import "errors"

// アプリケーション層のエラー定義
var (
	// ErrInvalidDuration は負の経過時間が指定された場合のエラー
	ErrInvalidDuration = errors.New("経過時間は0以上である必要があります")

	// ErrFulfillmentConflict は在庫更新のリトライ後も競合が解消しなかった場合のエラー
	ErrFulfillmentConflict = errors.New("購入処理が競合しました。時間をおいて再試行してください")

	// ErrLockBusy は対象チケット区分のロックを取得できなかった場合のエラー
	ErrLockBusy = errors.New("対象のチケット区分は他の購入処理中です")
)
