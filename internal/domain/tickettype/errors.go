package tickettype

import "errors"

// TicketType ドメインのエラー定義
var (
	ErrTicketTypeNotFound = errors.New("チケット区分が見つかりません")
	ErrEventIDRequired    = errors.New("イベントIDは必須です")
	ErrTicketNameRequired = errors.New("チケット区分名は必須です")
	ErrNegativePrice      = errors.New("価格は0以上である必要があります")
	ErrInvalidQuantity    = errors.New("数量は1以上である必要があります")
	ErrCapacityExceeded   = errors.New("残り在庫数を超えています")
	ErrInventoryCorrupted = errors.New("販売数が在庫数を超えています（データ不整合）")
	ErrReservationRace    = errors.New("在庫更新が競合しました")
)
