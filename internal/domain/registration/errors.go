package registration

import "errors"

// Registration ドメインのエラー定義
var (
	ErrRegistrationNotFound  = errors.New("申込が見つかりません")
	ErrNotPending            = errors.New("申込は支払い待ちではありません")
	ErrPaymentStateConflict  = errors.New("支払い状態が他の処理によって更新されています")
	ErrNotCompleted          = errors.New("申込は支払い済みではありません")
	ErrAlreadyRefunded       = errors.New("申込は既に返金されています")
	ErrEventIDRequired       = errors.New("イベントIDは必須です")
	ErrTicketTypeIDRequired  = errors.New("チケット区分IDは必須です")
	ErrCustomerEmailRequired = errors.New("購入者メールアドレスは必須です")
	ErrInvalidQuantity       = errors.New("数量は1以上である必要があります")
	ErrNegativeAmount        = errors.New("合計金額は0以上である必要があります")
)
