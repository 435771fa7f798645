package ticket

import "errors"

// Ticket ドメインのエラー定義
var (
	ErrTicketNotFound         = errors.New("チケットが見つかりません")
	ErrAlreadyCheckedIn       = errors.New("チケットは既に入場済みです")
	ErrDuplicateCode          = errors.New("チケットコードが重複しています")
	ErrRegistrationIDRequired = errors.New("申込IDは必須です")
	ErrTicketTypeIDRequired   = errors.New("チケット区分IDは必須です")
	ErrCodeRequired           = errors.New("チケットコードは必須です")
)
