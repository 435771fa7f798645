package ticket

import (
	"time"

	"github.com/google/uuid"
)

// Ticket は発券済みチケットエンティティを表す
// 支払い完了時に申込の数量分だけ生成される
type Ticket struct {
	ID             string
	RegistrationID string
	TicketTypeID   string
	Code           string
	CheckedIn      bool
	CheckedInAt    *time.Time
	CreatedAt      time.Time
}

// NewTicket は新しいチケットを発行する
// コードはUUIDv4。一意性はDBのユニーク制約にも委ね、衝突はエラーとして扱う
func NewTicket(registrationID, ticketTypeID string) *Ticket {
	return &Ticket{
		RegistrationID: registrationID,
		TicketTypeID:   ticketTypeID,
		Code:           uuid.New().String(),
		CheckedIn:      false,
		CreatedAt:      time.Now().UTC(),
	}
}

// CheckIn はチケットを入場済みにする
func (t *Ticket) CheckIn(at time.Time) error {
	if t.CheckedIn {
		return ErrAlreadyCheckedIn
	}
	t.CheckedIn = true
	t.CheckedInAt = &at
	return nil
}

// Validate はチケットの検証を行う
func (t *Ticket) Validate() error {
	if t.RegistrationID == "" {
		return ErrRegistrationIDRequired
	}
	if t.TicketTypeID == "" {
		return ErrTicketTypeIDRequired
	}
	if t.Code == "" {
		return ErrCodeRequired
	}
	return nil
}
