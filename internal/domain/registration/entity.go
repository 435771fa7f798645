package registration

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus は支払い状態を表す
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Registration は申込（購入）エンティティを表す
// 売上に計上されるのは payment_status が completed のものだけ
type Registration struct {
	ID            string
	EventID       string
	TicketTypeID  string
	CustomerName  string
	CustomerEmail string
	Quantity      int
	TotalAmount   decimal.Decimal
	PaymentStatus PaymentStatus
	RegisteredAt  time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewRegistration は新しい申込を作成する
// 合計金額は単価×数量で確定し、以後変更しない
func NewRegistration(eventID, ticketTypeID, customerName, customerEmail string, quantity int, unitPrice decimal.Decimal) *Registration {
	now := time.Now().UTC()
	return &Registration{
		EventID:       eventID,
		TicketTypeID:  ticketTypeID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Quantity:      quantity,
		TotalAmount:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		PaymentStatus: PaymentPending,
		RegisteredAt:  now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsPending は支払い待ちかを返す
func (r *Registration) IsPending() bool {
	return r.PaymentStatus == PaymentPending
}

// IsCompleted は支払い済みかを返す
func (r *Registration) IsCompleted() bool {
	return r.PaymentStatus == PaymentCompleted
}

// Complete は支払いを完了状態にする
func (r *Registration) Complete() error {
	if r.PaymentStatus != PaymentPending {
		return ErrNotPending
	}
	now := time.Now().UTC()
	r.PaymentStatus = PaymentCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now
	return nil
}

// Fail は支払いを失敗状態にする
func (r *Registration) Fail() error {
	if r.PaymentStatus != PaymentPending {
		return ErrNotPending
	}
	r.PaymentStatus = PaymentFailed
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Refund は支払い済みの申込を返金状態にする
func (r *Registration) Refund() error {
	if r.PaymentStatus == PaymentRefunded {
		return ErrAlreadyRefunded
	}
	if r.PaymentStatus != PaymentCompleted {
		return ErrNotCompleted
	}
	r.PaymentStatus = PaymentRefunded
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Validate は申込の検証を行う
func (r *Registration) Validate() error {
	if r.EventID == "" {
		return ErrEventIDRequired
	}
	if r.TicketTypeID == "" {
		return ErrTicketTypeIDRequired
	}
	if r.CustomerEmail == "" {
		return ErrCustomerEmailRequired
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.TotalAmount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}
