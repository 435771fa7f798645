package tickettype

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType はチケット区分（ティア）エンティティを表す
// イベントごとに複数の区分を持ち、それぞれが独立した在庫を持つ
type TicketType struct {
	ID          string
	EventID     string
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Sold        int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int // 楽観的ロック用
}

// NewTicketType は新しいチケット区分を作成する
func NewTicketType(eventID, name, description string, price decimal.Decimal, quantity int) *TicketType {
	now := time.Now().UTC()
	return &TicketType{
		EventID:     eventID,
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		Sold:        0,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}
}

// Available は残り在庫数を返す
// sold > quantity はデータ破損のシグナルであり、丸めずにエラーとして返す
func (t *TicketType) Available() (int, error) {
	if t.Sold > t.Quantity {
		return 0, ErrInventoryCorrupted
	}
	return t.Quantity - t.Sold, nil
}

// CanReserve は指定数量を確保できるかを返す
func (t *TicketType) CanReserve(quantity int) (bool, error) {
	available, err := t.Available()
	if err != nil {
		return false, err
	}
	return quantity <= available, nil
}

// Validate はチケット区分の検証を行う
func (t *TicketType) Validate() error {
	if t.EventID == "" {
		return ErrEventIDRequired
	}
	if t.Name == "" {
		return ErrTicketNameRequired
	}
	if t.Price.IsNegative() {
		return ErrNegativePrice
	}
	if t.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
