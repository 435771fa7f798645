package tickettype

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketType(t *testing.T) {
	tt := NewTicketType("event-1", "一般", "自由席", decimal.RequireFromString("100.00"), 50)

	assert.Equal(t, "event-1", tt.EventID)
	assert.Equal(t, 50, tt.Quantity)
	assert.Equal(t, 0, tt.Sold)
	assert.NoError(t, tt.Validate())
}

func TestTicketType_Available(t *testing.T) {
	t.Run("残り在庫数を返す", func(t *testing.T) {
		tt := NewTicketType("event-1", "一般", "", decimal.RequireFromString("100.00"), 10)
		tt.Sold = 8

		available, err := tt.Available()
		require.NoError(t, err)
		assert.Equal(t, 2, available)
	})

	t.Run("完売時は0を返す", func(t *testing.T) {
		tt := NewTicketType("event-1", "一般", "", decimal.RequireFromString("100.00"), 10)
		tt.Sold = 10

		available, err := tt.Available()
		require.NoError(t, err)
		assert.Equal(t, 0, available)
	})

	t.Run("販売数が在庫数を超えている場合はエラーを返す", func(t *testing.T) {
		// 負数に丸めるのではなくデータ不整合として通知する
		tt := NewTicketType("event-1", "一般", "", decimal.RequireFromString("100.00"), 10)
		tt.Sold = 11

		_, err := tt.Available()
		assert.ErrorIs(t, err, ErrInventoryCorrupted)
	})
}

func TestTicketType_CanReserve(t *testing.T) {
	tt := NewTicketType("event-1", "一般", "", decimal.RequireFromString("50.00"), 10)
	tt.Sold = 8

	t.Run("残り在庫内なら確保できる", func(t *testing.T) {
		ok, err := tt.CanReserve(2)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("残り在庫を超える数量は確保できない", func(t *testing.T) {
		ok, err := tt.CanReserve(3)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("データ不整合時はエラー", func(t *testing.T) {
		tt.Sold = 20
		_, err := tt.CanReserve(1)
		assert.ErrorIs(t, err, ErrInventoryCorrupted)
	})
}

func TestTicketType_Validate(t *testing.T) {
	t.Run("イベントIDが空の場合はエラー", func(t *testing.T) {
		tt := NewTicketType("", "一般", "", decimal.Zero, 10)
		assert.ErrorIs(t, tt.Validate(), ErrEventIDRequired)
	})

	t.Run("名前が空の場合はエラー", func(t *testing.T) {
		tt := NewTicketType("event-1", "", "", decimal.Zero, 10)
		assert.ErrorIs(t, tt.Validate(), ErrTicketNameRequired)
	})

	t.Run("価格が負の場合はエラー", func(t *testing.T) {
		tt := NewTicketType("event-1", "一般", "", decimal.RequireFromString("-1.00"), 10)
		assert.ErrorIs(t, tt.Validate(), ErrNegativePrice)
	})

	t.Run("価格0円は許容する", func(t *testing.T) {
		tt := NewTicketType("event-1", "無料枠", "", decimal.Zero, 10)
		assert.NoError(t, tt.Validate())
	})

	t.Run("数量が0以下の場合はエラー", func(t *testing.T) {
		tt := NewTicketType("event-1", "一般", "", decimal.Zero, 0)
		assert.ErrorIs(t, tt.Validate(), ErrInvalidQuantity)
	})
}
