package ticket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicket(t *testing.T) {
	tk := NewTicket("reg-1", "tier-1")

	assert.Equal(t, "reg-1", tk.RegistrationID)
	assert.False(t, tk.CheckedIn)
	assert.NoError(t, tk.Validate())

	// コードはUUIDとしてパースできること
	_, err := uuid.Parse(tk.Code)
	assert.NoError(t, err)
}

func TestNewTicket_CodesAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		tk := NewTicket("reg-1", "tier-1")
		_, dup := seen[tk.Code]
		require.False(t, dup, "チケットコードが重複した: %s", tk.Code)
		seen[tk.Code] = struct{}{}
	}
}

func TestTicket_CheckIn(t *testing.T) {
	at := time.Date(2026, 10, 1, 18, 30, 0, 0, time.UTC)

	t.Run("未入場のチケットを入場済みにできる", func(t *testing.T) {
		tk := NewTicket("reg-1", "tier-1")
		require.NoError(t, tk.CheckIn(at))
		assert.True(t, tk.CheckedIn)
		require.NotNil(t, tk.CheckedInAt)
		assert.Equal(t, at, *tk.CheckedInAt)
	})

	t.Run("入場済みのチケットは再入場できない", func(t *testing.T) {
		tk := NewTicket("reg-1", "tier-1")
		require.NoError(t, tk.CheckIn(at))
		assert.ErrorIs(t, tk.CheckIn(at.Add(time.Minute)), ErrAlreadyCheckedIn)
	})
}
