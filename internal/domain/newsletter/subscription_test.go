package newsletter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  Jane.Doe@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", got)

	for _, bad := range []string{"", "   ", "not-an-email", "Jane <jane@example.com>", "a@"} {
		_, err := NormalizeEmail(bad)
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestNewSubscription(t *testing.T) {
	sub, err := NewSubscription("Reader@Example.com")
	require.NoError(t, err)

	assert.Equal(t, "reader@example.com", sub.Email)
	assert.True(t, sub.IsActive)
	assert.False(t, sub.SubscribedAt.IsZero())
	assert.NotEqual(t, [16]byte{}, [16]byte(sub.ID))
}
