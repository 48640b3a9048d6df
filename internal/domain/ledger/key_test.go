package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "u1_4_2025", Key("u1", 4, 2025))
	assert.Equal(t, "u1_04_2025", LegacyKey("u1", 4, 2025))
	assert.Equal(t, Key("u1", 11, 2025), LegacyKey("u1", 11, 2025))
}

func TestParseKey(t *testing.T) {
	userID, month, year, err := ParseKey("auth0_abc_def_04_2025")
	require.NoError(t, err)
	assert.Equal(t, "auth0_abc_def", userID)
	assert.Equal(t, 4, month)
	assert.Equal(t, 2025, year)

	for _, bad := range []string{"", "u1", "u1_4", "_4_2025", "u1_13_2025", "u1_x_2025", "u1_4_y"} {
		_, _, _, err := ParseKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestIsLegacyKey(t *testing.T) {
	assert.True(t, IsLegacyKey("u1_04_2025"))
	assert.False(t, IsLegacyKey("u1_4_2025"))
	assert.False(t, IsLegacyKey("u1_12_2025"))
	assert.False(t, IsLegacyKey("garbage"))
}
