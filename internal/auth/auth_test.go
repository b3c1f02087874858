package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Generate(Principal{UserID: 7, Username: "alice", IsStaff: true})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: 7, Username: "alice", IsStaff: true}, claims.Principal())
}

func TestParseRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Generate(Principal{UserID: 1})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", -time.Minute)
	token, err := m.Generate(Principal{UserID: 1})
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestCanModify(t *testing.T) {
	owner := Principal{UserID: 1}
	other := Principal{UserID: 2}
	staff := Principal{UserID: 3, IsStaff: true}

	assert.True(t, owner.CanModify(1))
	assert.False(t, other.CanModify(1))
	assert.True(t, staff.CanModify(1))
}
