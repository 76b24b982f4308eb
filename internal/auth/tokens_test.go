package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("secret")

	signed, err := tokens.IssueParent("user-1")
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, KindParent, claims.Type)
	assert.Empty(t, claims.HouseholdID)
}

func TestChildTokenCarriesHousehold(t *testing.T) {
	tokens := NewTokens("secret")

	signed, err := tokens.IssueChild("child-1", "house-1")
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "child-1", claims.Subject)
	assert.Equal(t, KindChild, claims.Type)
	assert.Equal(t, "house-1", claims.HouseholdID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := NewTokens("secret").IssueParent("user-1")
	require.NoError(t, err)

	_, err = NewTokens("other").Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	tokens := NewTokens("secret")
	tokens.now = func() time.Time { return time.Now().Add(-TokenTTL - time.Hour) }
	signed, err := tokens.IssueParent("user-1")
	require.NoError(t, err)

	_, err = NewTokens("secret").Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokens("secret").Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashAndCheck(t *testing.T) {
	h, err := Hash("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", h)

	ok, err := Check(h, "1234")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Check(h, "4321")
	require.NoError(t, err)
	assert.False(t, ok)
}
