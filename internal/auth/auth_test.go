package auth

import (
	"testing"
	"time"

	"centavo/internal/core"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	require.True(t, CheckPassword(hash, "s3cret-pass"))
	require.False(t, CheckPassword(hash, "wrong"))
	require.False(t, CheckPassword("", "s3cret-pass"))
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens(testSecret, 15*time.Minute, 7*24*time.Hour)

	pair, err := tokens.Issue("user-1")
	require.NoError(t, err)
	require.Equal(t, "bearer", pair.TokenType)
	require.Equal(t, 900, pair.ExpiresIn)

	sub, err := tokens.Parse(pair.AccessToken, Access)
	require.NoError(t, err)
	require.Equal(t, "user-1", sub)

	sub, err = tokens.Parse(pair.RefreshToken, Refresh)
	require.NoError(t, err)
	require.Equal(t, "user-1", sub)
}

func TestTokensRejections(t *testing.T) {
	tokens := NewTokens(testSecret, time.Minute, time.Hour)
	pair, err := tokens.Issue("user-1")
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		kind  Kind
		setup func()
	}{
		{name: "refresh used as access", token: pair.RefreshToken, kind: Access},
		{name: "access used as refresh", token: pair.AccessToken, kind: Refresh},
		{name: "garbage", token: "not.a.jwt", kind: Access},
		{name: "other secret", token: pair.AccessToken, kind: Access, setup: func() {
			tokens.Secret = []byte("another-secret-another-secret-xx")
		}},
		{name: "expired", token: pair.AccessToken, kind: Access, setup: func() {
			tokens.Secret = []byte(testSecret)
			tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setup != nil {
				tc.setup()
			}
			_, err := tokens.Parse(tc.token, tc.kind)
			require.ErrorIs(t, err, core.ErrUnauthorized)
		})
	}
}
