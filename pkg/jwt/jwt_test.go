package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("s3cret", "bookshelf", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken("reader@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "reader@x.com", claims.Email)
	assert.Equal(t, "reader@x.com", claims.Subject)
	assert.Equal(t, "bookshelf", claims.Issuer)
}

func TestManager_Rejects(t *testing.T) {
	m := NewManager("s3cret", "bookshelf", time.Hour, time.Hour)
	pair, err := m.GenerateToken("reader@x.com")
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other := NewManager("different", "bookshelf", time.Hour, time.Hour)
		_, err := other.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := NewManager("s3cret", "someone-else", time.Hour, time.Hour)
		_, err := other.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		short := NewManager("s3cret", "bookshelf", -time.Minute, time.Hour)
		p, err := short.GenerateToken("reader@x.com")
		require.NoError(t, err)
		_, err = m.ParseToken(p.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("alg none", func(t *testing.T) {
		tok := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{
			Email: "reader@x.com",
			RegisteredClaims: gojwt.RegisteredClaims{
				Issuer:    "bookshelf",
				ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		s, err := tok.SignedString(gojwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.ParseToken(s)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ParseToken("not.a.token")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestManager_RefreshAccessToken(t *testing.T) {
	m := NewManager("s3cret", "bookshelf", time.Hour, 24*time.Hour)
	pair, err := m.GenerateToken("reader@x.com")
	require.NoError(t, err)

	access, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := m.ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, "reader@x.com", claims.Email)

	_, err = m.RefreshAccessToken("broken")
	assert.Error(t, err)
}
