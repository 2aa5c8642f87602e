// Package jwt issues and verifies the HS256 bearer tokens that guard the
// mutating catalog routes.
//
// Tokens identify a reader by email. The catalog has no account store, so
// tokens are minted out of band (cmd/token) with the shared secret.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

type Manager struct {
	secret             []byte
	issuer             string
	accessTokenExpire  time.Duration
	refreshTokenExpire time.Duration
}

func NewManager(secret, issuer string, accessTokenExpire, refreshTokenExpire time.Duration) *Manager {
	return &Manager{
		secret:             []byte(secret),
		issuer:             issuer,
		accessTokenExpire:  accessTokenExpire,
		refreshTokenExpire: refreshTokenExpire,
	}
}

// Claims carries the caller email next to the registered claims. Subject
// holds the same email.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime, seconds
}

// GenerateToken issues an access and a refresh token for email.
func (m *Manager) GenerateToken(email string) (*TokenPair, error) {
	now := time.Now()

	access, err := m.sign(email, now, m.accessTokenExpire)
	if err != nil {
		return nil, apperrors.Wrap(err, "sign access token failed")
	}
	refresh, err := m.sign(email, now, m.refreshTokenExpire)
	if err != nil {
		return nil, apperrors.Wrap(err, "sign refresh token failed")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTokenExpire.Seconds()),
	}, nil
}

func (m *Manager) sign(email string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   email,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseToken verifies signature, algorithm, issuer and expiry. It returns
// apperrors.ErrTokenExpired or apperrors.ErrInvalidToken on failure.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// reject alg=none and asymmetric algorithms signed with our secret as a public key
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access token.
func (m *Manager) RefreshAccessToken(refreshToken string) (string, error) {
	claims, err := m.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}
	token, err := m.sign(claims.Email, time.Now(), m.accessTokenExpire)
	if err != nil {
		return "", apperrors.Wrap(err, "refresh token failed")
	}
	return token, nil
}
