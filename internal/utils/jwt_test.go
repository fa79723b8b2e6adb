package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/model"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 7, model.RoleOwner, time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	id, err := ParseAccessToken(testSecret, tok.Token)
	require.NoError(t, err)
	require.Equal(t, model.Identity{UserID: 7, Role: model.RoleOwner}, id)
}

func TestParseAccessTokenRejects(t *testing.T) {
	valid, err := NewAccessToken(testSecret, 7, model.RoleUser, time.Hour)
	require.NoError(t, err)
	expired, err := NewAccessToken(testSecret, 7, model.RoleUser, -time.Minute)
	require.NoError(t, err)

	noneAlg := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := noneAlg.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole := signClaims(t, Claims{
		Role: "ROOT",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noExpiry := signClaims(t, Claims{
		Role:             "USER",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	})
	badSubject := signClaims(t, Claims{
		Role: "USER",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	cases := map[string]struct {
		secret string
		raw    string
	}{
		"wrong secret": {"other", valid.Token},
		"expired":      {testSecret, expired.Token},
		"garbage":      {testSecret, "not.a.jwt"},
		"empty":        {testSecret, ""},
		"tampered":     {testSecret, valid.Token[:len(valid.Token)-2] + "xx"},
		"alg none":     {testSecret, unsigned},
		"unknown role": {testSecret, badRole},
		"no expiry":    {testSecret, noExpiry},
		"bad subject":  {testSecret, badSubject},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccessToken(tc.secret, tc.raw)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func signClaims(t *testing.T, c Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
	require.NoError(t, err)
	require.True(t, strings.Count(s, ".") == 2)
	return s
}
