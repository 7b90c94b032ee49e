package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	at, err := NewAuthToken("secret")
	require.NoError(t, err)

	token, err := at.GenerateToken("kiosk-1")
	require.NoError(t, err)

	claims, err := at.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "kiosk-1", claims.ClientID)
	assert.Equal(t, "kiosk-1", claims.Subject)
}

func TestNewAuthTokenRequiresSecret(t *testing.T) {
	_, err := NewAuthToken("")
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a, _ := NewAuthToken("one")
	b, _ := NewAuthToken("two")
	token, err := a.GenerateToken("client")
	require.NoError(t, err)

	_, err = b.VerifyToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifyRejectsExpired(t *testing.T) {
	at, _ := NewAuthToken("secret")
	at.WithTTL(time.Minute)
	issued := time.Now()
	at.now = func() time.Time { return issued }
	token, err := at.GenerateToken("client")
	require.NoError(t, err)

	at.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = at.VerifyToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	at, _ := NewAuthToken("secret")
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ClientID: "x"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = at.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyMissing(t *testing.T) {
	at, _ := NewAuthToken("secret")
	_, err := at.VerifyToken("")
	assert.Equal(t, ErrMissingToken, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}
