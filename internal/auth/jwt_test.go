package auth_test

import (
	"testing"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour, "test")
	userID := uuid.New()

	token, err := tm.Generate(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("secret-a", time.Hour, "test")
	verifier := auth.NewTokenManager("secret-b", time.Hour, "test")

	token, err := issuer.Generate(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", -time.Minute, "test")

	token, err := tm.Generate(uuid.New())
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsUnsignedToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour, "test")

	claims := auth.Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Parse(unsigned)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour, "test")

	_, err := tm.Parse("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := auth.CheckPassword(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")
}

func TestCheckPassword_CorruptHash(t *testing.T) {
	_, err := auth.CheckPassword("not-a-bcrypt-hash", "x")
	assert.Error(t, err)
}
