package http

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields map[string]interface{})  {}
func (nopLogger) Error(msg string, fields map[string]interface{}) {}
func (nopLogger) Debug(msg string, fields map[string]interface{}) {}
func (nopLogger) Warn(msg string, fields map[string]interface{})  {}

func TestIssueAndDecode_Session(t *testing.T) {
	t.Parallel()

	svc := NewJWTTokenService("test-secret", "1h", nopLogger{})

	token, err := svc.Issue(42, domain.PurposeSession, time.Hour, domain.Admin)
	require.NoError(t, err)

	payload, err := svc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), payload.UserID)
	assert.Equal(t, domain.PurposeSession, payload.Purpose)
	assert.Equal(t, domain.Admin, payload.Role)
}

func TestIssueAndDecode_NonSessionOmitsRole(t *testing.T) {
	t.Parallel()

	svc := NewJWTTokenService("test-secret", "1h", nopLogger{})

	token, err := svc.Issue(7, domain.PurposeEmailVerification, 24*time.Hour, domain.Member)
	require.NoError(t, err)

	payload, err := svc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), payload.UserID)
	assert.Equal(t, domain.PurposeEmailVerification, payload.Purpose)
	assert.Empty(t, payload.Role)
}

func TestDecode_Expired(t *testing.T) {
	t.Parallel()

	svc := NewJWTTokenService("test-secret", "1h", nopLogger{})

	token, err := svc.Issue(1, domain.PurposeSession, -time.Minute, domain.Member)
	require.NoError(t, err)

	_, err = svc.Decode(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewJWTTokenService("right-secret", "1h", nopLogger{})
	decoder := NewJWTTokenService("wrong-secret", "1h", nopLogger{})

	token, err := issuer.Issue(1, domain.PurposeSession, time.Hour, domain.Member)
	require.NoError(t, err)

	_, err = decoder.Decode(token)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestDecode_Garbage(t *testing.T) {
	t.Parallel()

	svc := NewJWTTokenService("test-secret", "1h", nopLogger{})

	_, err := svc.Decode("not.a.jwt")
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestDecode_MissingPurpose(t *testing.T) {
	t.Parallel()

	svc := NewJWTTokenService("test-secret", "1h", nopLogger{})

	claims := jwt.MapClaims{
		"sub": "1",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Decode(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestDecode_NonNumericSubject(t *testing.T) {
	t.Parallel()

	svc := NewJWTTokenService("test-secret", "1h", nopLogger{})

	claims := jwt.MapClaims{
		"sub":     "not-a-number",
		"purpose": "session",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Decode(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestNewJWTTokenService_BadDurationDefaultsToHour(t *testing.T) {
	t.Parallel()

	svc := NewJWTTokenService("test-secret", "whenever", nopLogger{})
	assert.Equal(t, time.Hour, svc.SessionDuration())
}
