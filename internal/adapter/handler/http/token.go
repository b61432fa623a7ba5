package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

type JWTTokenService struct {
	secretKey  []byte
	expiration time.Duration
	logger     ports.LoggerPort
}

// NewJWTTokenService builds the token service. durationStr is the session
// token lifetime; verification and reset tokens get their TTL per call.
func NewJWTTokenService(secretKey string, durationStr string, logger ports.LoggerPort) *JWTTokenService {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		logger.Error("Invalid token duration, using default 1h", map[string]interface{}{
			"duration": durationStr,
			"error":    err.Error(),
		})
		duration = time.Hour
	}

	return &JWTTokenService{
		secretKey:  []byte(secretKey),
		expiration: duration,
		logger:     logger,
	}
}

// SessionDuration is the configured lifetime for session tokens.
func (j *JWTTokenService) SessionDuration() time.Duration {
	return j.expiration
}

// Issue mints a signed token for the given subject and purpose. The
// subject travels as its string form so decode never has to disambiguate
// numeric claim encodings. The role claim is only embedded on session
// tokens.
func (j *JWTTokenService) Issue(userID int64, purpose domain.TokenPurpose, ttl time.Duration, role domain.UserRole) (string, error) {
	issuedAt := time.Now()
	expiredAt := issuedAt.Add(ttl)

	claims := jwt.MapClaims{
		"jti":     uuid.NewString(),
		"sub":     strconv.FormatInt(userID, 10),
		"purpose": string(purpose),
		"iat":     issuedAt.Unix(),
		"exp":     expiredAt.Unix(),
	}
	if purpose == domain.PurposeSession {
		claims["role"] = string(role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// Decode validates the signature and expiry and extracts the payload.
// It does not check the purpose against anything; callers that require
// a specific purpose compare it themselves.
func (j *JWTTokenService) Decode(token string) (domain.TokenPayload, error) {
	parsedToken, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.TokenPayload{}, domain.ErrTokenExpired
		}
		j.logger.Debug("Failed to parse jwt", map[string]interface{}{
			"error":  err.Error(),
			"method": "Decode",
		})
		return domain.TokenPayload{}, domain.ErrTokenMalformed
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return domain.TokenPayload{}, domain.ErrTokenMalformed
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return domain.TokenPayload{}, domain.ErrTokenInvalid
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return domain.TokenPayload{}, domain.ErrTokenInvalid
	}

	purpose, ok := claims["purpose"].(string)
	if !ok || purpose == "" {
		return domain.TokenPayload{}, domain.ErrTokenInvalid
	}

	payload := domain.TokenPayload{
		UserID:  userID,
		Purpose: domain.TokenPurpose(purpose),
	}
	if role, ok := claims["role"].(string); ok {
		payload.Role = domain.UserRole(role)
	}

	return payload, nil
}

var _ ports.TokenService = (*JWTTokenService)(nil)
