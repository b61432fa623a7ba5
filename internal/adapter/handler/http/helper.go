package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

func isValidationError(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve)
}

func getAuthPayload(ctx *gin.Context, key string) (*domain.TokenPayload, bool) {
	value, exists := ctx.Get(key)
	if !exists {
		return nil, false
	}
	payload, ok := value.(*domain.TokenPayload)
	if !ok {
		return nil, false
	}
	return payload, true
}

// getAuthUser returns the store-resolved user placed by RequireRoles.
func getAuthUser(ctx *gin.Context) (*domain.User, bool) {
	value, exists := ctx.Get(authorizationUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domain.User)
	if !ok {
		return nil, false
	}
	return user, true
}
