package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

const (
	authorizationHeaderKey  = "authorization"
	authorizationType       = "bearer"
	authorizationPayloadKey = "authorization_payload"
	authorizationUserKey    = "authorization_user"
)

// AuthMiddleware requires a valid bearer session token. Tokens minted
// for another purpose are rejected even when otherwise well formed.
func AuthMiddleware(token ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorizationHeader := c.GetHeader(authorizationHeaderKey)
		if authorizationHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "Authorization header required",
			})
			c.Abort()
			return
		}

		fields := strings.Fields(authorizationHeader)
		if len(fields) != 2 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		currentAuthorizationType := strings.ToLower(fields[0])
		if currentAuthorizationType != authorizationType {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "Unsupported authorization type",
			})
			c.Abort()
			return
		}

		accessToken := fields[1]
		payload, err := token.Decode(accessToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		if payload.Purpose != domain.PurposeSession {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(authorizationPayloadKey, &payload)
		c.Next()
	}
}

// RequireRoles re-reads the user from the store and gates on its current
// role. The role claim inside the session token is deliberately ignored
// here so a role change takes effect on the next request, not at the
// next login. An empty roles list admits any authenticated user.
func RequireRoles(userRepo ports.UserRepository, roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := getAuthPayload(c, authorizationPayloadKey)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "Authorization required",
			})
			c.Abort()
			return
		}

		user, err := userRepo.GetUserByID(c.Request.Context(), payload.UserID)
		if err != nil {
			// A token for a deleted account is treated like no token.
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"msg": "User not found or token invalid",
				})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{
					"msg": "Failed to resolve user",
				})
			}
			c.Abort()
			return
		}

		if len(roles) > 0 && !roleAllowed(user.Role, roles) {
			c.JSON(http.StatusForbidden, gin.H{
				"msg": "Access denied for role '" + string(user.Role) + "'",
			})
			c.Abort()
			return
		}

		c.Set(authorizationUserKey, user)
		c.Next()
	}
}

func roleAllowed(role domain.UserRole, allowed []domain.UserRole) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
