package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

type errorResponse struct {
	Msg string `json:"msg" example:"Error"`
}

func newErrorResponse(c *gin.Context, statusCode int, msg string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{
		Msg: msg,
	})
}

// UserDTO is the public shape of a user record; the password hash
// never leaves the service boundary.
type UserDTO struct {
	MemberID      int64           `json:"memberId" example:"1"`
	Firstname     string          `json:"firstname" example:"Wanjiku"`
	Lastname      string          `json:"lastname" example:"Kamau"`
	Email         string          `json:"email" example:"wanjiku@example.com"`
	PhoneNo       string          `json:"phoneno" example:"0712345678"`
	Role          domain.UserRole `json:"role" example:"member"`
	EmailVerified bool            `json:"email_verified" example:"true"`
}

func toUserDTO(user *domain.User) UserDTO {
	return UserDTO{
		MemberID:      user.MemberID,
		Firstname:     user.Firstname,
		Lastname:      user.Lastname,
		Email:         user.Email,
		PhoneNo:       user.PhoneNo,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}
}

func toUserDTOs(users []*domain.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out
}
