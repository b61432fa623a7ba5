package domain

type UserRole string

const (
	Admin  UserRole = "admin"
	Member UserRole = "member"
)

// ValidRole reports whether r is one of the two roles the system knows.
func ValidRole(r UserRole) bool {
	return r == Admin || r == Member
}

// swagger:model domain.User
type User struct {
	MemberID      int64    `json:"memberId"`
	Firstname     string   `json:"firstname" validate:"required,min=2,max=25"`
	Lastname      string   `json:"lastname" validate:"required,min=2,max=25"`
	Email         string   `json:"email" validate:"required,email,max=50"`
	PhoneNo       string   `json:"phoneno" validate:"required,min=7,max=10"`
	Password      string   `json:"password,omitempty" validate:"required,min=8"`
	Role          UserRole `json:"role"`
	EmailVerified bool     `json:"email_verified"`
}
