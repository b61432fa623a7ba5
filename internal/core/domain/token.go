package domain

type TokenPurpose string

const (
	PurposeSession           TokenPurpose = "session"
	PurposeEmailVerification TokenPurpose = "email_verification"
	PurposePasswordReset     TokenPurpose = "password_reset"
)

// TokenPayload is what a decoded token yields. Role is only set on
// session tokens and is a hint; authorization re-reads the user record.
type TokenPayload struct {
	UserID  int64
	Purpose TokenPurpose
	Role    UserRole
}
