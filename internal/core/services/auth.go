package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-playground/validator/v10"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = 15 * time.Minute

	userCacheTTL      = 15 * time.Minute
	userEmailCacheTTL = 10 * time.Minute
)

type AuthService struct {
	userRepo     ports.UserRepository
	tokenService ports.TokenService
	mailer       ports.MailerPort
	logger       ports.LoggerPort
	cache        ports.CachePort
	validate     *validator.Validate
	frontendURL  string
	sessionTTL   time.Duration
}

func NewAuthService(
	userRepo ports.UserRepository,
	tokenService ports.TokenService,
	mailer ports.MailerPort,
	logger ports.LoggerPort,
	cache ports.CachePort,
	validate *validator.Validate,
	frontendURL string,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenService: tokenService,
		mailer:       mailer,
		logger:       logger,
		cache:        cache,
		validate:     validate,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		sessionTTL:   sessionTTL,
	}
}

// Register creates an unverified member and dispatches the verification
// link. Mail failure never fails the registration.
func (s *AuthService) Register(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.validate.Struct(user); err != nil {
		s.logger.Error("Validation failed", map[string]interface{}{
			"error":  err.Error(),
			"method": "Register",
		})
		return nil, domain.NewValidationError("validation failed: %s", err.Error())
	}

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Role = domain.Member
	user.EmailVerified = false

	// Pre-check keeps the common case friendly; the unique constraint
	// in the store is the authoritative backstop for races.
	existing, err := s.userRepo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		s.logger.Error("Failed to check existing email", map[string]interface{}{
			"email": user.Email,
			"error": err.Error(),
		})
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Error during hashing", map[string]interface{}{
			"error":  err.Error(),
			"method": "Register",
		})
		return nil, err
	}
	user.Password = string(hashedPassword)

	user, err = s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrDuplicatePhone) {
			return nil, err
		}
		s.logger.Error("Failed to create user in database", map[string]interface{}{
			"error":  err.Error(),
			"method": "Register",
		})
		return nil, err
	}

	verifyToken, err := s.tokenService.Issue(user.MemberID, domain.PurposeEmailVerification, verificationTokenTTL, "")
	if err != nil {
		// The account exists; the user just cannot self-verify until
		// a new link is issued.
		s.logger.Error("Failed to issue verification token", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.MemberID,
		})
		return user, nil
	}

	verifyURL := fmt.Sprintf("%s/verify-email/%s", s.frontendURL, url.PathEscape(verifyToken))
	body := fmt.Sprintf(
		"Hi %s,\n\nPlease verify your email:\n%s\n\nThis link expires in 24 hours.",
		user.Firstname, verifyURL,
	)
	s.dispatchMail(user.Email, "Verify Your Email", body)

	return user, nil
}

// VerifyEmail consumes an email_verification token. Verifying an
// already-verified account is a no-op success.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	payload, err := s.tokenService.Decode(token)
	if err != nil {
		s.logger.Info("Email verification failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, domain.ErrInvalidToken
	}
	if payload.Purpose != domain.PurposeEmailVerification {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	if !user.EmailVerified {
		if err := s.userRepo.SetEmailVerified(ctx, user.MemberID); err != nil {
			s.logger.Error("Failed to mark email verified", map[string]interface{}{
				"user_id": user.MemberID,
				"error":   err.Error(),
			})
			return nil, err
		}
		user.EmailVerified = true
		s.invalidateUserCache(ctx, user)
	}

	return user, nil
}

// Login authenticates by email and password and issues a session token
// with the current role embedded. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user := s.cachedUserByEmail(ctx, email)
	if user == nil {
		var err error
		user, err = s.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			s.logger.Error("Failed to get user by email", map[string]interface{}{
				"email": email,
				"error": err.Error(),
			})
			return "", nil, domain.ErrInvalidCredentials
		}
		if user == nil {
			return "", nil, domain.ErrInvalidCredentials
		}
		s.cacheUserByEmail(ctx, email, user)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Info("Invalid password attempt", map[string]interface{}{
			"email": email,
		})
		return "", nil, domain.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return "", nil, domain.ErrEmailNotVerified
	}

	token, err := s.tokenService.Issue(user.MemberID, domain.PurposeSession, s.sessionTTL, user.Role)
	if err != nil {
		s.logger.Error("Failed to create token", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.MemberID,
		})
		return "", nil, err
	}

	userResponse := *user
	userResponse.Password = ""
	return token, &userResponse, nil
}

// RequestPasswordReset issues a short-lived reset token when the email
// exists. The caller gets the same answer either way, so the endpoint
// cannot be used to probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to get user by email", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return err
	}
	if user == nil {
		return nil
	}

	resetToken, err := s.tokenService.Issue(user.MemberID, domain.PurposePasswordReset, resetTokenTTL, "")
	if err != nil {
		s.logger.Error("Failed to issue reset token", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.MemberID,
		})
		return nil
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, url.PathEscape(resetToken))
	body := fmt.Sprintf(
		"Hi %s,\n\nReset your password using the link below (valid for 15 minutes):\n%s\n\nIf you didn't request this, you can safely ignore this email.",
		user.Firstname, resetURL,
	)
	s.dispatchMail(user.Email, "Password Reset Request", body)

	return nil
}

// ResetPassword consumes a password_reset token and replaces the stored
// hash. Outstanding session tokens stay valid until they expire.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return domain.ErrInvalidToken
	}
	if len(newPassword) < 8 {
		return domain.NewValidationError("validation failed: password must be at least 8 characters")
	}

	payload, err := s.tokenService.Decode(token)
	if err != nil {
		s.logger.Info("Password reset failed", map[string]interface{}{
			"error": err.Error(),
		})
		return domain.ErrInvalidToken
	}
	if payload.Purpose != domain.PurposePasswordReset {
		return domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Error during hashing", map[string]interface{}{
			"error":  err.Error(),
			"method": "ResetPassword",
		})
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.MemberID, string(hashedPassword)); err != nil {
		s.logger.Error("Failed to update password", map[string]interface{}{
			"user_id": user.MemberID,
			"error":   err.Error(),
		})
		return err
	}

	s.invalidateUserCache(ctx, user)
	s.logger.Info("Password reset", map[string]interface{}{
		"user_id": user.MemberID,
	})
	return nil
}

func (s *AuthService) dispatchMail(to, subject, body string) {
	go func() {
		if err := s.mailer.Send(to, subject, body); err != nil {
			s.logger.Error("Failed to send email", map[string]interface{}{
				"to":      to,
				"subject": subject,
				"error":   err.Error(),
			})
		}
	}()
}

func (s *AuthService) cachedUserByEmail(ctx context.Context, email string) *domain.User {
	cacheKey := fmt.Sprintf("user_email:%s", email)
	cachedData, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		return nil
	}
	var cachedUser domain.User
	if err := json.Unmarshal(cachedData, &cachedUser); err != nil {
		return nil
	}
	s.logger.Debug("User found in email cache", map[string]interface{}{
		"email": email,
	})
	return &cachedUser
}

func (s *AuthService) cacheUserByEmail(ctx context.Context, email string, user *domain.User) {
	userData, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("Failed to marshal user for email cache", map[string]interface{}{
			"error": err.Error(),
			"email": email,
		})
		return
	}
	if err := s.cache.Set(ctx, fmt.Sprintf("user_email:%s", email), userData, userEmailCacheTTL); err != nil {
		s.logger.Warn("Failed to cache user by email", map[string]interface{}{
			"error": err.Error(),
			"email": email,
		})
	}
}

func (s *AuthService) invalidateUserCache(ctx context.Context, user *domain.User) {
	if err := s.cache.Delete(ctx, fmt.Sprintf("user:%d", user.MemberID)); err != nil {
		s.logger.Warn("Failed to invalidate user cache", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.MemberID,
		})
	}
	if err := s.cache.Delete(ctx, fmt.Sprintf("user_email:%s", user.Email)); err != nil {
		s.logger.Warn("Failed to invalidate user email cache", map[string]interface{}{
			"error": err.Error(),
			"email": user.Email,
		})
	}
}

var _ ports.AuthService = (*AuthService)(nil)
