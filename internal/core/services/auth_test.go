package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields map[string]interface{})  {}
func (nopLogger) Error(msg string, fields map[string]interface{}) {}
func (nopLogger) Debug(msg string, fields map[string]interface{}) {}
func (nopLogger) Warn(msg string, fields map[string]interface{})  {}

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: map[int64]*domain.User{}}
}

func (r *memUserRepo) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
		if u.PhoneNo == user.PhoneNo {
			return nil, domain.ErrDuplicatePhone
		}
	}
	user.MemberID = r.nextID
	r.nextID++
	r.users[user.MemberID] = user
	return user, nil
}

func (r *memUserRepo) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ListUsers(ctx context.Context, role domain.UserRole) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []*domain.User{}
	for _, u := range r.users {
		if role == "" || u.Role == role {
			copied := *u
			users = append(users, &copied)
		}
	}
	return users, nil
}

func (r *memUserRepo) UpdateRole(ctx context.Context, id int64, role domain.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.Role = role
	return nil
}

func (r *memUserRepo) SetEmailVerified(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.EmailVerified = true
	return nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.Password = passwordHash
	return nil
}

func (r *memUserRepo) DeleteUser(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// fakeTokenService hands out opaque tokens backed by a map, so tests do
// not depend on any signing implementation.
type fakeTokenService struct {
	mu     sync.Mutex
	nextID int
	tokens map[string]fakeToken
}

type fakeToken struct {
	payload   domain.TokenPayload
	expiresAt time.Time
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{tokens: map[string]fakeToken{}}
}

func (f *fakeTokenService) Issue(userID int64, purpose domain.TokenPurpose, ttl time.Duration, role domain.UserRole) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	token := "tok-" + string(purpose) + "-" + strconv.Itoa(f.nextID)
	f.tokens[token] = fakeToken{
		payload:   domain.TokenPayload{UserID: userID, Purpose: purpose, Role: role},
		expiresAt: time.Now().Add(ttl),
	}
	return token, nil
}

func (f *fakeTokenService) Decode(token string) (domain.TokenPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.tokens[token]
	if !ok {
		return domain.TokenPayload{}, domain.ErrTokenMalformed
	}
	if time.Now().After(entry.expiresAt) {
		return domain.TokenPayload{}, domain.ErrTokenExpired
	}
	return entry.payload, nil
}

type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.items[key]
	if !ok {
		return nil, fmt.Errorf("cache miss: %s", key)
	}
	return value, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+" | "+subject)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type authFixture struct {
	service *AuthService
	repo    *memUserRepo
	tokens  *fakeTokenService
	mailer  *recordingMailer
	cache   *memCache
}

func newAuthFixture() *authFixture {
	repo := newMemUserRepo()
	tokens := newFakeTokenService()
	mailer := &recordingMailer{}
	cache := newMemCache()
	service := NewAuthService(
		repo, tokens, mailer, nopLogger{}, cache,
		validator.New(), "http://localhost:3000", time.Hour,
	)
	return &authFixture{service: service, repo: repo, tokens: tokens, mailer: mailer, cache: cache}
}

func validUser() *domain.User {
	return &domain.User{
		Firstname: "Wanjiku",
		Lastname:  "Kamau",
		Email:     "wanjiku@example.com",
		PhoneNo:   "0712345678",
		Password:  "password123",
	}
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.MemberID)
	assert.Equal(t, domain.Member, created.Role)
	assert.False(t, created.EmailVerified)
	// Stored password is a hash, not the input.
	assert.NotEqual(t, "password123", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password123")))
}

func TestRegister_NormalizesEmail(t *testing.T) {
	f := newAuthFixture()

	user := validUser()
	user.Email = "  Wanjiku@Example.COM "
	created, err := f.service.Register(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "wanjiku@example.com", created.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)

	dup := validUser()
	dup.PhoneNo = "0799999999"
	_, err = f.service.Register(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestRegister_ValidationFailures(t *testing.T) {
	f := newAuthFixture()

	cases := map[string]func(u *domain.User){
		"short firstname": func(u *domain.User) { u.Firstname = "W" },
		"bad email":       func(u *domain.User) { u.Email = "not-an-email" },
		"short password":  func(u *domain.User) { u.Password = "short" },
		"short phone":     func(u *domain.User) { u.PhoneNo = "071" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			user := validUser()
			mutate(user)
			_, err := f.service.Register(context.Background(), user)
			var validationErr *domain.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestLogin_UnverifiedEmailBlocked(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)

	_, _, err = f.service.Login(context.Background(), "wanjiku@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrEmailNotVerified)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)

	_, _, errUnknown := f.service.Login(context.Background(), "ghost@example.com", "password123")
	_, _, errWrongPass := f.service.Login(context.Background(), "wanjiku@example.com", "wrongpassword")

	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, domain.ErrInvalidCredentials)
}

func TestVerifyEmailThenLogin(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)

	verifyToken, err := f.tokens.Issue(created.MemberID, domain.PurposeEmailVerification, time.Hour, "")
	require.NoError(t, err)

	verified, err := f.service.VerifyEmail(context.Background(), verifyToken)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	token, user, err := f.service.Login(context.Background(), "wanjiku@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Empty(t, user.Password)

	payload, err := f.tokens.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, domain.PurposeSession, payload.Purpose)
	assert.Equal(t, domain.Member, payload.Role)
}

func TestVerifyEmail_Idempotent(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)

	verifyToken, err := f.tokens.Issue(created.MemberID, domain.PurposeEmailVerification, time.Hour, "")
	require.NoError(t, err)

	_, err = f.service.VerifyEmail(context.Background(), verifyToken)
	require.NoError(t, err)
	verified, err := f.service.VerifyEmail(context.Background(), verifyToken)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)
}

func TestVerifyEmail_RejectsOtherPurposes(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)

	sessionToken, err := f.tokens.Issue(created.MemberID, domain.PurposeSession, time.Hour, domain.Member)
	require.NoError(t, err)
	resetToken, err := f.tokens.Issue(created.MemberID, domain.PurposePasswordReset, time.Hour, "")
	require.NoError(t, err)

	_, err = f.service.VerifyEmail(context.Background(), sessionToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	_, err = f.service.VerifyEmail(context.Background(), resetToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyEmail_EmptyAndGarbage(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.VerifyEmail(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	_, err = f.service.VerifyEmail(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture()

	err := f.service.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 0, f.mailer.count())
}

func TestResetPassword_FullFlow(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)
	require.NoError(t, f.repo.SetEmailVerified(context.Background(), created.MemberID))

	resetToken, err := f.tokens.Issue(created.MemberID, domain.PurposePasswordReset, 15*time.Minute, "")
	require.NoError(t, err)

	require.NoError(t, f.service.ResetPassword(context.Background(), resetToken, "newpassword456"))

	// Old password is out, new one is in.
	_, _, err = f.service.Login(context.Background(), "wanjiku@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	token, _, err := f.service.Login(context.Background(), "wanjiku@example.com", "newpassword456")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestResetPassword_RejectsSessionToken(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)

	sessionToken, err := f.tokens.Issue(created.MemberID, domain.PurposeSession, time.Hour, domain.Member)
	require.NoError(t, err)

	err = f.service.ResetPassword(context.Background(), sessionToken, "newpassword456")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestResetPassword_ShortPassword(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)

	resetToken, err := f.tokens.Issue(created.MemberID, domain.PurposePasswordReset, 15*time.Minute, "")
	require.NoError(t, err)

	err = f.service.ResetPassword(context.Background(), resetToken, "short")
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.True(t, strings.Contains(err.Error(), "at least 8"))
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	f := newAuthFixture()

	created, err := f.service.Register(context.Background(), validUser())
	require.NoError(t, err)

	resetToken, err := f.tokens.Issue(created.MemberID, domain.PurposePasswordReset, -time.Minute, "")
	require.NoError(t, err)

	err = f.service.ResetPassword(context.Background(), resetToken, "newpassword456")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
