package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/services"
)

type chanMailer struct {
	sent chan string
}

func (m *chanMailer) Send(to, subject, body string) error {
	m.sent <- body
	return nil
}

type flowCache struct {
	items map[string][]byte
}

func (c *flowCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := c.items[key]
	if !ok {
		return nil, fmt.Errorf("cache miss: %s", key)
	}
	return value, nil
}

func (c *flowCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.items[key] = value
	return nil
}

func (c *flowCache) Delete(ctx context.Context, key string) error {
	delete(c.items, key)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) IncrementCounter(name string, labels map[string]string)                      {}
func (nopMetrics) RecordDuration(name string, duration time.Duration, labels map[string]string) {}
func (nopMetrics) RecordMetrics(c *gin.Context, start time.Time)                               {}

type flowFixture struct {
	router *gin.Engine
	repo   *stubUserRepo
	mailer *chanMailer
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubUserRepo{users: map[int64]*domain.User{}}
	tokenService := NewJWTTokenService("test-secret", "1h", nopLogger{})
	mailer := &chanMailer{sent: make(chan string, 4)}
	authService := services.NewAuthService(
		repo, tokenService, mailer, nopLogger{}, &flowCache{items: map[string][]byte{}},
		validator.New(), "http://localhost:3000", time.Hour,
	)
	userService := services.NewUserService(repo, nopLogger{}, &flowCache{items: map[string][]byte{}})

	authHandler := NewAuthHandler(authService, nopLogger{}, nopMetrics{})
	userHandler := NewUserHandler(userService, nopLogger{}, nopMetrics{})

	router := gin.New()
	auth := router.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.GET("/verify-email/:token", authHandler.VerifyEmail)
	auth.POST("/login", authHandler.Login)
	auth.POST("/request-password-reset", authHandler.RequestPasswordReset)
	auth.POST("/reset-password", authHandler.ResetPassword)

	authenticated := AuthMiddleware(tokenService)
	router.GET("/me", authenticated, RequireRoles(repo), userHandler.Me)
	router.GET("/admin/users", authenticated, RequireRoles(repo, domain.Admin), userHandler.AdminMembers)

	return &flowFixture{router: router, repo: repo, mailer: mailer}
}

func (f *flowFixture) postJSON(t *testing.T, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *flowFixture) get(t *testing.T, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// waitForMail blocks until the fire-and-forget mail goroutine delivers.
func (f *flowFixture) waitForMail(t *testing.T) string {
	t.Helper()
	select {
	case body := <-f.mailer.sent:
		return body
	case <-time.After(2 * time.Second):
		t.Fatal("no mail arrived")
		return ""
	}
}

func tokenFromMail(t *testing.T, body, marker string) string {
	t.Helper()
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0, "mail body missing %q: %s", marker, body)
	rest := body[idx+len(marker):]
	if end := strings.IndexAny(rest, " \n"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	f := newFlowFixture(t)

	register := map[string]string{
		"firstname": "Wanjiku",
		"lastname":  "Kamau",
		"email":     "wanjiku@example.com",
		"phoneno":   "0712345678",
		"password":  "password123",
	}

	rec := f.postJSON(t, "/auth/register", register)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Login before verification is refused.
	login := map[string]string{"email": "wanjiku@example.com", "password": "password123"}
	rec = f.postJSON(t, "/auth/login", login)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Follow the emailed link.
	mailBody := f.waitForMail(t)
	escapedToken := tokenFromMail(t, mailBody, "/verify-email/")
	rec = f.get(t, "/auth/verify-email/"+escapedToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Verifying twice stays a success.
	rec = f.get(t, "/auth/verify-email/"+escapedToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.postJSON(t, "/auth/login", login)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var loginResponse LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResponse))
	require.NotEmpty(t, loginResponse.AccessToken)
	assert.NotContains(t, rec.Body.String(), "password")

	// Session token opens /me but not the admin surface.
	rec = f.get(t, "/me", loginResponse.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.get(t, "/admin/users", loginResponse.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegister_DuplicateEmailIs400(t *testing.T) {
	f := newFlowFixture(t)

	register := map[string]string{
		"firstname": "Wanjiku",
		"lastname":  "Kamau",
		"email":     "wanjiku@example.com",
		"phoneno":   "0712345678",
		"password":  "password123",
	}
	rec := f.postJSON(t, "/auth/register", register)
	require.Equal(t, http.StatusCreated, rec.Code)
	f.waitForMail(t)

	register["phoneno"] = "0799999999"
	rec = f.postJSON(t, "/auth/register", register)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFlowFixture(t)

	register := map[string]string{
		"firstname": "Wanjiku",
		"lastname":  "Kamau",
		"email":     "wanjiku@example.com",
		"phoneno":   "0712345678",
		"password":  "password123",
	}
	rec := f.postJSON(t, "/auth/register", register)
	require.Equal(t, http.StatusCreated, rec.Code)
	f.waitForMail(t)

	// Same answer whether or not the email exists.
	rec = f.postJSON(t, "/auth/request-password-reset", map[string]string{"email": "ghost@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	ghostBody := rec.Body.String()

	rec = f.postJSON(t, "/auth/request-password-reset", map[string]string{"email": "wanjiku@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, ghostBody, rec.Body.String())

	mailBody := f.waitForMail(t)
	escapedToken := tokenFromMail(t, mailBody, "/reset-password/")
	rawToken, err := url.PathUnescape(escapedToken)
	require.NoError(t, err)

	rec = f.postJSON(t, "/auth/reset-password", map[string]string{
		"token":        rawToken,
		"new_password": "newpassword456",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The reset token is not a session token.
	rec = f.get(t, "/me", rawToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
