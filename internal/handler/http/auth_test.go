package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/auth"
	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/handler/http/middleware"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/oauth"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql/pgtest"
	authService "github.com/bpo-ops/ops-backend-go/internal/service/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type authFixture struct {
	handler AuthHandler
	jwt     jwt.Service
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	db := pgtest.Open(t)
	ctx := context.Background()

	userRepo := postgresql.NewUserRepository(db)
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)
	_, err = userRepo.Create(ctx, user.User{Email: "lead@example.com", FullName: "Lea Lead", PasswordHash: &hashStr, Role: user.RoleSupervisor, IsActive: true})
	require.NoError(t, err)
	_, err = userRepo.Create(ctx, user.User{Email: "gone@example.com", FullName: "Gone", PasswordHash: &hashStr, Role: user.RoleAgent, IsActive: false})
	require.NoError(t, err)

	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour, 24*time.Hour, false)
	authSvc := authService.NewAuthService(db, userRepo, jwtSvc, postgresql.NewJWTRepository(db))
	googleSvc := oauth.NewGoogleService("", "", "", nil)

	return authFixture{
		handler: NewAuthHandler(jwtSvc, authSvc, googleSvc, "http://localhost:3000", false),
		jwt:     jwtSvc,
	}
}

func postJSON(h http.HandlerFunc, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == jwt.RefreshCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name   string
		body   auth.LoginRequest
		status int
	}{
		{"success", auth.LoginRequest{Email: "lead@example.com", Password: "password123"}, http.StatusCreated},
		{"email is case insensitive", auth.LoginRequest{Email: "LEAD@example.com", Password: "password123"}, http.StatusCreated},
		{"wrong password", auth.LoginRequest{Email: "lead@example.com", Password: "nope"}, http.StatusUnauthorized},
		{"unknown user", auth.LoginRequest{Email: "who@example.com", Password: "password123"}, http.StatusUnauthorized},
		{"inactive user", auth.LoginRequest{Email: "gone@example.com", Password: "password123"}, http.StatusForbidden},
		{"validation", auth.LoginRequest{Email: "not-an-email"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(f.handler.Login, "/api/v1/auth/login", tt.body)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusCreated {
				c := refreshCookie(w)
				require.NotNil(t, c)
				assert.True(t, c.HttpOnly)
				data := decodeBody(t, w)["data"].(map[string]interface{})
				assert.NotEmpty(t, data["access_token"])
				assert.Equal(t, "Bearer", data["token_type"])
			}
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		f.handler.Login(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_RefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t)

	login := postJSON(f.handler.Login, "/api/v1/auth/login", auth.LoginRequest{Email: "lead@example.com", Password: "password123"})
	require.Equal(t, http.StatusCreated, login.Code)
	first := refreshCookie(login)
	require.NotNil(t, first)

	w := postJSON(f.handler.RefreshToken, "/api/v1/auth/refresh", nil, first)
	require.Equal(t, http.StatusCreated, w.Code)
	second := refreshCookie(w)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)

	// The rotated-out token is revoked.
	w = postJSON(f.handler.RefreshToken, "/api/v1/auth/refresh", nil, first)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Body fallback still works for the current token.
	w = postJSON(f.handler.RefreshToken, "/api/v1/auth/refresh", auth.RefreshTokenRequest{RefreshToken: second.Value})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(f.handler.RefreshToken, "/api/v1/auth/refresh", auth.RefreshTokenRequest{RefreshToken: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newAuthFixture(t)

	login := postJSON(f.handler.Login, "/api/v1/auth/login", auth.LoginRequest{Email: "lead@example.com", Password: "password123"})
	cookie := refreshCookie(login)
	require.NotNil(t, cookie)

	w := postJSON(f.handler.Logout, "/api/v1/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	cleared := refreshCookie(w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// Logging out twice, or without a cookie, is not an error.
	assert.Equal(t, http.StatusOK, postJSON(f.handler.Logout, "/api/v1/auth/logout", nil, cookie).Code)
	assert.Equal(t, http.StatusOK, postJSON(f.handler.Logout, "/api/v1/auth/logout", nil).Code)

	w = postJSON(f.handler.RefreshToken, "/api/v1/auth/refresh", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	f := newAuthFixture(t)

	login := postJSON(f.handler.Login, "/api/v1/auth/login", auth.LoginRequest{Email: "lead@example.com", Password: "password123"})
	data := decodeBody(t, login)["data"].(map[string]interface{})
	access := data["access_token"].(string)
	refresh := data["refresh_token"].(string)

	protected := jwtauth.Verifier(f.jwt.JWTAuth())(middleware.AuthRequired(http.HandlerFunc(f.handler.Me)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "lead@example.com", me["user"].(map[string]interface{})["email"])
	assert.Contains(t, me["permissions"], string(user.PermissionAttendanceRecord))

	// A refresh token is not accepted as an access token.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_GoogleDisabled(t *testing.T) {
	f := newAuthFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/login/oauth/google", nil)
	w := httptest.NewRecorder()
	f.handler.LoginWithGoogle(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
