package auth

import (
	"context"
	"testing"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/auth"
	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql/pgtest"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

var testSession = auth.SessionTrackingRequest{UserAgent: "go-test", IPAddress: "127.0.0.1"}

func newTestAuthService(t *testing.T) (*AuthServiceImpl, *database.DB) {
	t.Helper()
	db := pgtest.Open(t)
	svc := NewAuthService(db,
		postgresql.NewUserRepository(db),
		jwt.NewJWTService(testSecret, time.Hour, 24*time.Hour, false),
		postgresql.NewJWTRepository(db),
	).(*AuthServiceImpl)
	return svc, db
}

func createTestUser(t *testing.T, svc *AuthServiceImpl, email string, active bool) user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	u, err := svc.UserRepository.Create(context.Background(), user.User{
		Email:        email,
		FullName:     "Sup A",
		PasswordHash: &h,
		Role:         user.RoleSupervisor,
		IsActive:     active,
	})
	require.NoError(t, err)
	return u
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	createTestUser(t, svc, "sup@example.com", true)
	createTestUser(t, svc, "gone@example.com", false)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "sup@example.com", "password123", nil},
		{"email is case insensitive", "SUP@example.com", "password123", nil},
		{"wrong password", "sup@example.com", "nope", auth.ErrInvalidCredentials},
		{"unknown user", "nobody@example.com", "password123", auth.ErrInvalidCredentials},
		{"inactive account", "gone@example.com", "password123", auth.ErrAccountInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(ctx, auth.LoginRequest{Email: tt.email, Password: tt.password}, testSession)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, resp.AccessToken)
			assert.NotEmpty(t, resp.RefreshToken)
			assert.Equal(t, "Bearer", resp.TokenType)
		})
	}
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	createTestUser(t, svc, "sup@example.com", true)

	_, err := svc.LoginWithGoogle(ctx, "stranger@example.com", "g-1", testSession)
	assert.ErrorIs(t, err, auth.ErrGoogleAccountNotRegistered)

	resp, err := svc.LoginWithGoogle(ctx, "sup@example.com", "g-2", testSession)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	linked, err := svc.UserRepository.GetByEmail(ctx, "sup@example.com")
	require.NoError(t, err)
	require.NotNil(t, linked.OAuthProviderID)
	assert.Equal(t, "g-2", *linked.OAuthProviderID)
}

func TestAuthService_RefreshToken_Rotates(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	createTestUser(t, svc, "sup@example.com", true)

	first, err := svc.Login(ctx, auth.LoginRequest{Email: "sup@example.com", Password: "password123"}, testSession)
	require.NoError(t, err)

	second, err := svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: first.RefreshToken}, testSession)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: first.RefreshToken}, testSession)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked, "a rotated token cannot be replayed")

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: second.AccessToken}, testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "access tokens are not refresh tokens")

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: "garbage"}, testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_Logout(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	createTestUser(t, svc, "sup@example.com", true)

	resp, err := svc.Login(ctx, auth.LoginRequest{Email: "sup@example.com", Password: "password123"}, testSession)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.RefreshToken))
	require.NoError(t, svc.Logout(ctx, resp.RefreshToken), "logging out twice is harmless")
	require.NoError(t, svc.Logout(ctx, "unknown-token"))

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: resp.RefreshToken}, testSession)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}

func TestAuthService_Me(t *testing.T) {
	svc, _ := newTestAuthService(t)
	u := createTestUser(t, svc, "sup@example.com", true)

	token, _, err := svc.Service.GenerateAccessToken(u)
	require.NoError(t, err)
	verified, err := jwtauth.VerifyToken(svc.Service.JWTAuth(), token)
	require.NoError(t, err)
	ctx := jwtauth.NewContext(context.Background(), verified, nil)

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sup@example.com", me.User.Email)
	assert.Contains(t, me.Permissions, user.PermissionAttendanceRecord)

	_, err = svc.Me(context.Background())
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
