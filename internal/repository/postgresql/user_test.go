package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/auth"
	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql/pgtest"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newUser(email string, role user.Role) user.User {
	return user.User{
		Email:        email,
		FullName:     "Test " + string(role),
		PasswordHash: strPtr("$2a$10$abcdefghijklmnopqrstuv"),
		Role:         role,
		IsActive:     true,
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := pgtest.Open(t)
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("Ana@Example.com", user.RoleSupervisor))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.Equal(t, user.RoleSupervisor, created.Role)
	assert.Nil(t, created.EmployeeID)

	byEmail, err := repo.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.Create(ctx, newUser("ana@example.com", user.RoleAgent))
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db := pgtest.Open(t)
	repo := postgresql.NewUserRepository(db)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUserRepository_UpdateAndList(t *testing.T) {
	db := pgtest.Open(t)
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	a, err := repo.Create(ctx, newUser("a@example.com", user.RoleAgent))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("b@example.com", user.RoleManager))
	require.NoError(t, err)

	inactive := false
	updated, err := repo.Update(ctx, a.ID, user.UpdateUserRequest{FullName: strPtr("Agent A"), IsActive: &inactive}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Agent A", updated.FullName)
	assert.False(t, updated.IsActive)

	users, total, err := repo.List(ctx, user.UserFilter{Params: pagination.Params{Page: 1, Limit: 10}, Role: strPtr("manager")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "b@example.com", users[0].Email)

	_, err = repo.Update(ctx, "00000000-0000-0000-0000-000000000000", user.UpdateUserRequest{FullName: strPtr("x")}, nil)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_LinkGoogleAccount(t *testing.T) {
	db := pgtest.Open(t)
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("g@example.com", user.RoleAgent))
	require.NoError(t, err)

	linked, err := repo.LinkGoogleAccount(ctx, "google-123", "g@example.com")
	require.NoError(t, err)
	require.NotNil(t, linked.OAuthProvider)
	assert.Equal(t, "google", *linked.OAuthProvider)
	assert.Equal(t, "google-123", *linked.OAuthProviderID)
}

func TestUserRepository_LeastLoadedByRole(t *testing.T) {
	db := pgtest.Open(t)
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	a, err := repo.Create(ctx, newUser("a@example.com", user.RoleAgent))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newUser("b@example.com", user.RoleAgent))
	require.NoError(t, err)

	ids, err := repo.ListActiveIDsByRole(ctx, user.RoleAgent)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)

	role := user.RoleAgent
	id, err := repo.LeastLoadedByRole(ctx, &role)
	require.NoError(t, err)
	assert.Contains(t, []string{a.ID, b.ID}, id)
}

func TestJWTRepository_RevokeAndPurge(t *testing.T) {
	db := pgtest.Open(t)
	users := postgresql.NewUserRepository(db)
	tokens := postgresql.NewJWTRepository(db)
	ctx := context.Background()

	u, err := users.Create(ctx, newUser("t@example.com", user.RoleAgent))
	require.NoError(t, err)

	exp := time.Now().Add(time.Hour).Unix()
	require.NoError(t, tokens.CreateRefreshToken(ctx, u.ID, "token-1", exp, auth.SessionTrackingRequest{UserAgent: "test"}))

	owner, revoked, err := tokens.IsRefreshTokenRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, owner)
	assert.False(t, revoked)

	require.NoError(t, tokens.RevokeRefreshToken(ctx, "token-1"))
	_, revoked, err = tokens.IsRefreshTokenRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	n, err := tokens.PurgeExpired(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, _, err = tokens.IsRefreshTokenRevoked(ctx, "token-1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
