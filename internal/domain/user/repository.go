package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	Update(ctx context.Context, id string, req UpdateUserRequest, passwordHash *string) (User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	Count(ctx context.Context) (int64, error)
	LinkGoogleAccount(ctx context.Context, googleID string, email string) (User, error)
	TouchLastLogin(ctx context.Context, id string) error

	// Assignment helpers for workflow tasks
	ListActiveIDsByRole(ctx context.Context, role Role) ([]string, error)
	LeastLoadedByRole(ctx context.Context, role *Role) (string, error)
}
