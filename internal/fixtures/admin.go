// Package fixtures seeds the data a fresh installation needs to be usable.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

// AdminSeed describes the first administrator.
type AdminSeed struct {
	Email    string
	Password string
	FullName string
}

// SeedAdmin creates the administrator when no user exists yet. It reports whether a user was created.
func SeedAdmin(ctx context.Context, users user.UserRepository, seed AdminSeed) (bool, error) {
	if seed.Email == "" || seed.Password == "" {
		return false, nil
	}

	n, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	hashStr := string(hash)

	name := strings.TrimSpace(seed.FullName)
	if name == "" {
		name = "Administrator"
	}

	admin, err := users.Create(ctx, user.User{
		Email:        seed.Email,
		FullName:     name,
		PasswordHash: &hashStr,
		Role:         user.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		// Another instance may have seeded concurrently.
		if errors.Is(err, user.ErrUserEmailExists) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("Seeded administrator", "email", admin.Email, "user_id", admin.ID)
	return true, nil
}
