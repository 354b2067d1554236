package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionRevoker ends every refresh session of a user.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string) error
}

type UserServiceImpl struct {
	user.UserRepository
	sessions SessionRevoker
	// bcrypt cost, lowered in tests
	cost int
}

func NewUserService(userRepository user.UserRepository, sessions SessionRevoker) user.UserService {
	return &UserServiceImpl{UserRepository: userRepository, sessions: sessions, cost: bcrypt.DefaultCost}
}

// HashPassword bcrypt-hashes a plain password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, filter user.UserFilter) (user.ListUserResponse, error) {
	if err := filter.Validate(); err != nil {
		return user.ListUserResponse{}, err
	}

	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, err
	}

	out := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, user.ToResponse(u))
	}
	return user.ListUserResponse{
		Users:      out,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pagination.TotalPages(total, filter.Limit),
	}, nil
}

// Get implements user.UserService.
func (s *UserServiceImpl) Get(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.UserResponse{}, user.ErrUserNotFound
		}
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// Create implements user.UserService.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hash, err := HashPassword(req.Password, s.cost)
	if err != nil {
		return user.UserResponse{}, err
	}

	created, err := s.UserRepository.Create(ctx, user.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: &hash,
		Role:         user.Role(req.Role),
		IsActive:     true,
	})
	if err != nil {
		return user.UserResponse{}, err
	}
	slog.Info("User created", "user_id", created.ID, "role", created.Role)
	return user.ToResponse(created), nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	var hash *string
	if req.Password != nil {
		h, err := HashPassword(*req.Password, s.cost)
		if err != nil {
			return user.UserResponse{}, err
		}
		hash = &h
	}

	updated, err := s.UserRepository.Update(ctx, id, req, hash)
	if err != nil {
		return user.UserResponse{}, err
	}

	// A password reset or deactivation signs the user out everywhere.
	if hash != nil || !updated.IsActive {
		if err := s.sessions.RevokeAllForUser(ctx, id); err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to revoke sessions: %w", err)
		}
		slog.Info("User sessions revoked", "user_id", id)
	}
	return user.ToResponse(updated), nil
}

// Delete implements user.UserService.
func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	if claims, err := jwt.ClaimsFromContext(ctx); err == nil && claims.UserID == id {
		return user.ErrCannotDeleteSelf
	}
	return s.UserRepository.Delete(ctx, id)
}
