package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
	u.id, u.email, u.full_name, u.password_hash, u.role, u.is_active,
	u.oauth_provider, u.oauth_provider_id, u.last_login_at, u.created_at, u.updated_at,
	(SELECT e.id FROM employees e WHERE e.user_id = u.id LIMIT 1) AS employee_id`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.OAuthProvider,
		&u.OAuthProviderID,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.EmployeeID,
	)
	return u, err
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE LOWER(u.email) = LOWER($1)`, userColumns)
	return scanUser(q.QueryRow(ctx, query, email))
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = $1`, userColumns)
	return scanUser(q.QueryRow(ctx, query, id))
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (email, full_name, password_hash, role, is_active, oauth_provider, oauth_provider_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id string
	err := q.QueryRow(ctx, query,
		strings.ToLower(strings.TrimSpace(newUser.Email)),
		newUser.FullName,
		newUser.PasswordHash,
		newUser.Role,
		newUser.IsActive,
		newUser.OAuthProvider,
		newUser.OAuthProviderID,
	).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update implements user.UserRepository.
func (r *userRepositoryImpl) Update(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if passwordHash != nil {
		updates["password_hash"] = *passwordHash
	}

	if len(updates) > 0 {
		setClauses := make([]string, 0, len(updates)+1)
		args := make([]interface{}, 0, len(updates)+1)
		i := 1
		for col, val := range updates {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
			args = append(args, val)
			i++
		}
		setClauses = append(setClauses, "updated_at = NOW()")

		sql := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING id", strings.Join(setClauses, ", "), i)
		args = append(args, id)

		var updatedID string
		if err := q.QueryRow(ctx, sql, args...).Scan(&updatedID); err != nil {
			if err == pgx.ErrNoRows {
				return user.User{}, user.ErrUserNotFound
			}
			return user.User{}, fmt.Errorf("failed to update user with id %s: %w", id, err)
		}
	}

	u, err := r.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return user.User{}, user.ErrUserNotFound
	}
	return u, err
}

// Delete implements user.UserRepository.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.email ILIKE $%d OR u.full_name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.Role != nil && *filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", argIdx))
		args = append(args, *filter.Role)
		argIdx++
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("u.is_active = $%d", argIdx))
		args = append(args, *filter.IsActive)
		argIdx++
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM users u WHERE %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		WHERE %s
		ORDER BY u.created_at DESC
		LIMIT $%d OFFSET $%d
	`, userColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Count implements user.UserRepository.
func (r *userRepositoryImpl) Count(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		UPDATE users
		SET oauth_provider = 'google', oauth_provider_id = $1, updated_at = NOW()
		WHERE LOWER(email) = LOWER($2)
		RETURNING id
	`, googleID, email).Scan(&id)
	if err != nil {
		return user.User{}, err
	}
	return r.GetByID(ctx, id)
}

// TouchLastLogin implements user.UserRepository.
func (r *userRepositoryImpl) TouchLastLogin(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

// ListActiveIDsByRole implements user.UserRepository. Ordered by id so round robin is stable.
func (r *userRepositoryImpl) ListActiveIDsByRole(ctx context.Context, role user.Role) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT id FROM users WHERE role = $1 AND is_active = TRUE ORDER BY id`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LeastLoadedByRole implements user.UserRepository. A nil role considers every active user.
func (r *userRepositoryImpl) LeastLoadedByRole(ctx context.Context, role *user.Role) (string, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT u.id
		FROM users u
		LEFT JOIN workflow_tasks t ON t.assigned_to_id = u.id AND t.status = 'in_progress'
		WHERE u.is_active = TRUE AND ($1::text IS NULL OR u.role = $1)
		GROUP BY u.id
		ORDER BY COUNT(t.id) ASC, u.id ASC
		LIMIT 1
	`
	var roleArg *string
	if role != nil {
		s := string(*role)
		roleArg = &s
	}
	var id string
	err := q.QueryRow(ctx, query, roleArg).Scan(&id)
	return id, err
}
