package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

type userStore struct{ s *Store }

const userColumns = "id, username, password_hash, role, created_at"

func (r *userStore) FindByUsername(ctx context.Context, username string) (models.AdminUser, error) {
	var user models.AdminUser
	err := r.s.q(ctx).QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		return models.AdminUser{}, notFoundOr(err, "User", username, "find user")
	}
	return user, nil
}

func (r *userStore) FindAdmin(ctx context.Context) (models.AdminUser, error) {
	var user models.AdminUser
	err := r.s.q(ctx).QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE role = $1 ORDER BY created_at LIMIT 1", models.RoleAdmin,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		return models.AdminUser{}, notFoundOr(err, "User", models.RoleAdmin, "find admin")
	}
	return user, nil
}

func (r *userStore) Create(ctx context.Context, user models.AdminUser) (models.AdminUser, error) {
	user.ID = uuid.NewString()
	_, err := r.s.q(ctx).Exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES ($1, $2, $3, $4, $5)",
		user.ID, user.Username, user.PasswordHash, user.Role, user.CreatedAt)
	if isUniqueViolation(err) {
		return models.AdminUser{}, &models.ConflictError{Message: "Username already exists"}
	}
	if err != nil {
		return models.AdminUser{}, models.NewStorageError("insert user", err)
	}
	return user, nil
}

func (r *userStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.s.q(ctx).Exec(ctx, "UPDATE users SET password_hash = $2 WHERE id = $1", id, passwordHash)
	if err != nil {
		return models.NewStorageError("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
