package repository

import (
	"context"

	"flynext/internal/domain/user"
	"flynext/internal/infra"
	"flynext/internal/infra/db"
	"flynext/internal/usecase/shared"

	"github.com/google/uuid"
)

type UserRepository struct {
	exec db.Executor
}

func NewUserRepository(exec db.Executor) shared.UserRepository {
	return &UserRepository{exec: exec}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.exec.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID(), u.Email().Value(), u.PasswordHash(), u.FirstName(), u.LastName(),
		u.Role().String(), u.IsActive(), u.CreatedAt(), u.UpdatedAt(),
	)
	if err != nil {
		return wrapBookingErr("insert user", err)
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.exec.Exec(ctx, `
		UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`, userID)
	if err != nil {
		return infra.WrapRepoErr("update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return nil
}
