package readstore

import (
	"context"
	"errors"

	"flynext/internal/infra"
	"flynext/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserReadStore struct {
	pool *pgxpool.Pool
}

func NewUserReadStore(pool *pgxpool.Pool) queries.UserReadStore {
	return &UserReadStore{pool: pool}
}

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, role, is_active
		FROM users
		WHERE id = $1`, id)

	var view queries.AuthorizedUserView
	err := row.Scan(&view.ID, &view.Email, &view.FirstName, &view.LastName, &view.Role, &view.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("scan user view", err)
	}
	return &view, nil
}

func (s *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, role, is_active, password_hash
		FROM users
		WHERE email = $1`, email)

	var (
		view queries.AuthorizedUserView
		hash string
	)
	err := row.Scan(&view.ID, &view.Email, &view.FirstName, &view.LastName, &view.Role, &view.IsActive, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("scan user view", err)
	}
	return &view, hash, nil
}
