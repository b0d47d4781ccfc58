//go:build unit || e2e

package builder

import (
	"flynext/internal/domain/user"
	reqdto "flynext/internal/handler/dto/request"
	"flynext/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserBuilder struct {
	Email        string
	Password     string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	IsActive     bool
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		Email:        "traveler@example.com",
		Password:     "correct-horse-battery",
		PasswordHash: "$2a$10$fakefakefakefakefakefuPlaceholderHashValue0000000000",
		FirstName:    "Ada",
		LastName:     "Marques",
		Role:         "traveler",
		IsActive:     true,
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}
	return user.NewUser(email, u.PasswordHash, u.FirstName, u.LastName, role), nil
}

func (u *UserBuilder) BuildSignupRequestDTO() reqdto.SignupRequest {
	return reqdto.SignupRequest{
		Email:     u.Email,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (u *UserBuilder) BuildLoginRequestDTO() reqdto.LoginRequest {
	return reqdto.LoginRequest{
		Email:    u.Email,
		Password: u.Password,
	}
}

func (u *UserBuilder) BuildReadModel() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:        uuid.New(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
	}
}
