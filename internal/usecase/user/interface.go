package user

import (
	"context"

	domain "user-rest-api/internal/domain/user"
)

// Repository is the persistence gateway the use cases depend on.
type Repository interface {
	// List returns every user in insertion order.
	List(ctx context.Context) ([]domain.User, error)
	// GetByID returns nil, nil when no user has the id.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByKey returns the users whose column key equals value.
	GetByKey(ctx context.Context, key string, value any) ([]domain.User, error)
	// Create returns the generated id.
	Create(ctx context.Context, u *domain.User) (int64, error)
	// Update writes only the columns supplied in p.
	Update(ctx context.Context, id int64, p domain.Patch) (int64, error)
	// Delete returns the number of rows deleted.
	Delete(ctx context.Context, id int64) (int64, error)
}

// Usecase defines the user operations exposed to transports. Every
// operation except ListUsers runs in two steps: a Validate call that either
// rejects the request with pkg/errors.ValidationErrors or returns the
// validated input, and the operation itself which only accepts that input.
type Usecase interface {
	ListUsers(ctx context.Context) (*ListUsersResponse, error)

	ValidateShow(ctx context.Context, in ShowUserRequest) (*ShowUserInput, error)
	ShowUser(ctx context.Context, in *ShowUserInput) (*User, error)

	ValidateCreate(ctx context.Context, in CreateUserRequest) (*CreateUserInput, error)
	CreateUser(ctx context.Context, in *CreateUserInput) (*User, error)

	ValidateUpdate(ctx context.Context, in UpdateUserRequest) (*UpdateUserInput, error)
	UpdateUser(ctx context.Context, in *UpdateUserInput) (*UpdateUserResponse, error)

	ValidateDelete(ctx context.Context, in DeleteUserRequest) (*DeleteUserInput, error)
	DeleteUser(ctx context.Context, in *DeleteUserInput) (*DeleteUserResponse, error)
}
