package user

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-rest-api/internal/domain/user"
	pkgerrors "user-rest-api/pkg/errors"
	"user-rest-api/pkg/validation"
)

var errNoInput = pkgerrors.NewInternalError("operation called without validated input", nil)

var _ Usecase = (*UserUsecase)(nil)

// UserUsecase implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type UserUsecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new instance of UserUsecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *UserUsecase {
	return &UserUsecase{repo: r, log: log, validate: validation.New()}
}

// ListUsers returns every user in insertion order.
func (uc *UserUsecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = toDTO(du)
	}

	return &ListUsersResponse{Users: users}, nil
}

// ShowUser returns the user resolved during validation without querying again.
func (uc *UserUsecase) ShowUser(_ context.Context, in *ShowUserInput) (*User, error) {
	if in == nil {
		return nil, errNoInput
	}

	u := toDTO(in.User)
	return &u, nil
}

// CreateUser inserts a validated user and returns it with its new id.
func (uc *UserUsecase) CreateUser(ctx context.Context, in *CreateUserInput) (*User, error) {
	if in == nil {
		return nil, errNoInput
	}

	uc.log.Info("creating user", zap.String("username", in.Username), zap.String("email", in.Email))

	u := domain.User{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
	}

	id, err := uc.repo.Create(ctx, &u)
	if err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	u.ID = id

	created := toDTO(u)
	return &created, nil
}

// UpdateUser applies a validated patch. Fields absent from the patch keep
// their stored values.
func (uc *UserUsecase) UpdateUser(ctx context.Context, in *UpdateUserInput) (*UpdateUserResponse, error) {
	if in == nil {
		return nil, errNoInput
	}

	uc.log.Info("updating user", zap.Int64("id", in.ID), zap.Strings("columns", keys(in.Patch.Columns())))

	if _, err := uc.repo.Update(ctx, in.ID, in.Patch); err != nil {
		uc.log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &UpdateUserResponse{Success: true}, nil
}

// DeleteUser removes the user and reports how many rows went away.
// Deleting an id that does not exist is not an error.
func (uc *UserUsecase) DeleteUser(ctx context.Context, in *DeleteUserInput) (*DeleteUserResponse, error) {
	if in == nil {
		return nil, errNoInput
	}

	if in.ID <= 0 {
		uc.log.Debug("delete skipped for id that names no user")
		return &DeleteUserResponse{RowsDeleted: 0}, nil
	}

	uc.log.Info("deleting user", zap.Int64("id", in.ID))

	rows, err := uc.repo.Delete(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &DeleteUserResponse{RowsDeleted: rows}, nil
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
