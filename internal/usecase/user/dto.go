package user

import (
	"strconv"

	domain "user-rest-api/internal/domain/user"
)

// Operation names a user operation in logs and metrics.
type Operation string

const (
	OpIndex  Operation = "index"
	OpShow   Operation = "show"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ShowUserRequest carries the raw path id.
type ShowUserRequest struct {
	ID string
}

// ShowUserInput is the validated show request: the user it resolved to.
type ShowUserInput struct {
	User domain.User
}

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,useremail"`
}

// CreateUserInput is the validated create request.
type CreateUserInput struct {
	Name     string
	Username string
	Email    string
}

// UpdateUserRequest represents the request payload for a partial update.
// ID is the raw value sent by the client, empty when missing.
type UpdateUserRequest struct {
	ID       string
	Name     domain.Optional[string]
	Username domain.Optional[string]
	Email    domain.Optional[string]
}

// UpdateUserInput is the validated update request.
type UpdateUserInput struct {
	ID    int64
	Patch domain.Patch
}

// UpdateUserResponse represents the response payload after updating a user.
type UpdateUserResponse struct {
	Success bool
}

// DeleteUserRequest carries the raw query id.
type DeleteUserRequest struct {
	ID string
}

// DeleteUserInput is the validated delete request. ID is zero when the raw
// id cannot name any user.
type DeleteUserInput struct {
	ID int64
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	RowsDeleted int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID       int64
	Name     string
	Username string
	Email    string
}

func toDTO(u domain.User) User {
	return User{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
	}
}

// parseID converts a raw id to a storage id. Only positive base-10
// integers can name a user.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
