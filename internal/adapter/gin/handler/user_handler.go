package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-rest-api/internal/domain/user"
	"user-rest-api/internal/observability"
	"user-rest-api/internal/usecase/user"
	pkgerrors "user-rest-api/pkg/errors"
	"user-rest-api/pkg/logger"
)

const msgMalformedBody = "request body must be a valid JSON object"

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc   user.Usecase
	log  *zap.Logger
	prom *observability.Prom
}

// NewUserHandler creates a new UserHandler instance. prom may be nil.
func NewUserHandler(uc user.Usecase, log *zap.Logger, prom *observability.Prom) *UserHandler {
	return &UserHandler{
		uc:   uc,
		log:  log,
		prom: prom,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user.
// Any id sent by the client is ignored.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateUserRequest represents the HTTP request body for a partial update.
type UpdateUserRequest struct {
	ID       FlexID                  `json:"id"`
	Name     domain.Optional[string] `json:"name"`
	Username domain.Optional[string] `json:"username"`
	Email    domain.Optional[string] `json:"email"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateUserResponse is returned by a successful update.
type UpdateUserResponse struct {
	Success bool `json:"success"`
}

// DeleteUserResponse is returned by a successful delete.
type DeleteUserResponse struct {
	Success     bool  `json:"success"`
	RowsDeleted int64 `json:"rowsDeleted"`
}

// FailureResponse is the body of every rejected or failed request.
// RowsDeleted is only set by delete.
type FailureResponse struct {
	Success     bool                    `json:"success"`
	RowsDeleted *int64                  `json:"rowsDeleted,omitempty"`
	Errors      []*pkgerrors.FieldError `json:"errors"`
}

// FlexID accepts an id sent either as a JSON number or as a string.
// null, false and the number zero decode to the empty id.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case nil:
		*f = ""
	case string:
		*f = FlexID(t)
	case float64:
		if t == 0 {
			*f = ""
			return nil
		}
		// 1.0 and 1e0 name the same id as 1
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			*f = FlexID(strconv.FormatFloat(t, 'f', -1, 64))
			return nil
		}
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = FlexID(n.String())
	case bool:
		if !t {
			*f = ""
			return nil
		}
		*f = "true"
	default:
		return fmt.Errorf("id must be a number or a string, got %s", b)
	}
	return nil
}

// Home handles GET /
func (h *UserHandler) Home(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<h1>Hello from the users API!</h1>"))
}

// Index handles GET /users
func (h *UserHandler) Index(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, user.OpIndex, err, false)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toResponse(u)
	}

	h.prom.ObserveOperation(string(user.OpIndex), observability.OutcomeOK)
	c.JSON(http.StatusOK, users)
}

// Show handles GET /users/:id
func (h *UserHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()

	in, err := h.uc.ValidateShow(ctx, user.ShowUserRequest{ID: c.Param("id")})
	if err != nil {
		h.fail(c, user.OpShow, err, false)
		return
	}

	u, err := h.uc.ShowUser(ctx, in)
	if err != nil {
		h.fail(c, user.OpShow, err, false)
		return
	}

	h.prom.ObserveOperation(string(user.OpShow), observability.OutcomeOK)
	c.JSON(http.StatusOK, toResponse(*u))
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !h.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()

	in, err := h.uc.ValidateCreate(ctx, user.CreateUserRequest{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		h.fail(c, user.OpCreate, err, false)
		return
	}

	u, err := h.uc.CreateUser(ctx, in)
	if err != nil {
		h.fail(c, user.OpCreate, err, false)
		return
	}

	h.prom.ObserveOperation(string(user.OpCreate), observability.OutcomeOK)
	c.JSON(http.StatusOK, toResponse(*u))
}

// Update handles PUT /users
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()

	in, err := h.uc.ValidateUpdate(ctx, user.UpdateUserRequest{
		ID:       string(req.ID),
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		h.fail(c, user.OpUpdate, err, false)
		return
	}

	resp, err := h.uc.UpdateUser(ctx, in)
	if err != nil {
		h.fail(c, user.OpUpdate, err, false)
		return
	}

	h.prom.ObserveOperation(string(user.OpUpdate), observability.OutcomeOK)
	c.JSON(http.StatusOK, UpdateUserResponse{Success: resp.Success})
}

// Delete handles DELETE /users?id=
func (h *UserHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	in, err := h.uc.ValidateDelete(ctx, user.DeleteUserRequest{ID: c.Query("id")})
	if err != nil {
		h.fail(c, user.OpDelete, err, true)
		return
	}

	resp, err := h.uc.DeleteUser(ctx, in)
	if err != nil {
		h.fail(c, user.OpDelete, err, true)
		return
	}

	h.prom.ObserveOperation(string(user.OpDelete), observability.OutcomeOK)
	c.JSON(http.StatusOK, DeleteUserResponse{Success: true, RowsDeleted: resp.RowsDeleted})
}

// bind decodes the JSON body into dst. An empty body decodes as {}.
// It writes the 400 response itself and reports false when decoding fails.
func (h *UserHandler) bind(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	logger.WithContext(c.Request.Context(), h.log).Info("malformed request body",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusBadRequest, FailureResponse{
		Success: false,
		Errors: []*pkgerrors.FieldError{
			{Message: msgMalformedBody, Location: pkgerrors.LocationBody},
		},
	})
	return false
}

// fail writes the response for an error returned by the usecase layer.
// Validation errors are answered with 200; anything else is logged and
// hidden behind the generic message, with rowsDeleted 0 when withRows is set.
func (h *UserHandler) fail(c *gin.Context, op user.Operation, err error, withRows bool) {
	if ve, ok := pkgerrors.AsValidation(err); ok {
		h.prom.ObserveOperation(string(op), observability.OutcomeRejected)
		c.JSON(http.StatusOK, FailureResponse{
			Success: false,
			Errors:  ve,
		})
		return
	}

	var rows *int64
	if withRows {
		zero := int64(0)
		rows = &zero
	}

	h.prom.ObserveOperation(string(op), observability.OutcomeFailed)
	logger.WithContext(c.Request.Context(), h.log).Error("user operation failed",
		zap.String("operation", string(op)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, FailureResponse{
		Success:     false,
		RowsDeleted: rows,
		Errors: []*pkgerrors.FieldError{
			{Message: pkgerrors.GenericMessage},
		},
	})
}

func toResponse(u user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
	}
}
