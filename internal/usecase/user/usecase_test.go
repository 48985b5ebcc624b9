package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-rest-api/internal/domain/user"
	pkgerrors "user-rest-api/pkg/errors"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByKey(ctx context.Context, key string, value any) ([]domain.User, error) {
	args := m.Called(ctx, key, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, p domain.Patch) (int64, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func setupTestUsecase(t *testing.T) (*UserUsecase, *MockRepository) {
	mockRepo := new(MockRepository)
	uc := New(mockRepo, zaptest.NewLogger(t))
	return uc, mockRepo
}

var joao = domain.User{ID: 1, Name: "João", Username: "joao", Email: "joao@gmail.com"}

func requireValidation(t *testing.T, err error) pkgerrors.ValidationErrors {
	t.Helper()
	ve, ok := pkgerrors.AsValidation(err)
	require.True(t, ok, "expected validation errors, got %v", err)
	return ve
}

func fieldsOf(ve pkgerrors.ValidationErrors) []string {
	out := make([]string, len(ve))
	for i, e := range ve {
		out[i] = e.Field
	}
	return out
}

// ==================== LIST ====================

func TestListUsers_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return([]domain.User{joao}, nil)

	resp, err := uc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []User{{ID: 1, Name: "João", Username: "joao", Email: "joao@gmail.com"}}, resp.Users)
}

func TestListUsers_StorageError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return(nil, pkgerrors.NewStorageError("list users", errors.New("down")))

	resp, err := uc.ListUsers(ctx)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, pkgerrors.ErrStorage)
}

// ==================== SHOW ====================

func TestValidateShow(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		setup     func(*MockRepository)
		wantField string
		wantValue any
		wantUser  *domain.User
	}{
		{
			name:      "missing id",
			id:        "",
			wantField: "id",
		},
		{
			name:      "non numeric id never reaches storage",
			id:        "text",
			wantField: "id",
			wantValue: "text",
		},
		{
			name: "unknown id",
			id:   "50",
			setup: func(m *MockRepository) {
				m.On("GetByID", mock.Anything, int64(50)).Return(nil, nil)
			},
			wantField: "id",
			wantValue: "50",
		},
		{
			name: "existing id",
			id:   "1",
			setup: func(m *MockRepository) {
				u := joao
				m.On("GetByID", mock.Anything, int64(1)).Return(&u, nil)
			},
			wantUser: &joao,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)
			if tt.setup != nil {
				tt.setup(mockRepo)
			}

			in, err := uc.ValidateShow(context.Background(), ShowUserRequest{ID: tt.id})

			if tt.wantUser != nil {
				require.NoError(t, err)
				assert.Equal(t, *tt.wantUser, in.User)
			} else {
				ve := requireValidation(t, err)
				require.Len(t, ve, 1)
				assert.Equal(t, tt.wantField, ve[0].Field)
				assert.Equal(t, tt.wantValue, ve[0].Value)
				assert.Equal(t, pkgerrors.LocationParams, ve[0].Location)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestValidateShow_StorageError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, pkgerrors.NewStorageError("get user", errors.New("down")))

	_, err := uc.ValidateShow(context.Background(), ShowUserRequest{ID: "1"})
	require.Error(t, err)
	_, isValidation := pkgerrors.AsValidation(err)
	assert.False(t, isValidation)
	assert.ErrorIs(t, err, pkgerrors.ErrStorage)
}

func TestShowUser_ReturnsResolvedUser(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	u, err := uc.ShowUser(context.Background(), &ShowUserInput{User: joao})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "joao", u.Username)

	// the resolved record is reused; storage is never queried
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestShowUser_NilInput(t *testing.T) {
	uc, _ := setupTestUsecase(t)

	_, err := uc.ShowUser(context.Background(), nil)
	assert.Error(t, err)
}

// ==================== CREATE ====================

func TestValidateCreate_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	mockRepo.On("GetByKey", mock.Anything, "email", "joao@gmail.com").Return([]domain.User{}, nil)

	in, err := uc.ValidateCreate(context.Background(), CreateUserRequest{Name: "João", Username: "joao", Email: "joao@gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, &CreateUserInput{Name: "João", Username: "joao", Email: "joao@gmail.com"}, in)
}

func TestValidateCreate_MissingFields(t *testing.T) {
	tests := []struct {
		name       string
		req        CreateUserRequest
		wantFields []string
	}{
		{name: "everything missing", req: CreateUserRequest{}, wantFields: []string{"name", "username", "email"}},
		{name: "missing name", req: CreateUserRequest{Username: "elton", Email: "elton@gmail.com"}, wantFields: []string{"name"}},
		{name: "missing username", req: CreateUserRequest{Name: "Elton", Email: "elton@gmail.com"}, wantFields: []string{"username"}},
		{name: "missing email", req: CreateUserRequest{Name: "Elton", Username: "elton"}, wantFields: []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)
			mockRepo.On("GetByKey", mock.Anything, "email", mock.Anything).Return([]domain.User{}, nil).Maybe()

			_, err := uc.ValidateCreate(context.Background(), tt.req)
			ve := requireValidation(t, err)
			assert.Equal(t, tt.wantFields, fieldsOf(ve))
			for _, e := range ve {
				assert.Equal(t, pkgerrors.LocationBody, e.Location)
				assert.Contains(t, e.Message, "is required")
			}
		})
	}
}

func TestValidateCreate_InvalidEmailSkipsUniqueness(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	_, err := uc.ValidateCreate(context.Background(), CreateUserRequest{Name: "Elton", Username: "elton", Email: "elton"})
	ve := requireValidation(t, err)
	require.Len(t, ve, 1)
	assert.Equal(t, "email", ve[0].Field)
	assert.Equal(t, "elton", ve[0].Value)
	assert.Equal(t, msgEmailInvalid, ve[0].Message)

	mockRepo.AssertNotCalled(t, "GetByKey", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateCreate_EmailInUse(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	mockRepo.On("GetByKey", mock.Anything, "email", "joao@gmail.com").Return([]domain.User{joao}, nil)

	_, err := uc.ValidateCreate(context.Background(), CreateUserRequest{Name: "Other", Username: "other", Email: "joao@gmail.com"})
	ve := requireValidation(t, err)
	require.Len(t, ve, 1)
	assert.Equal(t, "email", ve[0].Field)
	assert.Equal(t, msgEmailInUse, ve[0].Message)
}

func TestValidateCreate_StorageError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	mockRepo.On("GetByKey", mock.Anything, "email", "joao@gmail.com").Return(nil, pkgerrors.NewStorageError("get users by key", errors.New("down")))

	_, err := uc.ValidateCreate(context.Background(), CreateUserRequest{Name: "João", Username: "joao", Email: "joao@gmail.com"})
	assert.ErrorIs(t, err, pkgerrors.ErrStorage)
}

func TestCreateUser_AssignsID(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == 0 && u.Name == "João" && u.Username == "joao" && u.Email == "joao@gmail.com"
	})).Return(int64(7), nil)

	u, err := uc.CreateUser(ctx, &CreateUserInput{Name: "João", Username: "joao", Email: "joao@gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 7, Name: "João", Username: "joao", Email: "joao@gmail.com"}, u)
}

func TestCreateUser_StorageError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(int64(0), pkgerrors.NewStorageError("create user", errors.New("down")))

	u, err := uc.CreateUser(ctx, &CreateUserInput{Name: "João", Username: "joao", Email: "joao@gmail.com"})
	assert.Nil(t, u)
	assert.ErrorIs(t, err, pkgerrors.ErrStorage)
}

// ==================== UPDATE ====================

func withJoao(m *MockRepository) {
	u := joao
	m.On("GetByID", mock.Anything, int64(1)).Return(&u, nil)
}

func TestValidateUpdate_OnlyName(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	withJoao(mockRepo)

	in, err := uc.ValidateUpdate(context.Background(), UpdateUserRequest{ID: "1", Name: domain.Some("João Pedro")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), in.ID)
	assert.Equal(t, map[string]any{"name": "João Pedro"}, in.Patch.Columns())

	mockRepo.AssertNotCalled(t, "GetByKey", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateUpdate_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		req        UpdateUserRequest
		setup      func(*MockRepository)
		wantFields []string
	}{
		{
			name:       "missing id",
			req:        UpdateUserRequest{Name: domain.Some("João")},
			wantFields: []string{"id"},
		},
		{
			name: "unknown id",
			req:  UpdateUserRequest{ID: "50", Name: domain.Some("João")},
			setup: func(m *MockRepository) {
				m.On("GetByID", mock.Anything, int64(50)).Return(nil, nil)
			},
			wantFields: []string{"id"},
		},
		{
			name:       "only id",
			req:        UpdateUserRequest{ID: "1"},
			setup:      withJoao,
			wantFields: []string{""},
		},
		{
			name:       "empty name",
			req:        UpdateUserRequest{ID: "1", Name: domain.Some("")},
			setup:      withJoao,
			wantFields: []string{"name", ""},
		},
		{
			name:       "empty username next to a valid name",
			req:        UpdateUserRequest{ID: "1", Name: domain.Some("João"), Username: domain.Some("")},
			setup:      withJoao,
			wantFields: []string{"username"},
		},
		{
			name:       "empty email",
			req:        UpdateUserRequest{ID: "1", Email: domain.Some("")},
			setup:      withJoao,
			wantFields: []string{"email", ""},
		},
		{
			name:       "invalid email",
			req:        UpdateUserRequest{ID: "1", Email: domain.Some("joao")},
			setup:      withJoao,
			wantFields: []string{"email"},
		},
		{
			name: "email owned by another user",
			req:  UpdateUserRequest{ID: "1", Email: domain.Some("maria@gmail.com")},
			setup: func(m *MockRepository) {
				withJoao(m)
				m.On("GetByKey", mock.Anything, "email", "maria@gmail.com").
					Return([]domain.User{{ID: 2, Name: "Maria", Username: "maria", Email: "maria@gmail.com"}}, nil)
			},
			wantFields: []string{"email"},
		},
		{
			name:       "everything wrong at once",
			req:        UpdateUserRequest{Name: domain.Some(""), Username: domain.Some(""), Email: domain.Some("")},
			wantFields: []string{"id", "name", "username", "email", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)
			if tt.setup != nil {
				tt.setup(mockRepo)
			}

			in, err := uc.ValidateUpdate(context.Background(), tt.req)
			assert.Nil(t, in)
			ve := requireValidation(t, err)
			assert.Equal(t, tt.wantFields, fieldsOf(ve))
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestValidateUpdate_AtLeastOneFieldErrorHasNoField(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	withJoao(mockRepo)

	_, err := uc.ValidateUpdate(context.Background(), UpdateUserRequest{ID: "1"})
	ve := requireValidation(t, err)
	require.Len(t, ve, 1)
	assert.Empty(t, ve[0].Field)
	assert.Equal(t, msgAtLeastOne, ve[0].Message)
}

func TestValidateUpdate_OwnEmailIsAccepted(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	withJoao(mockRepo)
	mockRepo.On("GetByKey", mock.Anything, "email", "joao@gmail.com").Return([]domain.User{joao}, nil)

	in, err := uc.ValidateUpdate(context.Background(), UpdateUserRequest{ID: "1", Email: domain.Some("joao@gmail.com")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), in.ID)
}

func TestUpdateUser_PassesPatchThrough(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()
	patch := domain.Patch{Username: domain.Some("jp")}

	mockRepo.On("Update", ctx, int64(1), patch).Return(int64(1), nil)

	resp, err := uc.UpdateUser(ctx, &UpdateUserInput{ID: 1, Patch: patch})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_StorageError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Update", ctx, int64(1), mock.Anything).Return(int64(0), pkgerrors.NewStorageError("update user", errors.New("down")))

	resp, err := uc.UpdateUser(ctx, &UpdateUserInput{ID: 1, Patch: domain.Patch{Name: domain.Some("x")}})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, pkgerrors.ErrStorage)
}

// ==================== DELETE ====================

func TestValidateDelete(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	_, err := uc.ValidateDelete(ctx, DeleteUserRequest{})
	ve := requireValidation(t, err)
	require.Len(t, ve, 1)
	assert.Equal(t, "id", ve[0].Field)
	assert.Equal(t, pkgerrors.LocationQuery, ve[0].Location)

	in, err := uc.ValidateDelete(ctx, DeleteUserRequest{ID: "3"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), in.ID)

	in, err = uc.ValidateDelete(ctx, DeleteUserRequest{ID: "text"})
	require.NoError(t, err, "existence is not checked")
	assert.Equal(t, int64(0), in.ID)

	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDeleteUser(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(int64(1), nil).Once()
	mockRepo.On("Delete", ctx, int64(1)).Return(int64(0), nil).Once()

	resp, err := uc.DeleteUser(ctx, &DeleteUserInput{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.RowsDeleted)

	resp, err = uc.DeleteUser(ctx, &DeleteUserInput{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.RowsDeleted)

	mockRepo.AssertExpectations(t)
}

func TestDeleteUser_UnparsableIDSkipsStorage(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	resp, err := uc.DeleteUser(context.Background(), &DeleteUserInput{ID: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.RowsDeleted)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteUser_StorageError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(int64(0), pkgerrors.NewStorageError("delete user", errors.New("down")))

	resp, err := uc.DeleteUser(ctx, &DeleteUserInput{ID: 1})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, pkgerrors.ErrStorage)
}
