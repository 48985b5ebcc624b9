package instrumented

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "user-rest-api/internal/domain/user"
	"user-rest-api/internal/observability"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockRepository) GetByKey(ctx context.Context, key string, value any) ([]domain.User, error) {
	args := m.Called(ctx, key, value)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *mockRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, id int64, p domain.Patch) (int64, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func TestUserRepository_PassesResultsThrough(t *testing.T) {
	ctx := context.Background()
	next := new(mockRepository)
	prom := observability.NewProm(prometheus.NewRegistry())
	repo := NewUserRepository(next, prom)

	alice := domain.User{ID: 1, Name: "Alice", Username: "alice", Email: "alice@example.com"}
	next.On("List", ctx).Return([]domain.User{alice}, nil)
	next.On("GetByID", ctx, int64(1)).Return(&alice, nil)
	next.On("GetByKey", ctx, "email", "alice@example.com").Return([]domain.User{alice}, nil)
	next.On("Create", ctx, mock.Anything).Return(int64(2), nil)
	next.On("Update", ctx, int64(1), mock.Anything).Return(int64(1), nil)
	next.On("Delete", ctx, int64(1)).Return(int64(1), nil)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{alice}, users)

	u, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &alice, u)

	users, err = repo.GetByKey(ctx, "email", "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, users, 1)

	id, err := repo.Create(ctx, &domain.User{Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	rows, err := repo.Update(ctx, 1, domain.Patch{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	next.AssertExpectations(t)
	// one series per logical op
	assert.Equal(t, 6, testutil.CollectAndCount(prom.DbQueryDuration, "userapi_db_query_duration_seconds"))
	assert.Equal(t, 0, testutil.CollectAndCount(prom.DbErrorsTotal))
}

func TestUserRepository_CountsErrors(t *testing.T) {
	ctx := context.Background()
	next := new(mockRepository)
	prom := observability.NewProm(prometheus.NewRegistry())
	repo := NewUserRepository(next, prom)

	boom := errors.New("sql: database is closed")
	next.On("Delete", ctx, int64(3)).Return(int64(0), boom)

	rows, err := repo.Delete(ctx, 3)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, rows)
	assert.Equal(t, float64(1), testutil.ToFloat64(prom.DbErrorsTotal.WithLabelValues("users.delete", "connection")))
}

func TestUserRepository_NilProm(t *testing.T) {
	ctx := context.Background()
	next := new(mockRepository)
	next.On("List", ctx).Return([]domain.User{}, nil)

	users, err := NewUserRepository(next, nil).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
