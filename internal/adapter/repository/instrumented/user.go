package instrumented

import (
	"context"

	domain "user-rest-api/internal/domain/user"
	"user-rest-api/internal/observability"
	"user-rest-api/internal/usecase/user"
)

// UserRepository times every call of the wrapped repository in the
// userapi_db_* metrics.
type UserRepository struct {
	next user.Repository
	prom *observability.Prom
}

// NewUserRepository wraps next. A nil prom makes the wrapper transparent.
func NewUserRepository(next user.Repository, prom *observability.Prom) *UserRepository {
	return &UserRepository{next: next, prom: prom}
}

func (r *UserRepository) List(ctx context.Context) (users []domain.User, err error) {
	err = r.prom.ObserveDB("users.list", func() error {
		users, err = r.next.List(ctx)
		return err
	})
	return users, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (u *domain.User, err error) {
	err = r.prom.ObserveDB("users.get_by_id", func() error {
		u, err = r.next.GetByID(ctx, id)
		return err
	})
	return u, err
}

func (r *UserRepository) GetByKey(ctx context.Context, key string, value any) (users []domain.User, err error) {
	err = r.prom.ObserveDB("users.get_by_"+key, func() error {
		users, err = r.next.GetByKey(ctx, key, value)
		return err
	})
	return users, err
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (id int64, err error) {
	err = r.prom.ObserveDB("users.create", func() error {
		id, err = r.next.Create(ctx, u)
		return err
	})
	return id, err
}

func (r *UserRepository) Update(ctx context.Context, id int64, p domain.Patch) (rows int64, err error) {
	err = r.prom.ObserveDB("users.update", func() error {
		rows, err = r.next.Update(ctx, id, p)
		return err
	})
	return rows, err
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (rows int64, err error) {
	err = r.prom.ObserveDB("users.delete", func() error {
		rows, err = r.next.Delete(ctx, id)
		return err
	})
	return rows, err
}
