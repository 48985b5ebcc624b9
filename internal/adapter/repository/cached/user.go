package cached

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-rest-api/internal/adapter/cache"
	domain "user-rest-api/internal/domain/user"
	"user-rest-api/internal/usecase/user"
)

// CachedUserRepository wraps a persistent repository with a cache-aside
// read path for GetByID. Writes go to the database first and then evict.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group

	// writes counts completed updates and deletes per id. A fill that saw
	// a different count before its DB read may hold a stale row.
	writes sync.Map // int64 -> *atomic.Uint64
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
// A nil cache disables caching.
func NewCachedUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// List delegates to the DB repository.
func (r *CachedUserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.List(ctx)
}

// GetByID retrieves a user by ID, serving from cache when possible.
// Concurrent misses for the same id share one database query.
func (r *CachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cachedUser != nil {
			return cachedUser, nil
		}
	}

	result, err, _ := r.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		seen := r.writeCount(id)

		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil || u == nil {
			return u, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			}
			if r.writeCount(id) != seen {
				r.evict(ctx, id)
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u, _ := result.(*domain.User)
	return u, nil
}

// GetByKey delegates to the DB repository; uniqueness checks must never
// see stale data.
func (r *CachedUserRepository) GetByKey(ctx context.Context, key string, value any) ([]domain.User, error) {
	return r.dbRepo.GetByKey(ctx, key, value)
}

// Create delegates to the DB repository.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	return r.dbRepo.Create(ctx, u)
}

// Update updates the user in DB and evicts it from the cache.
func (r *CachedUserRepository) Update(ctx context.Context, id int64, p domain.Patch) (int64, error) {
	rows, err := r.dbRepo.Update(ctx, id, p)
	if err != nil {
		return 0, err
	}

	r.markWritten(id)
	r.evict(ctx, id)
	return rows, nil
}

// Delete deletes the user from DB and evicts it from the cache.
func (r *CachedUserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	rows, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	r.markWritten(id)
	r.evict(ctx, id)
	return rows, nil
}

func (r *CachedUserRepository) writeCount(id int64) uint64 {
	if v, ok := r.writes.Load(id); ok {
		return v.(*atomic.Uint64).Load()
	}
	return 0
}

func (r *CachedUserRepository) markWritten(id int64) {
	v, _ := r.writes.LoadOrStore(id, new(atomic.Uint64))
	v.(*atomic.Uint64).Add(1)
}

func (r *CachedUserRepository) evict(ctx context.Context, id int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.Int64("id", id), zap.Error(err))
	}
}
