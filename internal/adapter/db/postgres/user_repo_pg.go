package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"user-rest-api/internal/domain/user"
	pkgerrors "user-rest-api/pkg/errors"
)

// lookupColumns are the columns GetByKey may filter on.
var lookupColumns = map[string]struct{}{
	"id":       {},
	"name":     {},
	"username": {},
	"email":    {},
}

// UserRepoPG is the persistence gateway for the users table.
type UserRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"not null"`
	Username string `gorm:"not null"`
	Email    string `gorm:"not null;uniqueIndex"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (m UserSchema) toDomain() user.User {
	return user.User{
		ID:       m.ID,
		Name:     m.Name,
		Username: m.Username,
		Email:    m.Email,
	}
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// List returns every user in insertion order.
func (r *UserRepoPG) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, pkgerrors.NewStorageError("list users", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = model.toDomain()
	}
	return users, nil
}

// GetByID returns the user with the given id, or nil when there is none.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, nil
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, pkgerrors.NewStorageError("get user", err)
	}

	u := model.toDomain()
	return &u, nil
}

// GetByKey returns all users whose column key equals value.
func (r *UserRepoPG) GetByKey(ctx context.Context, key string, value any) ([]user.User, error) {
	if _, ok := lookupColumns[key]; !ok {
		return nil, pkgerrors.NewStorageError("get users by key", fmt.Errorf("unsupported lookup column %q", key))
	}

	var models []UserSchema
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: key}, Value: value}).
		Order("id").
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to get users by key from db", zap.Error(err), zap.String("key", key))
		return nil, pkgerrors.NewStorageError("get users by key", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = model.toDomain()
	}
	return users, nil
}

// Create inserts a new user and returns the generated id. u.ID is ignored.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, pkgerrors.NewStorageError("create user", errors.New("user cannot be nil"))
	}

	model := UserSchema{
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, pkgerrors.NewStorageError("create user", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Update writes the supplied columns of p to the row with the given id and
// returns the number of rows changed. Columns absent from p are not touched.
func (r *UserRepoPG) Update(ctx context.Context, id int64, p user.Patch) (int64, error) {
	cols := p.Columns()
	if len(cols) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.Int64("id", id))
		return 0, pkgerrors.NewStorageError("update user", res.Error)
	}

	r.log.Info("user updated in db", zap.Int64("id", id), zap.Int64("rows", res.RowsAffected))
	return res.RowsAffected, nil
}

// Delete removes the user with the given id and returns the number of rows deleted.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return 0, pkgerrors.NewStorageError("delete user", res.Error)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id), zap.Int64("rows", res.RowsAffected))
	return res.RowsAffected, nil
}
