package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"conectar-users/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindAll(ctx context.Context, f domain.ListFilter) ([]domain.User, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if f.Role != "" {
		tx = tx.Where("role = ?", f.Role)
	}
	col := "name"
	if f.SortBy == "createdAt" {
		col = "created_at"
	}
	dir := "asc"
	if f.Order == "desc" {
		dir = "desc"
	}
	var users []domain.User
	err := tx.Order(col + " " + dir).Find(&users).Error
	return users, err
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// Delete is a hard delete; the entity carries no soft-delete column.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{}).Error
}

func (r *UserRepo) FindInactive(ctx context.Context, before time.Time) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("last_login < ? OR last_login IS NULL", before).
		Find(&users).Error
	return users, err
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}

// IsDupKey matches unique-constraint violations across mysql and postgres
// without tying to a driver error type.
func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
