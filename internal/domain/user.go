package domain

import (
	"context"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the persisted identity record. PasswordHash never serializes
// outward, to responses or to cache entries.
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string     `gorm:"size:64;not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string     `gorm:"size:191" json:"-"` // empty for OAuth-only accounts
	Role         string     `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLogin    *time.Time `json:"lastLogin"`
}

func (User) TableName() string { return "users" }

// ValidRole reports whether r is one of the two known roles.
func ValidRole(r string) bool { return r == RoleAdmin || r == RoleUser }

// ListFilter narrows and orders FindAll results. Zero values mean
// "all roles, sorted by name ascending".
type ListFilter struct {
	Role   string // "admin" | "user" | ""
	SortBy string // "name" | "createdAt" | ""
	Order  string // "asc" | "desc" | ""
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, f ListFilter) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
	FindInactive(ctx context.Context, before time.Time) ([]User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}
