// Package seed creates the initial admin account at startup when
// configured. Seeding an email that already exists is a no-op.
package seed

import (
	"context"

	"go.uber.org/zap"

	"conectar-users/internal/domain"
	"conectar-users/internal/service"
)

type Admin struct {
	Name     string
	Email    string
	Password string
}

func EnsureAdmin(ctx context.Context, users *service.UserService, a Admin, log *zap.Logger) error {
	existing, err := users.GetByEmail(ctx, a.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info("admin user already exists", zap.String("email", a.Email))
		return nil
	}

	_, err = users.Create(ctx, service.CreateInput{
		Name:     a.Name,
		Email:    a.Email,
		Password: a.Password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return err
	}
	log.Info("admin user created", zap.String("email", a.Email))
	return nil
}
