package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"conectar-users/internal/apperror"
	coreauth "conectar-users/internal/core/auth"
	"conectar-users/internal/domain"
	"conectar-users/pkg/utils"
)

// invalidCredentials is deliberately identical for unknown accounts,
// password-less accounts and wrong passwords, so login cannot be used to
// enumerate users.
const invalidCredentials = "Invalid credentials"

// TokenResult is what every successful authentication returns.
type TokenResult struct {
	AccessToken string `json:"accessToken"`
}

// OAuthProfile is the provider-agnostic shape the auth service consumes.
type OAuthProfile struct {
	Name  string
	Email string
}

type AuthService struct {
	users *UserService
	jwter *coreauth.JWTer
	log   *zap.Logger
}

func NewAuthService(users *UserService, jwter *coreauth.JWTer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, jwter: jwter, log: log}
}

// Register creates a user-role account and issues its first credential.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*TokenResult, error) {
	email = strings.TrimSpace(email)
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Warn("register rejected, email taken", zap.String("email", email))
		return nil, apperror.Conflict("User already exists")
	}

	u, err := s.users.Create(ctx, CreateInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("email", u.Email))
	return s.issue(u)
}

// Login verifies a password credential and stamps lastLogin on success
// only. Accounts without a password (OAuth-only) are rejected the same
// way unknown accounts are.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, apperror.Unauthorized(invalidCredentials)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		s.log.Warn("login failed", zap.String("email", u.Email))
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	s.log.Info("user logged in", zap.String("email", u.Email))
	return s.issue(u)
}

// LoginWithOAuth upserts by email: an existing account is reused as-is,
// a new one is created with no password. lastLogin is always stamped.
func (s *AuthService) LoginWithOAuth(ctx context.Context, profile OAuthProfile) (*TokenResult, error) {
	u, err := s.users.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u, err = s.users.Create(ctx, CreateInput{
			Name:  profile.Name,
			Email: profile.Email,
			Role:  domain.RoleUser,
		})
		if err != nil {
			return nil, err
		}
		s.log.Info("user created via oauth", zap.String("email", u.Email))
	}

	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	s.log.Info("oauth login", zap.String("email", u.Email))
	return s.issue(u)
}

// ResolveIdentity re-fetches the user behind a parsed credential. The
// store, not the token, is authoritative: role changes and deletions
// take effect on the next request.
func (s *AuthService) ResolveIdentity(ctx context.Context, claims *coreauth.Claims) (Identity, error) {
	u, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		return Identity{}, err
	}
	if u == nil {
		return Identity{}, apperror.Unauthorized("Invalid token")
	}
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}

func (s *AuthService) issue(u *domain.User) (*TokenResult, error) {
	tok, err := s.jwter.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, apperror.Internal("issue token", err)
	}
	return &TokenResult{AccessToken: tok}, nil
}
