package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"conectar-users/internal/apperror"
	"conectar-users/internal/core/cache"
	"conectar-users/internal/domain"
	"conectar-users/internal/event"
	"conectar-users/internal/repo"
	"conectar-users/pkg/utils"
)

// inactiveAfter is the wall-clock threshold separating active from
// inactive accounts.
const inactiveAfter = 30 * 24 * time.Hour

// Cache is what the user service needs from the cache store. *cache.Cache
// satisfies it.
type Cache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
}

// Publisher is the fire-and-forget side of the event bus.
type Publisher interface {
	Publish(topic string, payload any)
}

type UserService struct {
	repo  domain.UserRepository
	cache Cache
	bus   Publisher
	log   *zap.Logger
	ttl   time.Duration
}

func NewUserService(r domain.UserRepository, c Cache, bus Publisher, log *zap.Logger, ttl time.Duration) *UserService {
	return &UserService{repo: r, cache: c, bus: bus, log: log, ttl: ttl}
}

type CreateInput struct {
	Name     string
	Email    string
	Password string // plaintext; hashed here, empty for OAuth accounts
	Role     string
}

type UpdateInput struct {
	Name     *string
	Password *string
}

// Create inserts a new user and invalidates the list cache. The returned
// record is sanitized.
func (s *UserService) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	role := in.Role
	if !domain.ValidRole(role) {
		role = domain.RoleUser
	}
	u := &domain.User{
		Name:  stripMarkup(in.Name),
		Email: in.Email,
		Role:  role,
	}
	if in.Password != "" {
		h, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, apperror.Internal("hash password", err)
		}
		u.PasswordHash = h
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if repo.IsDupKey(err) {
			return nil, apperror.Conflict("User already exists")
		}
		return nil, apperror.Internal("create user", err)
	}
	s.invalidateListCache(ctx)
	s.log.Info("user created", zap.String("email", u.Email), zap.Int64("id", u.ID))
	out := sanitizeUser(*u)
	return &out, nil
}

// List serves role-filtered, sorted listings through the TTL cache,
// keyed by the exact filter combination. Cached entries hold the
// sanitized shape.
func (s *UserService) List(ctx context.Context, f domain.ListFilter) ([]domain.User, error) {
	f = normalizeFilter(f)
	key := listCacheKey(f)
	users, err := cache.GetOrLoadJSON[[]domain.User](s.cache, ctx, key, s.ttl, func(ctx context.Context) ([]domain.User, error) {
		found, err := s.repo.FindAll(ctx, f)
		if err != nil {
			return nil, err
		}
		s.log.Info("users cached", zap.String("key", key), zap.Int("count", len(found)))
		return sanitizeUsers(found), nil
	})
	if err != nil {
		return nil, apperror.Internal("list users", err)
	}
	return users, nil
}

// GetByID enforces the admin-or-owner rule before touching the store, so
// a denied caller learns nothing about whether the id exists.
func (s *UserService) GetByID(ctx context.Context, id int64, caller Identity) (*domain.User, error) {
	if !Allow(CapReadUser, caller, id) {
		s.log.Warn("read denied", zap.String("caller", caller.Email), zap.Int64("target", id))
		return nil, apperror.Forbidden("You can only view your own profile")
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("find user", err)
	}
	if u == nil {
		return nil, apperror.NotFound("User not found")
	}
	out := sanitizeUser(*u)
	return &out, nil
}

// GetByEmail is the internal lookup used by the auth service. No
// authorization check; nil means absent. The hash stays on the record.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Internal("find user by email", err)
	}
	if u == nil {
		return nil, nil
	}
	out := *u
	out.Name = stripMarkup(out.Name)
	out.Email = stripMarkup(out.Email)
	return &out, nil
}

// Update applies only name and password. Ownership is checked before the
// fetch; email and role are not updatable through this path.
func (s *UserService) Update(ctx context.Context, id int64, in UpdateInput, caller Identity) (*domain.User, error) {
	if !Allow(CapUpdateUser, caller, id) {
		s.log.Warn("update denied", zap.String("caller", caller.Email), zap.Int64("target", id))
		return nil, apperror.Forbidden("You can only update your own profile")
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("find user", err)
	}
	if u == nil {
		return nil, apperror.NotFound("User not found")
	}
	if in.Name != nil {
		u.Name = stripMarkup(*in.Name)
	}
	if in.Password != nil {
		h, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, apperror.Internal("hash password", err)
		}
		u.PasswordHash = h
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperror.Internal("update user", err)
	}
	s.invalidateListCache(ctx)
	s.log.Info("user updated", zap.String("email", u.Email), zap.Int64("id", u.ID))
	out := sanitizeUser(*u)
	return &out, nil
}

// Remove hard-deletes and invalidates the list cache.
func (s *UserService) Remove(ctx context.Context, id int64) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apperror.Internal("find user", err)
	}
	if u == nil {
		return apperror.NotFound("User not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Internal("delete user", err)
	}
	s.invalidateListCache(ctx)
	s.log.Info("user deleted", zap.String("email", u.Email), zap.Int64("id", id))
	return nil
}

// ListInactive returns every user whose last login is absent or older
// than the threshold, publishing one users.inactive event when the batch
// is non-empty. The publish can never fail the call.
func (s *UserService) ListInactive(ctx context.Context) ([]domain.User, error) {
	before := time.Now().Add(-inactiveAfter)
	users, err := s.repo.FindInactive(ctx, before)
	if err != nil {
		return nil, apperror.Internal("find inactive users", err)
	}
	if len(users) > 0 {
		s.bus.Publish(event.TopicUsersInactive, event.InactiveUsers{Users: users})
		s.log.Info("inactive users found", zap.Int("count", len(users)))
	}
	return sanitizeUsers(users), nil
}

// TouchLastLogin stamps a successful authentication. Called by the auth
// service only.
func (s *UserService) TouchLastLogin(ctx context.Context, id int64) error {
	if err := s.repo.TouchLastLogin(ctx, id, time.Now()); err != nil {
		return apperror.Internal("update last login", err)
	}
	return nil
}

func normalizeFilter(f domain.ListFilter) domain.ListFilter {
	if !domain.ValidRole(f.Role) {
		f.Role = ""
	}
	if f.SortBy != "createdAt" {
		f.SortBy = "name"
	}
	if f.Order != "desc" {
		f.Order = "asc"
	}
	return f
}

func listCacheKey(f domain.ListFilter) string {
	role := f.Role
	if role == "" {
		role = "all"
	}
	return "users_list_" + role + "_" + f.SortBy + "_" + f.Order
}

// allListCacheKeys enumerates the full composed key space so mutations
// can clear filtered variants too, not just the base key.
func allListCacheKeys() []string {
	keys := make([]string, 0, 12)
	for _, role := range []string{"all", domain.RoleAdmin, domain.RoleUser} {
		for _, sortBy := range []string{"name", "createdAt"} {
			for _, order := range []string{"asc", "desc"} {
				keys = append(keys, "users_list_"+role+"_"+sortBy+"_"+order)
			}
		}
	}
	return keys
}

func (s *UserService) invalidateListCache(ctx context.Context) {
	if err := s.cache.Del(ctx, allListCacheKeys()...); err != nil {
		// stale reads are bounded by the TTL; do not fail the mutation
		s.log.Error("list cache invalidation failed", zap.Error(err))
	}
}
