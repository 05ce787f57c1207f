package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"conectar-users/internal/domain"
)

// fakeRepo is an in-memory UserRepository.
type fakeRepo struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]*domain.User

	failAll bool // force repository errors
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]*domain.User{}}
}

var errBoom = errors.New("boom")

func (r *fakeRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errBoom
	}
	for _, e := range r.users {
		if e.Email == u.Email {
			return errors.New("Error 1062: Duplicate entry")
		}
	}
	r.seq++
	u.ID = r.seq
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errBoom
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errBoom
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindAll(_ context.Context, f domain.ListFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errBoom
	}
	var out []domain.User
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		var less bool
		if f.SortBy == "createdAt" {
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		} else {
			less = strings.Compare(out[i].Name, out[j].Name) < 0
		}
		if f.Order == "desc" {
			return !less
		}
		return less
	})
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errBoom
	}
	if _, ok := r.users[u.ID]; !ok {
		return errors.New("not found")
	}
	u.UpdatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errBoom
	}
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) FindInactive(_ context.Context, before time.Time) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errBoom
	}
	var out []domain.User
	for _, u := range r.users {
		if u.LastLogin == nil || u.LastLogin.Before(before) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errBoom
	}
	u, ok := r.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.LastLogin = &at
	return nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *fakeRepo) get(id int64) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

// fakeCache is a TTL-less in-memory stand-in for the redis cache.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	loads int
	dels  []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}}
}

func (c *fakeCache) GetOrLoad(ctx context.Context, key string, _ time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	if b, ok := c.store[key]; ok {
		c.mu.Unlock()
		return b, nil
	}
	c.mu.Unlock()
	b, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.store[key] = b
	c.loads++
	c.mu.Unlock()
	return b, nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.store, k)
	}
	c.dels = append(c.dels, keys...)
	return nil
}

func (c *fakeCache) loadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// captureBus records published events.
type captureBus struct {
	mu     sync.Mutex
	events []struct {
		Topic   string
		Payload any
	}
}

func (b *captureBus) Publish(topic string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, struct {
		Topic   string
		Payload any
	}{topic, payload})
}

func (b *captureBus) published() []struct {
	Topic   string
	Payload any
} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]struct {
		Topic   string
		Payload any
	}(nil), b.events...)
}
