package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conectar-users/internal/apperror"
	coreauth "conectar-users/internal/core/auth"
	"conectar-users/internal/domain"
)

func newAuthSvc(t *testing.T) (*AuthService, *fakeRepo, *coreauth.JWTer) {
	t.Helper()
	repo := newFakeRepo()
	users := NewUserService(repo, newFakeCache(), &captureBus{}, zap.NewNop(), 5*time.Minute)
	jwter := &coreauth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}
	return NewAuthService(users, jwter, zap.NewNop()), repo, jwter
}

func TestRegisterIssuesUserRoleCredential(t *testing.T) {
	svc, repo, jwter := newAuthSvc(t)

	out, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, out.AccessToken)

	claims, err := jwter.Parse(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, int64(1), claims.UID())

	stored := repo.get(1)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash, "plaintext never persisted")
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	svc, repo, _ := newAuthSvc(t)
	_, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "B", "a@x.com", "other12")
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, 1, repo.count(), "no new row on conflict")
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo, _ := newAuthSvc(t)
	_, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperror.IsUnauthorized(err))
	assert.Equal(t, "Invalid credentials", apperror.MessageOf(err))
	assert.Nil(t, repo.get(1).LastLogin, "failed login must not stamp lastLogin")
}

func TestLoginUnknownAndPasswordlessLookIdentical(t *testing.T) {
	svc, _, _ := newAuthSvc(t)

	_, errUnknown := svc.Login(context.Background(), "ghost@x.com", "whatever")
	require.Error(t, errUnknown)

	// OAuth-created account has no password
	_, err := svc.LoginWithOAuth(context.Background(), OAuthProfile{Name: "O", Email: "o@x.com"})
	require.NoError(t, err)
	_, errNoPass := svc.Login(context.Background(), "o@x.com", "whatever")
	require.Error(t, errNoPass)

	assert.Equal(t, apperror.MessageOf(errUnknown), apperror.MessageOf(errNoPass))
	assert.True(t, apperror.IsUnauthorized(errNoPass))
}

func TestLoginSuccessStampsLastLoginAndEmbedsCurrentRole(t *testing.T) {
	svc, repo, jwter := newAuthSvc(t)
	_, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)

	out, err := svc.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	first := repo.get(1).LastLogin
	require.NotNil(t, first)

	claims, err := jwter.Parse(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, claims.Role)

	// a later login advances the stamp
	_, err = svc.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	second := repo.get(1).LastLogin
	require.NotNil(t, second)
	assert.False(t, second.Before(*first))
}

func TestOAuthLoginUpsertIsIdempotent(t *testing.T) {
	svc, repo, _ := newAuthSvc(t)

	_, err := svc.LoginWithOAuth(context.Background(), OAuthProfile{Name: "G User", Email: "g@x.com"})
	require.NoError(t, err)
	require.Equal(t, 1, repo.count())
	created := repo.get(1)
	assert.Empty(t, created.PasswordHash, "OAuth accounts never get a password")
	assert.Equal(t, domain.RoleUser, created.Role)
	require.NotNil(t, created.LastLogin)

	// second login reuses the account
	_, err = svc.LoginWithOAuth(context.Background(), OAuthProfile{Name: "Renamed", Email: "g@x.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.count())
	assert.Equal(t, "G User", repo.get(1).Name, "existing profile is reused as-is")
}

func TestOAuthLoginForExistingPasswordAccount(t *testing.T) {
	svc, repo, _ := newAuthSvc(t)
	_, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.LoginWithOAuth(context.Background(), OAuthProfile{Name: "A via G", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.count())
	assert.NotEmpty(t, repo.get(1).PasswordHash, "password survives an OAuth login")
	assert.NotNil(t, repo.get(1).LastLogin)
}

func TestResolveIdentity(t *testing.T) {
	svc, repo, jwter := newAuthSvc(t)
	out, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)
	claims, err := jwter.Parse(out.AccessToken)
	require.NoError(t, err)

	ident, err := svc.ResolveIdentity(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ident.ID)
	assert.Equal(t, domain.RoleUser, ident.Role)

	// deletion takes effect on the next request
	require.NoError(t, repo.Delete(context.Background(), 1))
	_, err = svc.ResolveIdentity(context.Background(), claims)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestResolveIdentityReflectsRoleChange(t *testing.T) {
	svc, repo, jwter := newAuthSvc(t)
	out, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	require.NoError(t, err)
	claims, err := jwter.Parse(out.AccessToken)
	require.NoError(t, err)

	u := repo.get(1)
	u.Role = domain.RoleAdmin
	require.NoError(t, repo.Update(context.Background(), u))

	ident, err := svc.ResolveIdentity(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, ident.Role, "store, not token, is authoritative")
}
