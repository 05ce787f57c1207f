package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundTrip(t *testing.T) {
	j := &JWTer{Secret: []byte("secret"), Issuer: "conectar", TTL: time.Hour}

	tok, err := j.Issue(42, "a@x.com", "admin")
	require.NoError(t, err)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UID())
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "conectar", claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	j := &JWTer{Secret: []byte("secret"), Issuer: "conectar", TTL: time.Hour}
	other := &JWTer{Secret: []byte("other"), Issuer: "conectar", TTL: time.Hour}

	tok, err := j.Issue(1, "a@x.com", "user")
	require.NoError(t, err)

	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	j := &JWTer{Secret: []byte("secret"), Issuer: "someone-else", TTL: time.Hour}
	v := &JWTer{Secret: []byte("secret"), Issuer: "conectar", TTL: time.Hour}

	tok, err := j.Issue(1, "a@x.com", "user")
	require.NoError(t, err)

	_, err = v.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	// beyond the 60s leeway
	j := &JWTer{Secret: []byte("secret"), Issuer: "conectar", TTL: -2 * time.Minute}

	tok, err := j.Issue(1, "a@x.com", "user")
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsTampering(t *testing.T) {
	j := &JWTer{Secret: []byte("secret"), Issuer: "conectar", TTL: time.Hour}
	tok, err := j.Issue(1, "a@x.com", "user")
	require.NoError(t, err)

	_, err = j.Parse(tok + "x")
	assert.Error(t, err)
}
