package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusOf(Conflict("dup")))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(Unauthorized("nope")))
	assert.Equal(t, http.StatusForbidden, StatusOf(Forbidden("no")))
	assert.Equal(t, http.StatusNotFound, StatusOf(NotFound("gone")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(Internal("boom", nil)))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}

func TestMessageHidesInternalCause(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:3306: connection refused")
	err := Internal("create user", cause)

	assert.Equal(t, "create user", MessageOf(err))
	assert.ErrorIs(t, err, cause) // cause stays reachable for logs
	assert.Equal(t, "internal error", MessageOf(errors.New("naked")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("User not found"))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "User not found", MessageOf(err))
	assert.False(t, IsConflict(err))
}
