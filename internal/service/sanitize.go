package service

import (
	"github.com/microcosm-cc/bluemonday"

	"conectar-users/internal/domain"
)

// strict policy: no tags, no attributes, matching what a rendering
// client should ever see in name/email.
var stripPolicy = bluemonday.StrictPolicy()

func stripMarkup(s string) string { return stripPolicy.Sanitize(s) }

// sanitizeUser returns a copy safe to leave the service boundary or to
// sit in the list cache. The password hash is excluded from any outward
// serialization by the entity's json tag, not here.
func sanitizeUser(u domain.User) domain.User {
	u.Name = stripMarkup(u.Name)
	u.Email = stripMarkup(u.Email)
	return u
}

func sanitizeUsers(users []domain.User) []domain.User {
	out := make([]domain.User, len(users))
	for i, u := range users {
		out[i] = sanitizeUser(u)
	}
	return out
}
