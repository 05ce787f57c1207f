package service

import "conectar-users/internal/domain"

// Capability names a protected operation.
type Capability int

const (
	CapCreateUser Capability = iota
	CapListUsers
	CapReadUser
	CapUpdateUser
	CapDeleteUser
	CapListInactive
)

// Identity is the authenticated caller attached to a request after the
// credential has been re-resolved against the store.
type Identity struct {
	ID    int64
	Email string
	Role  string
}

// Allow is the single authorization decision point. Admins may do
// anything; plain users may read and update their own record only.
// targetID is ignored for capabilities that have no target resource.
func Allow(cap Capability, caller Identity, targetID int64) bool {
	if caller.Role == domain.RoleAdmin {
		return true
	}
	switch cap {
	case CapReadUser, CapUpdateUser:
		return caller.ID == targetID
	default:
		return false
	}
}
