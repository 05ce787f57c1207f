package event

import "conectar-users/internal/domain"

// InactiveUsers is the payload published on TopicUsersInactive. It
// carries the full batch so listeners need no follow-up query.
type InactiveUsers struct {
	Users []domain.User `json:"users"`
}
