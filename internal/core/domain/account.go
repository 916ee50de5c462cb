package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus represents the state of a trading account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
)

// Role is the authorization level of an actor.
type Role string

const (
	RoleUser   Role = "USER"
	RoleAdmin  Role = "ADMIN"
	RoleMaster Role = "MASTER"
	RoleSystem Role = "SYSTEM"
)

// Account is the owner of a wallet and its contracts.
type Account struct {
	ID        uuid.UUID     `json:"id"`
	Email     string        `json:"email"`
	Role      Role          `json:"role"`
	Status    AccountStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsFrozen returns true if AML has frozen the account.
func (a *Account) IsFrozen() bool {
	return a.Status == AccountStatusFrozen
}

// Actor identifies who performed an audited action.
// The zero Actor is the system itself.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// SystemActor is used for scheduler, sweep and AML driven actions.
var SystemActor = Actor{Role: RoleSystem}

// IsSystem returns true for system-driven actions.
func (a Actor) IsSystem() bool {
	return a.ID == uuid.Nil
}

// IsAdmin returns true for ADMIN and MASTER.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleMaster
}
