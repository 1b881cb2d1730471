// Package auth provides the caller identity and the JWT bearer tokens that
// establish it. A nil *Caller means the request is unauthenticated.
package auth

import "github.com/commonsfund/ledger/internal/domain"

// Caller is the per-request identity. Roles are loaded once from the members
// table when the token is validated, so admin checks never hit the database.
type Caller struct {
	// CollectiveID is the id of the caller's own (user) collective.
	CollectiveID int64
	Email        string

	roles map[int64][]domain.MemberRole
}

// NewCaller builds a caller with the given role map, keyed by collective id.
func NewCaller(collectiveID int64, email string, roles map[int64][]domain.MemberRole) *Caller {
	return &Caller{CollectiveID: collectiveID, Email: email, roles: roles}
}

// IsAdmin reports whether the caller holds an admin-granting role on the
// given collective. Safe to call on a nil caller.
func (c *Caller) IsAdmin(collectiveID int64) bool {
	if c == nil {
		return false
	}
	if c.CollectiveID == collectiveID {
		return true
	}
	for _, role := range c.roles[collectiveID] {
		if role.IsAdminRole() {
			return true
		}
	}
	return false
}
