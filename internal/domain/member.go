package domain

import "time"

type MemberRole string

const (
	RoleAdmin       MemberRole = "ADMIN"
	RoleHost        MemberRole = "HOST"
	RoleMember      MemberRole = "MEMBER"
	RoleBacker      MemberRole = "BACKER"
	RoleContributor MemberRole = "CONTRIBUTOR"
)

// Member links a member collective (usually a user) to a collective with a
// role. Admin checks resolve through this table.
type Member struct {
	ID                 int64      `json:"id"`
	CollectiveID       int64      `json:"CollectiveId"`
	MemberCollectiveID int64      `json:"MemberCollectiveId"`
	Role               MemberRole `json:"role"`
	Description        string     `json:"description,omitempty"`
	Since              time.Time  `json:"since"`
}

// IsAdminRole reports whether the role grants admin rights on the collective.
func (r MemberRole) IsAdminRole() bool {
	return r == RoleAdmin || r == RoleHost
}
