package models

// Role describes a member's privileges inside a group.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManage reports whether the role may add members or delete group data.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Member is one user's membership in a group.
type Member struct {
	// UserID references the member's User.
	UserID string

	// Role controls what the member may do within the group.
	Role Role
}

// Group represents a set of users who share expenses in a single currency.
// Every expense and settlement recorded against the group uses the group's
// currency; the engine never mixes currencies in one aggregation.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Currency is the ISO 4217 code all amounts in this group are
	// denominated in (e.g., "USD", "EUR").
	Currency string

	// Members is the list of group members with their roles.
	Members []Member

	// CreatedBy is the user ID of the group creator (initial owner).
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// MemberRole returns the role of userID inside the group, or "" if the user
// is not a member.
func (g *Group) MemberRole(userID string) Role {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID string) bool {
	return g.MemberRole(userID) != ""
}
