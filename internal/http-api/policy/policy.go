// Package policy decides whether an actor may perform an operation on a
// resource. Roles form an ordered capability set: user < moderator < admin,
// except that role management stays admin-only.
package policy

import "reviewhub/internal/http-api/models"

// Actor is the authenticated entity behind a request. A nil *Actor is an
// anonymous caller.
type Actor struct {
	ID       string
	Username string
	Role     string
}

// Anonymous reports whether the actor is unresolved.
func (a *Actor) Anonymous() bool {
	return a == nil || a.ID == ""
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return !a.Anonymous() && a.Role == models.RoleAdmin
}

// IsModerator reports whether the actor holds the moderator role.
func (a *Actor) IsModerator() bool {
	return !a.Anonymous() && a.Role == models.RoleModerator
}

// CanManageCatalog gates genre, category and title mutation.
func CanManageCatalog(actor *Actor) bool {
	return actor.IsAdmin()
}

// CanManageUsers gates the /users administration surface. Moderators may
// moderate content but not accounts.
func CanManageUsers(actor *Actor) bool {
	return actor.IsAdmin()
}

// CanChangeRole gates mutation of the role field itself.
func CanChangeRole(actor *Actor) bool {
	return actor.IsAdmin()
}

// CanModifyContent is the object-level check for reviews and comments: the
// actor must be resolved and either own the object or hold moderator or
// admin rights. Reads are open to everyone and never reach this check.
func CanModifyContent(actor *Actor, ownerID string) bool {
	if actor.Anonymous() {
		return false
	}
	return actor.ID == ownerID || actor.IsModerator() || actor.IsAdmin()
}
