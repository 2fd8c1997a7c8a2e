// Package policy holds the access-control decision functions consumed by the
// HTTP layer. Decisions are pure; callers are responsible for having
// authenticated the user first.
package policy

import "github.com/campuslink/campuslink-be/internal/models"

// CanCreateGroup reports whether the user may create groups. Only seniors can.
func CanCreateGroup(u models.User) bool {
	return u.IsSenior
}

// CanPostMessage reports whether the user may post to a group. Any
// authenticated user may post; there is no membership restriction.
func CanPostMessage(u models.User) bool {
	return true
}
