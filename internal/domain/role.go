package domain

// User roles carried in JWT claims.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// CanModerateReviews reports whether a role may delete reviews it does
// not own. Moderators share the admin override for review deletion but
// have no catalog-management rights.
func CanModerateReviews(role string) bool {
	return role == RoleAdmin || role == RoleModerator
}
