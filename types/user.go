package types

// User represents an account in the commerce backend.
type User struct {
	// ID is the store-assigned identifier of the user. It is zero until
	// the user has been persisted.
	ID int `json:"id" db:"id"`

	// Email is the unique address the user logs in with.
	Email string `json:"email" db:"email"`

	// FullName is the user's full name. Unique across all users.
	FullName string `json:"full_name" db:"full_name"`

	// IsActive reports whether the account is enabled.
	IsActive bool `json:"is_active" db:"is_active"`

	// Password is the stored credential. It is compared verbatim on
	// login and is never exposed in API responses.
	Password string `json:"-" db:"password"`

	// Roles are the roles attached to this user, ordered by title.
	Roles []Role `json:"roles,omitempty"`
}

// Role is an authorization label attached to users, e.g. "admin" or
// "customer". Roles are seeded out of band; signup only attaches them.
type Role struct {
	// ID is the store-assigned identifier of the role.
	ID int `json:"id" db:"id"`

	// Title is the unique name of the role.
	Title string `json:"title" db:"title"`
}

// RoleTitles returns the titles of the user's roles, ordered by title.
// It never returns nil so the empty case serializes as [].
func (u User) RoleTitles() []string {
	titles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		titles = append(titles, role.Title)
	}
	return titles
}
