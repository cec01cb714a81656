package domain

// User is a member of the community directory. Username is the key and never
// changes after creation.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// UserUpdate carries the mutable fields of a User. An empty Password keeps
// the stored secret.
type UserUpdate struct {
	Name     string
	Role     string
	Password string
}

// Identity is the caller bound to a session.
type Identity struct {
	Username string
	Role     string
}

// Privileged reports whether the identity's role is administrative.
func (i Identity) Privileged() bool {
	return IsPrivileged(i.Role)
}
