package model

// User is the authenticated profile cached alongside the bearer token for
// the lifetime of a portal session. It mirrors the user fields of the
// upstream login response.
type User struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}
