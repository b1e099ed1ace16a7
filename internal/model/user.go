package model

import "time"

// Role is one of the three account roles.  The value is stored verbatim
// in users.role and carried in the access token's "role" claim.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBarber   Role = "barber"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleBarber, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user record as stored in the
// `users` table.  PasswordHash never leaves the repository and service
// layers; handlers respond with Profile instead.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – unique display/user name.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – customer, barber or admin.
//	Phone        – unique phone number.
type User struct {
	ID           uint64 // users.id
	Name         string // users.name
	Email        string // users.email
	PasswordHash string // users.password
	Role         Role   // users.role
	Phone        string // users.phone
}

// Profile is the public view of a User.  It is what register, /me and
// the profile update return.
type Profile struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Phone string `json:"phone"`
}

// Profile strips the password hash from u.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Phone: u.Phone}
}

// RefreshToken models an entry in the `refresh_tokens` table.  The raw
// token is handed to the client; only its SHA‑256 hash is stored.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token (cascade-deleted with the user).
//	TokenHash – SHA‑256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
