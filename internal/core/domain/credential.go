package domain

import "time"

// Credential is the persisted username + password hash pair.
type Credential struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the minimal authenticated identity. It is the only data
// embedded in a session token.
type Principal struct {
	Username string `json:"username"`
}

// Principal strips the hash from a verified credential.
func (c *Credential) Principal() Principal {
	return Principal{Username: c.Username}
}

// RegistrationRequest carries a plaintext password for the duration of a
// single request only.
type RegistrationRequest struct {
	Username string
	Password string
}

// LoginRequest has the same shape as RegistrationRequest.
type LoginRequest struct {
	Username string
	Password string
}

// UpdatePasswordRequest is always scoped to the principal of the caller's
// session; it never names a user.
type UpdatePasswordRequest struct {
	OldPassword string
	NewPassword string
}
