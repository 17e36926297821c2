package domain

import "time"

// Session is a decoded, verified session token.
type Session struct {
	Principal
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
