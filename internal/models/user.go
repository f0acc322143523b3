package models

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	IsPublic     bool
	IsActive     bool
	IsSuperuser  bool
	RegisteredAt time.Time
}

// RefreshSession is one outstanding refresh credential. The opaque token
// itself is never stored, only its SHA-256 hash.
type RefreshSession struct {
	ID        string
	UserID    string
	TokenHash []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}
