package auth

import (
	"errors"
	"time"
)

// Claims are the verified assertions carried by an identity provider
// token. Role is the raw claim string; it is validated against the
// closed role set during the exchange.
type Claims struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

var (
	// ErrInvalidToken indicates a malformed or tampered token.
	ErrInvalidToken = errors.New("invalid identity token")
	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("identity token expired")
)
