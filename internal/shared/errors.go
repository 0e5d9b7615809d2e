package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates the request carries no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidClaims indicates an identity token that failed verification.
	ErrInvalidClaims = errors.New("invalid identity claims")
)
