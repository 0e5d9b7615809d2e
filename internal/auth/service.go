package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/upteky/upteky-central/internal/authz"
	"github.com/upteky/upteky-central/internal/shared"
	"github.com/upteky/upteky-central/internal/users"
)

// Directory confirms that a token subject exists in the user directory.
type Directory interface {
	GetUser(ctx context.Context, id string) (users.User, error)
}

// Service performs the token-for-session exchange.
type Service struct {
	verifier  *TokenVerifier
	directory Directory
}

// NewService builds Service instance.
func NewService(verifier *TokenVerifier, directory Directory) *Service {
	return &Service{verifier: verifier, directory: directory}
}

// Exchange verifies the identity token and returns session claims. The
// role claim must name a known role and the subject must exist in the
// directory.
func (s *Service) Exchange(ctx context.Context, token string) (Claims, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return Claims{}, err
	}
	if _, err := authz.ParseRole(claims.Role); err != nil {
		return Claims{}, fmt.Errorf("%w: %s", shared.ErrInvalidClaims, claims.Role)
	}
	if _, err := s.directory.GetUser(ctx, claims.UserID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Claims{}, fmt.Errorf("%w: unknown subject", shared.ErrInvalidClaims)
		}
		return Claims{}, err
	}
	return claims, nil
}
