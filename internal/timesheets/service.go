package timesheets

import (
	"context"

	"github.com/upteky/upteky-central/internal/authz"
)

// RepositoryPort defines data access methods for timesheet entries.
type RepositoryPort interface {
	ListEntries(ctx context.Context) ([]Entry, error)
}

// Service computes role-scoped timesheet listings.
type Service struct {
	repo     RepositoryPort
	resolver authz.ReportsResolver
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, resolver authz.ReportsResolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// ListVisible returns the entries the actor may read, in stored order.
func (s *Service) ListVisible(ctx context.Context, actor authz.Actor) ([]Entry, error) {
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	var reports map[string]struct{}
	if actor.Role == authz.RoleTeamLead {
		reports, err = s.resolver.Reports(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
	}

	return ScopeEntries(actor, reports, entries), nil
}
