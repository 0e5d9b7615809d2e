package teams

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service handles team business logic: membership graph resolution and
// the tool-access grant/revoke transitions.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListTeams returns all teams.
func (s *Service) ListTeams(ctx context.Context) ([]Team, error) {
	return s.repo.ListTeams(ctx)
}

// Reports resolves the user ids whose membership chain leads, directly
// or transitively, to one of the lead's own memberships. The lead is
// never their own report. A cycle in the chain is reported as
// ErrMembershipCycle, never walked forever.
func (s *Service) Reports(ctx context.Context, leadUserID string) (map[string]struct{}, error) {
	memberships, err := s.repo.ListMemberships(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Membership, len(memberships))
	leadMemberships := make(map[string]struct{})
	for _, m := range memberships {
		byID[m.ID] = m
		if m.UserID == leadUserID {
			leadMemberships[m.ID] = struct{}{}
		}
	}

	reports := make(map[string]struct{})
	for _, m := range memberships {
		if m.UserID == leadUserID {
			continue
		}
		leads, err := chainReaches(m, byID, leadMemberships)
		if err != nil {
			return nil, err
		}
		if leads {
			reports[m.UserID] = struct{}{}
		}
	}
	return reports, nil
}

func chainReaches(start Membership, byID map[string]Membership, targets map[string]struct{}) (bool, error) {
	visited := map[string]struct{}{start.ID: {}}
	current := start
	for current.ReportsToMemberID != nil {
		nextID := *current.ReportsToMemberID
		if _, seen := visited[nextID]; seen {
			return false, ErrMembershipCycle
		}
		if _, ok := targets[nextID]; ok {
			return true, nil
		}
		next, ok := byID[nextID]
		if !ok {
			// Dangling manager reference: chain ends here.
			return false, nil
		}
		visited[nextID] = struct{}{}
		current = next
	}
	return false, nil
}

// ListToolAccess returns the tool access records for a team.
func (s *Service) ListToolAccess(ctx context.Context, teamID string) ([]ToolAccess, error) {
	return s.repo.ListToolAccess(ctx, teamID)
}

// GrantTool grants a team access to a tool. Fails with ErrAccessExists
// when the pair is already granted.
func (s *Service) GrantTool(ctx context.Context, teamID, toolID string) (ToolAccess, error) {
	teamID = strings.TrimSpace(teamID)
	toolID = strings.TrimSpace(toolID)
	if teamID == "" || toolID == "" {
		return ToolAccess{}, errors.New("teams: teamId and toolId are required")
	}
	access := ToolAccess{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		ToolID:    toolID,
		GrantedAt: s.now(),
	}
	if err := s.repo.InsertToolAccess(ctx, access); err != nil {
		return ToolAccess{}, err
	}
	return access, nil
}

// RevokeTool removes every access record for the pair. Fails with
// ErrAccessNotFound when none exists.
func (s *Service) RevokeTool(ctx context.Context, teamID, toolID string) error {
	removed, err := s.repo.DeleteToolAccess(ctx, teamID, toolID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrAccessNotFound
	}
	return nil
}
