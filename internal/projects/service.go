package projects

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service handles project assignment workflows.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListAssignments returns assignments, optionally narrowed to a team.
func (s *Service) ListAssignments(ctx context.Context, teamID string) ([]Assignment, error) {
	return s.repo.ListAssignments(ctx, teamID)
}

// Assign links a team to a project. An existing link fails with
// ErrAssignmentExists.
func (s *Service) Assign(ctx context.Context, projectID, teamID string) (Assignment, error) {
	a := Assignment{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		TeamID:    teamID,
		CreatedAt: s.now(),
	}
	if err := s.repo.InsertAssignment(ctx, a); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

// Unassign removes the link between a team and a project. A pair with
// no rows fails with ErrAssignmentNotFound.
func (s *Service) Unassign(ctx context.Context, projectID, teamID string) error {
	removed, err := s.repo.DeleteAssignments(ctx, projectID, teamID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}
