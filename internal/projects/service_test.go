package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryAssignmentRepo struct {
	assignments []Assignment
}

func (r *memoryAssignmentRepo) ListAssignments(ctx context.Context, teamID string) ([]Assignment, error) {
	var out []Assignment
	for _, a := range r.assignments {
		if teamID == "" || a.TeamID == teamID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryAssignmentRepo) InsertAssignment(ctx context.Context, a Assignment) error {
	for _, existing := range r.assignments {
		if existing.ProjectID == a.ProjectID && existing.TeamID == a.TeamID {
			return ErrAssignmentExists
		}
	}
	r.assignments = append(r.assignments, a)
	return nil
}

func (r *memoryAssignmentRepo) DeleteAssignments(ctx context.Context, projectID, teamID string) (int64, error) {
	var kept []Assignment
	var removed int64
	for _, a := range r.assignments {
		if a.ProjectID == projectID && a.TeamID == teamID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	r.assignments = kept
	return removed, nil
}

func TestAssignConflict(t *testing.T) {
	repo := &memoryAssignmentRepo{}
	service := NewService(repo)

	created, err := service.Assign(context.Background(), "proj-1", "team-1")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = service.Assign(context.Background(), "proj-1", "team-1")
	require.ErrorIs(t, err, ErrAssignmentExists)
	require.Len(t, repo.assignments, 1)
}

func TestUnassignRemovesAllMatching(t *testing.T) {
	repo := &memoryAssignmentRepo{assignments: []Assignment{
		{ID: "a1", ProjectID: "proj-1", TeamID: "team-1"},
		{ID: "a2", ProjectID: "proj-1", TeamID: "team-1"},
		{ID: "a3", ProjectID: "proj-2", TeamID: "team-1"},
	}}
	service := NewService(repo)

	require.NoError(t, service.Unassign(context.Background(), "proj-1", "team-1"))
	require.Len(t, repo.assignments, 1)
	require.Equal(t, "proj-2", repo.assignments[0].ProjectID)
}

func TestUnassignMissingPair(t *testing.T) {
	service := NewService(&memoryAssignmentRepo{})

	err := service.Unassign(context.Background(), "proj-1", "team-1")
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestListAssignmentsFiltersByTeam(t *testing.T) {
	repo := &memoryAssignmentRepo{assignments: []Assignment{
		{ID: "a1", ProjectID: "proj-1", TeamID: "team-1"},
		{ID: "a2", ProjectID: "proj-1", TeamID: "team-2"},
	}}
	service := NewService(repo)

	all, err := service.ListAssignments(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	scoped, err := service.ListAssignments(context.Background(), "team-2")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, "a2", scoped[0].ID)
}
