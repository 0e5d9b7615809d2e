package teams

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryTeamRepo struct {
	teams       []Team
	memberships []Membership
	access      []ToolAccess
}

func (r *memoryTeamRepo) ListTeams(ctx context.Context) ([]Team, error) {
	return append([]Team(nil), r.teams...), nil
}

func (r *memoryTeamRepo) ListMemberships(ctx context.Context) ([]Membership, error) {
	return append([]Membership(nil), r.memberships...), nil
}

func (r *memoryTeamRepo) ListToolAccess(ctx context.Context, teamID string) ([]ToolAccess, error) {
	var out []ToolAccess
	for _, a := range r.access {
		if a.TeamID == teamID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryTeamRepo) InsertToolAccess(ctx context.Context, access ToolAccess) error {
	for _, existing := range r.access {
		if existing.TeamID == access.TeamID && existing.ToolID == access.ToolID {
			return ErrAccessExists
		}
	}
	r.access = append(r.access, access)
	return nil
}

func (r *memoryTeamRepo) DeleteToolAccess(ctx context.Context, teamID, toolID string) (int64, error) {
	var kept []ToolAccess
	var removed int64
	for _, a := range r.access {
		if a.TeamID == teamID && a.ToolID == toolID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	r.access = kept
	return removed, nil
}

func strptr(s string) *string { return &s }

func TestReportsTransitiveChain(t *testing.T) {
	repo := &memoryTeamRepo{memberships: []Membership{
		{ID: "m-lead", TeamID: "t1", UserID: "lead-1", TeamRole: "Lead"},
		{ID: "m-jane", TeamID: "t1", UserID: "jane", TeamRole: "Member", ReportsToMemberID: strptr("m-lead")},
		{ID: "m-kiran", TeamID: "t1", UserID: "kiran", TeamRole: "Member", ReportsToMemberID: strptr("m-jane")},
		{ID: "m-other", TeamID: "t2", UserID: "other", TeamRole: "Member"},
	}}
	service := NewService(repo)

	reports, err := service.Reports(context.Background(), "lead-1")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.Contains(t, reports, "jane")
	require.Contains(t, reports, "kiran")
	require.NotContains(t, reports, "lead-1")
	require.NotContains(t, reports, "other")
}

func TestReportsDanglingManagerEndsChain(t *testing.T) {
	repo := &memoryTeamRepo{memberships: []Membership{
		{ID: "m-lead", TeamID: "t1", UserID: "lead-1", TeamRole: "Lead"},
		{ID: "m-orphan", TeamID: "t1", UserID: "orphan", TeamRole: "Member", ReportsToMemberID: strptr("m-gone")},
	}}
	service := NewService(repo)

	reports, err := service.Reports(context.Background(), "lead-1")
	require.NoError(t, err)
	require.Empty(t, reports)
}

func TestReportsCycleDetected(t *testing.T) {
	repo := &memoryTeamRepo{memberships: []Membership{
		{ID: "m-lead", TeamID: "t1", UserID: "lead-1", TeamRole: "Lead"},
		{ID: "m-a", TeamID: "t1", UserID: "a", TeamRole: "Member", ReportsToMemberID: strptr("m-b")},
		{ID: "m-b", TeamID: "t1", UserID: "b", TeamRole: "Member", ReportsToMemberID: strptr("m-a")},
	}}
	service := NewService(repo)

	_, err := service.Reports(context.Background(), "lead-1")
	require.ErrorIs(t, err, ErrMembershipCycle)
}

func TestGrantToolConflict(t *testing.T) {
	repo := &memoryTeamRepo{}
	service := NewService(repo)

	granted, err := service.GrantTool(context.Background(), "t1", "tool-crm")
	require.NoError(t, err)
	require.NotEmpty(t, granted.ID)

	_, err = service.GrantTool(context.Background(), "t1", "tool-crm")
	require.ErrorIs(t, err, ErrAccessExists)
}

func TestGrantToolRequiresIDs(t *testing.T) {
	service := NewService(&memoryTeamRepo{})

	_, err := service.GrantTool(context.Background(), "  ", "tool-crm")
	require.Error(t, err)
}

func TestRevokeToolRemovesAllMatching(t *testing.T) {
	repo := &memoryTeamRepo{access: []ToolAccess{
		{ID: "a1", TeamID: "t1", ToolID: "tool-crm"},
		{ID: "a2", TeamID: "t1", ToolID: "tool-crm"},
		{ID: "a3", TeamID: "t1", ToolID: "tool-chat"},
	}}
	service := NewService(repo)

	require.NoError(t, service.RevokeTool(context.Background(), "t1", "tool-crm"))
	require.Len(t, repo.access, 1)
	require.Equal(t, "tool-chat", repo.access[0].ToolID)

	err := service.RevokeTool(context.Background(), "t1", "tool-crm")
	require.ErrorIs(t, err, ErrAccessNotFound)
}
