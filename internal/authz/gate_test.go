package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryMatrixSource struct {
	matrix Matrix
}

func (s *memoryMatrixSource) StoredPermissionsFor(ctx context.Context, role Role) ([]Permission, bool, error) {
	perms, ok := s.matrix[role]
	return perms, ok, nil
}

type memoryResolver struct {
	reports map[string]map[string]struct{}
}

func (r *memoryResolver) Reports(ctx context.Context, leadUserID string) (map[string]struct{}, error) {
	if set, ok := r.reports[leadUserID]; ok {
		return set, nil
	}
	return map[string]struct{}{}, nil
}

func newTestGate(matrix Matrix, reports map[string]map[string]struct{}) *Gate {
	return NewGate(NewRegistry(), &memoryMatrixSource{matrix: matrix}, &memoryResolver{reports: reports})
}

func TestAuthorizeAdminAlwaysAllowed(t *testing.T) {
	// An empty override for every other role must not touch Admin.
	gate := newTestGate(Matrix{RoleHR: {}}, nil)

	decision, err := gate.Authorize(context.Background(), Actor{UserID: "admin-1", Role: RoleAdmin}, PermPermissionsManage, nil)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestAuthorizeUnauthenticatedDenied(t *testing.T) {
	gate := newTestGate(Matrix{}, nil)

	decision, err := gate.Authorize(context.Background(), Actor{}, PermDashboardView, nil)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
}

func TestAuthorizeUnknownRoleDenied(t *testing.T) {
	gate := newTestGate(Matrix{}, nil)

	decision, err := gate.Authorize(context.Background(), Actor{UserID: "u1", Role: Role("Contractor")}, PermDashboardView, nil)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
}

func TestAuthorizeUnknownPermissionDenied(t *testing.T) {
	gate := newTestGate(Matrix{}, nil)

	decision, err := gate.Authorize(context.Background(), Actor{UserID: "u1", Role: RoleHR}, Permission("payroll:export"), nil)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
}

func TestAuthorizeDefaultsWhenNoOverride(t *testing.T) {
	gate := newTestGate(Matrix{}, nil)
	actor := Actor{UserID: "emp-1", Role: RoleEmployee}

	decision, err := gate.Authorize(context.Background(), actor, PermTasksView, nil)
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = gate.Authorize(context.Background(), actor, PermUsersManage, nil)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
}

func TestAuthorizeTicketConversionSplit(t *testing.T) {
	// Conversion is gated on tickets:manage, held by the ticket-handling
	// roles but never implied by a view permission.
	gate := newTestGate(Matrix{}, nil)

	decision, err := gate.Authorize(context.Background(), Actor{UserID: "lead-1", Role: RoleTeamLead}, PermTicketsManage, nil)
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = gate.Authorize(context.Background(), Actor{UserID: "emp-1", Role: RoleEmployee}, PermTicketsManage, nil)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
}

func TestAuthorizeStoredOverrideWins(t *testing.T) {
	// Employee default includes tasks:view; an explicit empty override
	// must remove it rather than fall back to the baseline.
	gate := newTestGate(Matrix{RoleEmployee: {}}, nil)

	decision, err := gate.Authorize(context.Background(), Actor{UserID: "emp-1", Role: RoleEmployee}, PermTasksView, nil)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
}

func TestAuthorizeSelfRequirement(t *testing.T) {
	gate := newTestGate(Matrix{}, nil)
	actor := Actor{UserID: "emp-1", Role: RoleEmployee}

	decision, err := gate.Authorize(context.Background(), actor, PermAttendanceViewOwn, Self("emp-1"))
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = gate.Authorize(context.Background(), actor, PermAttendanceViewOwn, Self("emp-2"))
	require.NoError(t, err)
	require.False(t, decision.Allowed)
}

func TestAuthorizeLeadOfRequirement(t *testing.T) {
	gate := newTestGate(Matrix{}, map[string]map[string]struct{}{
		"lead-1": {"emp-1": {}},
	})
	lead := Actor{UserID: "lead-1", Role: RoleTeamLead}

	decision, err := gate.Authorize(context.Background(), lead, PermOvertimeReview, LeadOf("emp-1"))
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = gate.Authorize(context.Background(), lead, PermOvertimeReview, LeadOf("emp-2"))
	require.NoError(t, err)
	require.False(t, decision.Allowed)

	// Never on the lead's own record, even with the permission held.
	decision, err = gate.Authorize(context.Background(), lead, PermOvertimeReview, LeadOf("lead-1"))
	require.NoError(t, err)
	require.False(t, decision.Allowed)
}
