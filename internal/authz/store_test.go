package authz

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryStoreRepo struct {
	matrix   Matrix
	replaced int
}

func (r *memoryStoreRepo) LoadMatrix(ctx context.Context) (Matrix, error) {
	return r.matrix.Clone(), nil
}

func (r *memoryStoreRepo) ReplaceMatrix(ctx context.Context, m Matrix) error {
	r.matrix = m.Clone()
	r.replaced++
	return nil
}

func newTestStore(initial Matrix) (*Store, *memoryStoreRepo) {
	repo := &memoryStoreRepo{matrix: initial}
	return NewStore(repo, NewRegistry(), nil, time.Minute), repo
}

func TestReplaceSkipsAdmin(t *testing.T) {
	store, repo := newTestStore(Matrix{})

	err := store.Replace(context.Background(), Matrix{
		RoleAdmin: {PermDashboardView},
		RoleHR:    {PermDashboardView, PermTimesheetView},
	})
	require.NoError(t, err)

	_, ok := repo.matrix[RoleAdmin]
	require.False(t, ok)
	require.ElementsMatch(t, []Permission{PermDashboardView, PermTimesheetView}, repo.matrix[RoleHR])
}

func TestReplaceDropsUnknownAndDuplicatePermissions(t *testing.T) {
	store, repo := newTestStore(Matrix{})

	err := store.Replace(context.Background(), Matrix{
		RoleEmployee: {PermTasksView, Permission("not-a-permission"), PermTasksView, PermDashboardView},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []Permission{PermDashboardView, PermTasksView}, repo.matrix[RoleEmployee])
}

func TestReplaceStoresEmptySetAsOverride(t *testing.T) {
	store, _ := newTestStore(Matrix{})

	err := store.Replace(context.Background(), Matrix{RoleBusinessDev: {}})
	require.NoError(t, err)

	perms, ok, err := store.StoredPermissionsFor(context.Background(), RoleBusinessDev)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, perms)
}

func TestEffectiveMergesOverridesAndDefaults(t *testing.T) {
	store, _ := newTestStore(Matrix{
		RoleEmployee: {PermDashboardView},
	})
	registry := NewRegistry()

	effective, err := store.Effective(context.Background())
	require.NoError(t, err)

	require.Equal(t, []Permission{PermDashboardView}, effective[RoleEmployee])
	require.Equal(t, registry.DefaultsFor(RoleHR), effective[RoleHR])
	require.Equal(t, registry.DefaultsFor(RoleAdmin), effective[RoleAdmin])
	require.Len(t, effective[RoleAdmin], len(registry.Catalog()))
}

// blockingStoreRepo captures the matrix at load time, then parks until
// released, so a replacement can land mid-load.
type blockingStoreRepo struct {
	mu      sync.Mutex
	matrix  Matrix
	loading chan struct{}
	release chan struct{}
}

func (r *blockingStoreRepo) LoadMatrix(ctx context.Context) (Matrix, error) {
	r.mu.Lock()
	m := r.matrix.Clone()
	r.mu.Unlock()
	if r.loading != nil {
		r.loading <- struct{}{}
		<-r.release
	}
	return m, nil
}

func (r *blockingStoreRepo) ReplaceMatrix(ctx context.Context, m Matrix) error {
	r.mu.Lock()
	r.matrix = m.Clone()
	r.mu.Unlock()
	return nil
}

func TestReplaceInvalidatesInFlightSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &blockingStoreRepo{
		matrix:  Matrix{RoleEmployee: {PermTasksView}},
		loading: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	store := NewStore(repo, NewRegistry(), client, time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.Snapshot(context.Background())
	}()
	<-repo.loading

	// Revoke everything for Employee while the first load is parked; the
	// loader must not re-cache the pre-replace matrix afterwards.
	require.NoError(t, store.Replace(context.Background(), Matrix{RoleEmployee: {}}))
	close(repo.release)
	<-done

	m, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	perms, ok := m[RoleEmployee]
	require.True(t, ok)
	require.Empty(t, perms)
}

func TestSnapshotReturnsCopies(t *testing.T) {
	store, _ := newTestStore(Matrix{RoleHR: {PermDashboardView}})

	first, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	first[RoleHR][0] = PermUsersManage

	second, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Permission{PermDashboardView}, second[RoleHR])
}
