package authz

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Matrix maps roles to their stored permission sets. A Matrix is always
// read and replaced as a whole; callers never see a partially applied
// update.
type Matrix map[Role][]Permission

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for role, perms := range m {
		cp := make([]Permission, len(perms))
		copy(cp, perms)
		out[role] = cp
	}
	return out
}

// StoreRepository persists the role-permission override matrix.
type StoreRepository interface {
	LoadMatrix(ctx context.Context) (Matrix, error)
	ReplaceMatrix(ctx context.Context, m Matrix) error
}

const (
	matrixCacheKey = "authz:matrix"
	matrixGenKey   = "authz:matrix:gen"
)

// Store is the mutable role-permission override consulted before the
// registry defaults. Snapshot reads are collapsed through singleflight
// and cached in redis for a short TTL under a generation-versioned key;
// Replace rewrites the whole non-Admin matrix in one transaction and
// bumps the generation, so a load already in flight can only write the
// superseded key and never resurrects the pre-replace matrix.
type Store struct {
	repo     StoreRepository
	registry *Registry
	cache    *redis.Client
	cacheTTL time.Duration
	group    singleflight.Group
}

// NewStore constructs a Store. cache may be nil.
func NewStore(repo StoreRepository, registry *Registry, cache *redis.Client, cacheTTL time.Duration) *Store {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Store{repo: repo, registry: registry, cache: cache, cacheTTL: cacheTTL}
}

// versionedCacheKey derives the cache key for the current generation.
// A missing or unreadable counter falls back to generation zero.
func (s *Store) versionedCacheKey(ctx context.Context) string {
	gen, err := s.cache.Get(ctx, matrixGenKey).Result()
	if err != nil {
		gen = "0"
	}
	return matrixCacheKey + ":" + gen
}

// Snapshot returns a consistent view of the stored matrix.
func (s *Store) Snapshot(ctx context.Context) (Matrix, error) {
	cacheKey := matrixCacheKey
	if s.cache != nil {
		cacheKey = s.versionedCacheKey(ctx)
		if data, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached map[string][]Permission
			if err := json.Unmarshal(data, &cached); err == nil {
				m := make(Matrix, len(cached))
				for role, perms := range cached {
					m[Role(role)] = perms
				}
				return m, nil
			}
		}
	}

	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		m, err := s.repo.LoadMatrix(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			flat := make(map[string][]Permission, len(m))
			for role, perms := range m {
				flat[string(role)] = perms
			}
			if data, err := json.Marshal(flat); err == nil {
				_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL).Err()
			}
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Matrix).Clone(), nil
}

// StoredPermissionsFor returns the stored override for a role and
// whether one exists.
func (s *Store) StoredPermissionsFor(ctx context.Context, role Role) ([]Permission, bool, error) {
	m, err := s.Snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	perms, ok := m[role]
	return perms, ok, nil
}

// Effective returns the full matrix every role resolves to: the stored
// override where present, the registry baseline otherwise, and the
// immutable full catalog for Admin.
func (s *Store) Effective(ctx context.Context) (Matrix, error) {
	stored, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make(Matrix, len(AllRoles()))
	for _, role := range AllRoles() {
		if role == RoleAdmin {
			out[role] = s.registry.DefaultsFor(role)
			continue
		}
		if perms, ok := stored[role]; ok {
			out[role] = perms
			continue
		}
		out[role] = s.registry.DefaultsFor(role)
	}
	return out, nil
}

// Replace swaps the stored non-Admin matrix for the submitted one.
// Submitted names outside the catalog are dropped, never stored; an
// Admin entry in the submission is ignored entirely. The replacement is
// a single transaction: readers observe either the old matrix or the
// new one, never a mix.
func (s *Store) Replace(ctx context.Context, submitted Matrix) error {
	filtered := make(Matrix, len(submitted))
	for role, perms := range submitted {
		if role == RoleAdmin {
			continue
		}
		kept := make([]Permission, 0, len(perms))
		seen := make(map[Permission]struct{}, len(perms))
		for _, perm := range perms {
			if !s.registry.Has(perm) {
				continue
			}
			if _, dup := seen[perm]; dup {
				continue
			}
			seen[perm] = struct{}{}
			kept = append(kept, perm)
		}
		sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })
		filtered[role] = kept
	}

	if err := s.repo.ReplaceMatrix(ctx, filtered); err != nil {
		return err
	}
	if s.cache != nil {
		// Bump the generation before dropping the old entry: readers
		// resolve the key through the counter, so an in-flight loader
		// writing after this point only populates the superseded key.
		stale := s.versionedCacheKey(ctx)
		_ = s.cache.Incr(ctx, matrixGenKey).Err()
		_ = s.cache.Del(ctx, stale).Err()
	}
	return nil
}
