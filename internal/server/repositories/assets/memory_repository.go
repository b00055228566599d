package assets

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// MemoryRepository keeps assets in process memory, one map per collection.
type MemoryRepository struct {
	mu          sync.RWMutex
	collections map[string]map[string]*models.Asset
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{collections: make(map[string]map[string]*models.Asset)}
}

// clone copies the mutable parts of an asset so callers never alias stored state.
func clone(a *models.Asset) *models.Asset {
	out := *a
	out.Headers = slices.Clone(a.Headers)
	out.Delegates = slices.Clone(a.Delegates)
	out.Encodings = maps.Clone(a.Encodings)
	return &out
}

func (r *MemoryRepository) Get(_ context.Context, collection, fullPath string) (*models.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.collections[collection][fullPath]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(a), nil
}

func (r *MemoryRepository) Upsert(_ context.Context, a *models.Asset, prevVersion uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[a.Key.Collection]
	if !ok {
		c = make(map[string]*models.Asset)
		r.collections[a.Key.Collection] = c
	}
	cur, exists := c[a.Key.FullPath]
	if (!exists && prevVersion != 0) || (exists && cur.Version != prevVersion) {
		return common.ErrVersionConflict
	}
	c[a.Key.FullPath] = clone(a)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, collection, fullPath string, version uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.collections[collection][fullPath]
	if !ok || cur.Version != version {
		return common.ErrVersionConflict
	}
	delete(r.collections[collection], fullPath)
	return nil
}

func (r *MemoryRepository) ListByCollection(_ context.Context, collection string) ([]*models.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sorted(r.collections[collection]), nil
}

func (r *MemoryRepository) CountByOwner(_ context.Context, collection, owner string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.collections[collection] {
		if a.Key.Owner == owner {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) All(_ context.Context) ([]*models.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := slices.Sorted(maps.Keys(r.collections))
	var result []*models.Asset
	for _, name := range names {
		result = append(result, sorted(r.collections[name])...)
	}
	return result, nil
}

func sorted(c map[string]*models.Asset) []*models.Asset {
	result := make([]*models.Asset, 0, len(c))
	for _, a := range c {
		result = append(result, clone(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key.FullPath < result[j].Key.FullPath })
	return result
}
