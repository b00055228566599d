package docs

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// MemoryRepository keeps documents in process memory, one map per collection.
type MemoryRepository struct {
	mu          sync.RWMutex
	collections map[string]map[string]models.Doc
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{collections: make(map[string]map[string]models.Doc)}
}

func (r *MemoryRepository) Get(_ context.Context, collection, key string) (*models.Doc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.collections[collection][key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &d, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, doc *models.Doc, prevVersion uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[doc.Collection]
	if !ok {
		c = make(map[string]models.Doc)
		r.collections[doc.Collection] = c
	}
	cur, exists := c[doc.Key]
	if (!exists && prevVersion != 0) || (exists && cur.Version != prevVersion) {
		return common.ErrVersionConflict
	}
	c[doc.Key] = *doc
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, collection, key string, version uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.collections[collection][key]
	if !ok || cur.Version != version {
		return common.ErrVersionConflict
	}
	delete(r.collections[collection], key)
	return nil
}

func (r *MemoryRepository) ListByCollection(_ context.Context, collection string) ([]*models.Doc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sorted(r.collections[collection]), nil
}

func (r *MemoryRepository) CountByOwner(_ context.Context, collection, owner string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, d := range r.collections[collection] {
		if d.Owner == owner {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) All(_ context.Context) ([]*models.Doc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	var result []*models.Doc
	for _, name := range names {
		result = append(result, sorted(r.collections[name])...)
	}
	return result, nil
}

func sorted(c map[string]models.Doc) []*models.Doc {
	result := make([]*models.Doc, 0, len(c))
	for _, d := range c {
		d := d
		result = append(result, &d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}
