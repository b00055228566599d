package settings

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// MemoryRepository keeps settings in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	config  models.StorageConfig
	domains map[string]models.CustomDomain
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{domains: make(map[string]models.CustomDomain)}
}

func (r *MemoryRepository) GetConfig(_ context.Context) (*models.StorageConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg := r.config
	return &cfg, nil
}

func (r *MemoryRepository) SetConfig(_ context.Context, cfg *models.StorageConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = *cfg
	return nil
}

func (r *MemoryRepository) GetCustomDomain(_ context.Context, domain string) (*models.CustomDomain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.domains[domain]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &d, nil
}

func (r *MemoryRepository) ListCustomDomains(_ context.Context) ([]*models.CustomDomain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*models.CustomDomain, 0, len(r.domains))
	for _, d := range r.domains {
		result = append(result, &d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Domain < result[j].Domain })
	return result, nil
}

func (r *MemoryRepository) SetCustomDomain(_ context.Context, d *models.CustomDomain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := *d
	if cur, ok := r.domains[d.Domain]; ok {
		next.CreatedAt = cur.CreatedAt
	}
	r.domains[d.Domain] = next
	return nil
}

func (r *MemoryRepository) DeleteCustomDomain(_ context.Context, domain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.domains[domain]; !ok {
		return common.ErrorNotFound
	}
	delete(r.domains, domain)
	return nil
}
