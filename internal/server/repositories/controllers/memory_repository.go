package controllers

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// MemoryRepository keeps the roster in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Controller
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.Controller)}
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c.Metadata = maps.Clone(c.Metadata)
	return &c, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*models.Controller, 0, len(r.items))
	for _, c := range r.items {
		c.Metadata = maps.Clone(c.Metadata)
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, c *models.Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := *c
	if cur, ok := r.items[c.ID]; ok {
		next.CreatedAt = cur.CreatedAt
	}
	next.Metadata = maps.Clone(c.Metadata)
	r.items[c.ID] = next
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
