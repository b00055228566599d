package rules

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

type ruleKey struct {
	kind       models.RulesType
	collection string
}

// MemoryRepository keeps rules in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[ruleKey]models.Rule
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[ruleKey]models.Rule)}
}

func (r *MemoryRepository) Get(_ context.Context, kind models.RulesType, collection string) (*models.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.items[ruleKey{kind, collection}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rule, nil
}

func (r *MemoryRepository) List(_ context.Context, kind models.RulesType) ([]*models.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*models.Rule
	for k, v := range r.items {
		if k.kind == kind {
			rule := v
			result = append(result, &rule)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Collection < result[j].Collection })
	return result, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, rule *models.Rule, prevVersion uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := ruleKey{rule.Kind, rule.Collection}
	cur, ok := r.items[k]
	if (!ok && prevVersion != 0) || (ok && cur.Version != prevVersion) {
		return common.ErrVersionConflict
	}
	r.items[k] = *rule
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, kind models.RulesType, collection string, version uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := ruleKey{kind, collection}
	cur, ok := r.items[k]
	if !ok || cur.Version != version {
		return common.ErrVersionConflict
	}
	delete(r.items, k)
	return nil
}
