package rules

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Get(ctx, models.RulesDB, "notes")
	require.ErrorIs(t, err, common.ErrorNotFound)

	rule := &models.Rule{Kind: models.RulesDB, Collection: "notes", Version: 1}
	require.NoError(t, repo.Upsert(ctx, rule, 0))
	require.ErrorIs(t, repo.Upsert(ctx, rule, 0), common.ErrVersionConflict)

	next := *rule
	next.Version = 2
	next.Read = models.PermissionPublic
	require.NoError(t, repo.Upsert(ctx, &next, 1))
	require.ErrorIs(t, repo.Upsert(ctx, &next, 1), common.ErrVersionConflict)

	got, err := repo.Get(ctx, models.RulesDB, "notes")
	require.NoError(t, err)
	assert.Equal(t, models.PermissionPublic, got.Read)

	_, err = repo.Get(ctx, models.RulesStorage, "notes")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.ErrorIs(t, repo.Delete(ctx, models.RulesDB, "notes", 1), common.ErrVersionConflict)
	require.NoError(t, repo.Delete(ctx, models.RulesDB, "notes", 2))

	list, err := repo.List(ctx, models.RulesDB)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryRepository_ListSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for _, c := range []string{"b", "a", "c"} {
		require.NoError(t, repo.Upsert(ctx, &models.Rule{Kind: models.RulesStorage, Collection: c, Version: 1}, 0))
	}
	require.NoError(t, repo.Upsert(ctx, &models.Rule{Kind: models.RulesDB, Collection: "x", Version: 1}, 0))

	list, err := repo.List(ctx, models.RulesStorage)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].Collection, list[1].Collection, list[2].Collection})
}
