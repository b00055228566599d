package docs

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_VersionGuards(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	d := &models.Doc{Collection: "notes", Key: "n1", Owner: "alice", Version: 1}
	require.NoError(t, repo.Upsert(ctx, d, 0))
	require.ErrorIs(t, repo.Upsert(ctx, d, 0), common.ErrVersionConflict)

	d2 := *d
	d2.Version = 2
	require.ErrorIs(t, repo.Upsert(ctx, &d2, 5), common.ErrVersionConflict)
	require.NoError(t, repo.Upsert(ctx, &d2, 1))

	got, err := repo.Get(ctx, "notes", "n1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Version)

	require.ErrorIs(t, repo.Delete(ctx, "notes", "n1", 1), common.ErrVersionConflict)
	require.NoError(t, repo.Delete(ctx, "notes", "n1", 2))
	_, err = repo.Get(ctx, "notes", "n1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ListCountAll(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for _, d := range []models.Doc{
		{Collection: "b", Key: "z", Owner: "alice", Version: 1},
		{Collection: "b", Key: "y", Owner: "bob", Version: 1},
		{Collection: "a", Key: "x", Owner: "alice", Version: 1},
	} {
		d := d
		require.NoError(t, repo.Upsert(ctx, &d, 0))
	}

	list, err := repo.ListByCollection(ctx, "b")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "y", list[0].Key)

	n, err := repo.CountByOwner(ctx, "b", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Collection)

	list[0].Owner = "mallory"
	again, err := repo.Get(ctx, "b", "y")
	require.NoError(t, err)
	assert.Equal(t, "bob", again.Owner)
}
