package assets

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	a := sampleAsset()
	require.NoError(t, repo.Upsert(ctx, a, 0))

	got, err := repo.Get(ctx, "#dapp", "/index.html")
	require.NoError(t, err)
	got.Headers[0].Value = "changed"
	delete(got.Encodings, models.EncodingIdentity)

	again, err := repo.Get(ctx, "#dapp", "/index.html")
	require.NoError(t, err)
	assert.Equal(t, "no-cache", again.Headers[0].Value)
	assert.Contains(t, again.Encodings, models.EncodingIdentity)
}

func TestMemoryRepository_Versioning(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	a := sampleAsset()
	require.NoError(t, repo.Upsert(ctx, a, 0))
	require.ErrorIs(t, repo.Upsert(ctx, a, 0), common.ErrVersionConflict)

	a.Version = 2
	require.NoError(t, repo.Upsert(ctx, a, 1))
	require.ErrorIs(t, repo.Delete(ctx, "#dapp", "/index.html", 1), common.ErrVersionConflict)
	require.NoError(t, repo.Delete(ctx, "#dapp", "/index.html", 2))

	list, err := repo.ListByCollection(ctx, "#dapp")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryRepository_AllAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for _, p := range []struct{ coll, path, owner string }{
		{"b", "/z", "alice"}, {"a", "/y", "alice"}, {"b", "/x", "bob"},
	} {
		a := sampleAsset()
		a.Key.Collection, a.Key.FullPath, a.Key.Owner = p.coll, p.path, p.owner
		require.NoError(t, repo.Upsert(ctx, a, 0))
	}

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/y", all[0].Key.FullPath)
	assert.Equal(t, "/x", all[1].Key.FullPath)

	n, err := repo.CountByOwner(ctx, "b", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
