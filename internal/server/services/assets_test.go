package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/dmitrijs2005/satellite/internal/chunkx"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/authz"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upload pushes chunks as one batch and commits it.
func upload(t *testing.T, e *env, principal string, key models.InitAssetKey, chunks ...[]byte) (*models.Asset, error) {
	t.Helper()
	ctx := context.Background()
	batch, err := e.assets.InitUpload(ctx, principal, key)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(chunks))
	for i, c := range chunks {
		id, err := e.assets.UploadChunk(ctx, principal, models.UploadChunk{BatchID: batch.ID, OrderID: uint64(i), Content: c})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return e.assets.CommitUpload(ctx, principal, models.CommitBatch{BatchID: batch.ID, ChunkIDs: ids})
}

// body reassembles an encoding from the blob store.
func body(t *testing.T, e *env, enc models.AssetEncoding) []byte {
	t.Helper()
	var out []byte
	for i, k := range enc.ContentChunks {
		b, err := e.assets.Blob(context.Background(), k)
		require.NoError(t, err)
		require.Equal(t, enc.ChunkLengths[i], uint64(len(b)))
		out = append(out, b...)
	}
	return out
}

func hostingKey(path string) models.InitAssetKey {
	return models.InitAssetKey{Collection: authz.DefaultHostingCollection, FullPath: path}
}

func TestAssetService_CommitRoundTrip(t *testing.T) {
	e := newEnv(t)
	b0, b1, b2 := []byte("hello "), []byte("wide "), []byte("world")

	a, err := upload(t, e, admin, hostingKey("/docs/index.html"), b0, b1, b2)
	require.NoError(t, err)

	want := bytes.Join([][]byte{b0, b1, b2}, nil)
	enc, ok := a.Encodings[models.EncodingIdentity]
	require.True(t, ok)
	assert.Equal(t, uint64(len(want)), enc.TotalLength)
	assert.Equal(t, sha256.Sum256(want), enc.Sha256)
	assert.Equal(t, want, body(t, e, enc))
	assert.Equal(t, "index.html", a.Key.Name)
	assert.Equal(t, admin, a.Key.Owner)
	assert.Equal(t, uint64(1), a.Version)
	assert.Zero(t, e.arena.Len(), "committed batch is discarded")
}

func TestAssetService_OutOfOrderChunks(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	batch, err := e.assets.InitUpload(ctx, admin, hostingKey("/a.txt"))
	require.NoError(t, err)

	id2, err := e.assets.UploadChunk(ctx, admin, models.UploadChunk{BatchID: batch.ID, OrderID: 2, Content: []byte("c")})
	require.NoError(t, err)
	id0, err := e.assets.UploadChunk(ctx, admin, models.UploadChunk{BatchID: batch.ID, OrderID: 0, Content: []byte("a")})
	require.NoError(t, err)
	id1, err := e.assets.UploadChunk(ctx, admin, models.UploadChunk{BatchID: batch.ID, OrderID: 1, Content: []byte("b")})
	require.NoError(t, err)

	_, err = e.assets.UploadChunk(ctx, admin, models.UploadChunk{BatchID: batch.ID, OrderID: 1, Content: []byte("dup")})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	a, err := e.assets.CommitUpload(ctx, admin, models.CommitBatch{BatchID: batch.ID, ChunkIDs: []string{id2, id0, id1}})
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), body(t, e, a.Encodings[models.EncodingIdentity]))
}

func TestAssetService_SizeLimitScenario(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.rules.SetRule(ctx, admin, models.RulesStorage, "media", models.SetRule{
		Read:    models.PermissionPublic,
		Write:   models.PermissionPrivate,
		MaxSize: ptr(uint64(2048)),
	})
	require.NoError(t, err)

	chunk := bytes.Repeat([]byte{'x'}, 1024)
	_, err = upload(t, e, alice, models.InitAssetKey{Collection: "media", FullPath: "/big.bin"}, chunk, chunk, chunk)
	require.ErrorIs(t, err, common.ErrSizeLimitExceeded)

	a, err := e.assets.Get(ctx, alice, "media", "/big.bin")
	require.NoError(t, err)
	assert.Nil(t, a, "no asset is created")
	assert.Empty(t, e.blobs.Keys(), "no blob is written")
	assert.Zero(t, e.arena.Len(), "the batch is discarded")
}

func TestAssetService_InitValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.assets.InitUpload(ctx, admin, hostingKey("no-slash"))
	require.ErrorIs(t, err, common.ErrInvalidInput)

	key := hostingKey("/x")
	key.EncodingType = "zstd"
	_, err = e.assets.InitUpload(ctx, admin, key)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	// The hosting collection is controller-write by default.
	_, err = e.assets.InitUpload(ctx, alice, hostingKey("/x"))
	require.ErrorIs(t, err, common.ErrPermissionDenied)
}

func TestAssetService_ChunkOwnership(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.rules.SetRule(ctx, admin, models.RulesStorage, "u", models.SetRule{
		Read: models.PermissionPublic, Write: models.PermissionPrivate,
	})
	require.NoError(t, err)

	batch, err := e.assets.InitUpload(ctx, alice, models.InitAssetKey{Collection: "u", FullPath: "/f"})
	require.NoError(t, err)

	_, err = e.assets.UploadChunk(ctx, bob, models.UploadChunk{BatchID: batch.ID, Content: []byte("x")})
	require.ErrorIs(t, err, common.ErrPermissionDenied)

	id, err := e.assets.UploadChunk(ctx, alice, models.UploadChunk{BatchID: batch.ID, Content: []byte("x")})
	require.NoError(t, err)

	_, err = e.assets.CommitUpload(ctx, bob, models.CommitBatch{BatchID: batch.ID, ChunkIDs: []string{id}})
	require.ErrorIs(t, err, common.ErrPermissionDenied)

	_, err = e.assets.CommitUpload(ctx, alice, models.CommitBatch{BatchID: batch.ID, ChunkIDs: []string{id}})
	require.NoError(t, err)
}

func TestAssetService_CommitReauthorizes(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.rules.SetRule(ctx, admin, models.RulesStorage, "u", models.SetRule{
		Read: models.PermissionPublic, Write: models.PermissionPrivate,
	})
	require.NoError(t, err)

	batch, err := e.assets.InitUpload(ctx, alice, models.InitAssetKey{Collection: "u", FullPath: "/f"})
	require.NoError(t, err)
	id, err := e.assets.UploadChunk(ctx, alice, models.UploadChunk{BatchID: batch.ID, Content: []byte("x")})
	require.NoError(t, err)

	_, err = e.rules.SetRule(ctx, admin, models.RulesStorage, "u", models.SetRule{
		Read: models.PermissionPublic, Write: models.PermissionControllers, Version: ptr(uint64(1)),
	})
	require.NoError(t, err)

	_, err = e.assets.CommitUpload(ctx, alice, models.CommitBatch{BatchID: batch.ID, ChunkIDs: []string{id}})
	require.ErrorIs(t, err, common.ErrPermissionDenied)
	assert.Empty(t, e.blobs.Keys())
}

func TestAssetService_ExpiredBatch(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	batch, err := e.assets.InitUpload(ctx, admin, hostingKey("/late"))
	require.NoError(t, err)

	e.clock.Advance(6 * time.Minute)

	_, err = e.assets.UploadChunk(ctx, admin, models.UploadChunk{BatchID: batch.ID, Content: []byte("x")})
	require.ErrorIs(t, err, common.ErrBatchExpired)

	_, err = e.assets.UploadChunk(ctx, admin, models.UploadChunk{BatchID: batch.ID, Content: []byte("x")})
	require.ErrorIs(t, err, common.ErrBatchNotFound)
}

func TestAssetService_ReplaceEncodingRemovesOldBlobs(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first, err := upload(t, e, admin, hostingKey("/app.js"), []byte("v1"))
	require.NoError(t, err)
	oldKeys := first.ChunkKeys()

	e.clock.Advance(time.Second)
	second, err := upload(t, e, admin, hostingKey("/app.js"), []byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Version)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	for _, k := range oldKeys {
		_, err := e.blobs.Get(ctx, k)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	}
	assert.Equal(t, []byte("v2"), body(t, e, second.Encodings[models.EncodingIdentity]))
}

func TestAssetService_KeepsOtherEncodings(t *testing.T) {
	e := newEnv(t)

	gz := hostingKey("/style.css")
	gz.EncodingType = models.EncodingGzip
	_, err := upload(t, e, admin, gz, []byte("gzipped"))
	require.NoError(t, err)

	a, err := upload(t, e, admin, hostingKey("/style.css"), []byte("plain"))
	require.NoError(t, err)
	assert.Len(t, a.Encodings, 2)
	assert.Equal(t, []byte("gzipped"), body(t, e, a.Encodings[models.EncodingGzip]))
}

func TestAssetService_GeneratesGzip(t *testing.T) {
	e := newEnv(t, func(o *AssetOptions) {
		o.GenerateGzip = true
		o.MaxChunkSize = 16
	})
	plain := bytes.Repeat([]byte("satellite "), 100)

	a, err := upload(t, e, admin, hostingKey("/index.html"), plain[:500], plain[500:])
	require.NoError(t, err)

	enc, ok := a.Encodings[models.EncodingGzip]
	require.True(t, ok)
	assert.Greater(t, len(enc.ContentChunks), 1)

	z := body(t, e, enc)
	assert.Equal(t, enc.Sha256, sha256.Sum256(z))
	got, err := chunkx.Gunzip(z)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestAssetService_ListAndCount(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	for _, p := range []string{"/b.html", "/a.html", "/img/logo.png"} {
		_, err := upload(t, e, admin, hostingKey(p), []byte(p))
		require.NoError(t, err)
	}

	res, err := e.assets.List(ctx, anon, authz.DefaultHostingCollection, models.ListParams{
		Matcher: &models.ListMatcher{KeyPrefix: "/img/"},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "/img/logo.png", res.Items[0].Key.FullPath)
	assert.Contains(t, res.Items[0].Encodings, models.EncodingIdentity)

	n, err := e.assets.Count(ctx, anon, authz.DefaultHostingCollection, models.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAssetService_DeleteAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	for _, p := range []string{"/a", "/b", "/c"} {
		_, err := upload(t, e, admin, hostingKey(p), []byte(p))
		require.NoError(t, err)
	}

	_, err := e.assets.Delete(ctx, alice, authz.DefaultHostingCollection, "/a", models.DelAsset{})
	require.ErrorIs(t, err, common.ErrPermissionDenied)

	removed, err := e.assets.Delete(ctx, admin, authz.DefaultHostingCollection, "/a", models.DelAsset{Version: ptr(uint64(1))})
	require.NoError(t, err)
	require.NotNil(t, removed)

	require.NoError(t, e.assets.DeleteMany(ctx, admin, []DelAssetItem{
		{Collection: authz.DefaultHostingCollection, FullPath: "/b"},
	}))

	_, err = e.assets.DeleteAll(ctx, alice, authz.DefaultHostingCollection)
	require.ErrorIs(t, err, common.ErrPermissionDenied)
	n, err := e.assets.DeleteAll(ctx, admin, authz.DefaultHostingCollection)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, e.blobs.Keys())
}

func TestAssetService_ReadableHidesPrivate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.rules.SetRule(ctx, admin, models.RulesStorage, "private", models.SetRule{
		Read: models.PermissionPrivate, Write: models.PermissionPrivate,
	})
	require.NoError(t, err)
	_, err = upload(t, e, alice, models.InitAssetKey{Collection: "private", FullPath: "/secret"}, []byte("s"))
	require.NoError(t, err)

	a, err := e.assets.Readable(ctx, bob, "private", "/secret")
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = e.assets.Readable(ctx, alice, "private", "/secret")
	require.NoError(t, err)
	assert.NotNil(t, a)

	_, err = e.assets.Get(ctx, bob, "private", "/secret")
	require.ErrorIs(t, err, common.ErrPermissionDenied)
}
