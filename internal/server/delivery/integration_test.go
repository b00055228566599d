package delivery

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/satellite/internal/chunkx"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/authz"
	"github.com/dmitrijs2005/satellite/internal/server/blobstore"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/satellite/internal/server/services"
	"github.com/dmitrijs2005/satellite/internal/server/uploads"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	assets   *services.AssetService
	delivery *Service
}

func newStack(t *testing.T) *stack {
	t.Helper()
	clk := testclock.NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := &services.Store{
		Tx:     dbx.NewMutexTransactor(),
		Repos:  repomanager.NewMemoryRepositoryManager(),
		Clock:  clk,
		Logger: logging.Nop{},
	}
	require.NoError(t, services.NewControllerService(store).Bootstrap(context.Background(), []string{"admin"}))

	arena := uploads.NewArena(clk, time.Minute, 64, logging.Nop{})
	assets := services.NewAssetService(store, arena, blobstore.NewMemoryStore(), nil,
		services.AssetOptions{MaxChunkSize: 8, GenerateGzip: true})
	d := NewService(assets, services.NewSettingsService(store), NewSealer([]byte("k")), nil, logging.Nop{})
	return &stack{assets: assets, delivery: d}
}

func (s *stack) upload(t *testing.T, fullPath string, content []byte) {
	t.Helper()
	blocks, err := chunkx.SplitBytes(content, 8)
	require.NoError(t, err)
	s.uploadBlocks(t, fullPath, blocks...)
}

// uploadBlocks commits the identity encoding of fullPath with the given
// chunk boundaries.
func (s *stack) uploadBlocks(t *testing.T, fullPath string, blocks ...[]byte) {
	t.Helper()
	ctx := context.Background()

	batch, err := s.assets.InitUpload(ctx, "admin", models.InitAssetKey{Collection: authz.DefaultHostingCollection, FullPath: fullPath})
	require.NoError(t, err)
	var ids []string
	for i, b := range blocks {
		id, err := s.assets.UploadChunk(ctx, "admin", models.UploadChunk{BatchID: batch.ID, OrderID: uint64(i), Content: b})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err = s.assets.CommitUpload(ctx, "admin", models.CommitBatch{BatchID: batch.ID, ChunkIDs: ids})
	require.NoError(t, err)
}

func (s *stack) fetch(t *testing.T, url, acceptEncoding string) (*HTTPResponse, []byte, error) {
	t.Helper()
	ctx := context.Background()
	resp, err := s.delivery.HTTPRequest(ctx, "anonymous", HTTPRequest{
		Method:  "GET",
		URL:     url,
		Headers: []models.HeaderField{{Name: "Accept-Encoding", Value: acceptEncoding}},
	})
	require.NoError(t, err)
	body := append([]byte{}, resp.Body...)
	for tok := resp.Streaming; tok != nil; {
		next, err := s.delivery.StreamingCallback(ctx, "anonymous", *tok)
		if err != nil {
			return resp, body, err
		}
		body = append(body, next.Body...)
		tok = next.Token
	}
	return resp, body, nil
}

func TestIntegration_ServesUploadedAssetInEveryEncoding(t *testing.T) {
	st := newStack(t)
	content := bytes.Repeat([]byte("<p>satellite</p>"), 20)
	st.upload(t, "/index.html", content)

	_, plain, err := st.fetch(t, "/", "")
	require.NoError(t, err)
	assert.Equal(t, content, plain)

	resp, z, err := st.fetch(t, "/", "gzip")
	require.NoError(t, err)
	enc, _ := header(resp.Headers, "Content-Encoding")
	assert.Equal(t, "gzip", enc)
	unzipped, err := chunkx.Gunzip(z)
	require.NoError(t, err)
	assert.Equal(t, content, unzipped)
}

func TestIntegration_RecommitBreaksOpenStream(t *testing.T) {
	ctx := context.Background()
	st := newStack(t)
	st.upload(t, "/data.bin", bytes.Repeat([]byte("a"), 40))

	resp, err := st.delivery.HTTPRequest(ctx, "anonymous", HTTPRequest{Method: "GET", URL: "/data.bin"})
	require.NoError(t, err)
	require.NotNil(t, resp.Streaming)

	st.upload(t, "/data.bin", bytes.Repeat([]byte("b"), 40))

	_, err = st.delivery.StreamingCallback(ctx, "anonymous", *resp.Streaming)
	require.ErrorIs(t, err, common.ErrIntegrityMismatch)
}

func TestIntegration_RechunkedRecommitBreaksOpenStream(t *testing.T) {
	ctx := context.Background()
	st := newStack(t)
	st.uploadBlocks(t, "/data.bin", []byte("AAAAAAAA"), []byte("BBBBBBBB"))

	resp, err := st.delivery.HTTPRequest(ctx, "anonymous", HTTPRequest{Method: "GET", URL: "/data.bin"})
	require.NoError(t, err)
	require.NotNil(t, resp.Streaming)
	assert.Equal(t, []byte("AAAAAAAA"), resp.Body)

	// same bytes, same digest, different chunk boundaries
	st.uploadBlocks(t, "/data.bin", []byte("AAAA"), []byte("AAAABBBBBBBB"))

	_, err = st.delivery.StreamingCallback(ctx, "anonymous", *resp.Streaming)
	require.ErrorIs(t, err, common.ErrIntegrityMismatch)

	_, body, err := st.fetch(t, "/data.bin", "identity")
	require.NoError(t, err)
	assert.Equal(t, []byte("AAAAAAAABBBBBBBB"), body)
}
