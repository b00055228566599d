package uploads

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newArena(t *testing.T) (*Arena, *testclock.Clock) {
	t.Helper()
	clk := testclock.NewClock(epoch)
	return NewArena(clk, 5*time.Minute, 16, logging.Nop{}), clk
}

var key = models.InitAssetKey{Collection: "#dapp", FullPath: "/app.js", Name: "app.js", EncodingType: models.EncodingIdentity}

func TestCreate_SetsExpiry(t *testing.T) {
	a, _ := newArena(t)

	b := a.Create(key, "alice")
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "alice", b.Owner)
	assert.Equal(t, epoch.Add(5*time.Minute), b.ExpiresAt)
	assert.Equal(t, 1, a.Len())
}

func TestAppend_CollectOrdersByIndex(t *testing.T) {
	a, _ := newArena(t)
	b := a.Create(key, "alice")

	id2, err := a.Append("alice", false, models.UploadChunk{BatchID: b.ID, OrderID: 2, Content: []byte("c")})
	require.NoError(t, err)
	id0, err := a.Append("alice", false, models.UploadChunk{BatchID: b.ID, OrderID: 0, Content: []byte("a")})
	require.NoError(t, err)
	id1, err := a.Append("ctrl", true, models.UploadChunk{BatchID: b.ID, OrderID: 1, Content: []byte("b")})
	require.NoError(t, err)

	got, chunks, err := a.Collect(b.ID, []string{id2, id0, id1})
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	require.Len(t, chunks, 3)
	assert.Equal(t, []byte("a"), chunks[0].Content)
	assert.Equal(t, []byte("b"), chunks[1].Content)
	assert.Equal(t, []byte("c"), chunks[2].Content)
}

func TestAppend_Rejections(t *testing.T) {
	a, _ := newArena(t)
	b := a.Create(key, "alice")

	_, err := a.Append("alice", false, models.UploadChunk{BatchID: b.ID, OrderID: 0, Content: []byte("x")})
	require.NoError(t, err)

	_, err = a.Append("alice", false, models.UploadChunk{BatchID: b.ID, OrderID: 0, Content: []byte("y")})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = a.Append("bob", false, models.UploadChunk{BatchID: b.ID, OrderID: 1, Content: []byte("y")})
	require.ErrorIs(t, err, common.ErrPermissionDenied)

	_, err = a.Append("alice", false, models.UploadChunk{BatchID: b.ID, OrderID: 1, Content: make([]byte, 17)})
	require.ErrorIs(t, err, common.ErrSizeLimitExceeded)

	_, err = a.Append("alice", false, models.UploadChunk{BatchID: "missing", OrderID: 1})
	require.ErrorIs(t, err, common.ErrBatchNotFound)
}

func TestCollect_Validation(t *testing.T) {
	a, _ := newArena(t)
	b1 := a.Create(key, "alice")
	b2 := a.Create(key, "alice")

	c1, err := a.Append("alice", false, models.UploadChunk{BatchID: b1.ID, OrderID: 0, Content: []byte("1")})
	require.NoError(t, err)
	c2, err := a.Append("alice", false, models.UploadChunk{BatchID: b2.ID, OrderID: 0, Content: []byte("2")})
	require.NoError(t, err)

	_, _, err = a.Collect(b1.ID, []string{c1, c2})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = a.Collect(b1.ID, []string{c1, c1})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = a.Collect(b1.ID, nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	a.Discard(b1.ID)
	_, _, err = a.Collect(b1.ID, []string{c1})
	require.ErrorIs(t, err, common.ErrBatchNotFound)
	assert.Equal(t, 1, a.Len())
}

func TestExpiredBatch_RejectedAndDropped(t *testing.T) {
	a, clk := newArena(t)
	b := a.Create(key, "alice")

	clk.Advance(5 * time.Minute)

	_, err := a.Append("alice", false, models.UploadChunk{BatchID: b.ID, OrderID: 0, Content: []byte("x")})
	require.ErrorIs(t, err, common.ErrBatchExpired)
	assert.Equal(t, 0, a.Len())

	_, err = a.Get(b.ID)
	require.ErrorIs(t, err, common.ErrBatchNotFound)
}

func TestReap(t *testing.T) {
	a, clk := newArena(t)
	var reaped int32
	a.OnReap(func(n int) { atomic.AddInt32(&reaped, int32(n)) })

	old := a.Create(key, "alice")
	_, err := a.Append("alice", false, models.UploadChunk{BatchID: old.ID, OrderID: 0, Content: []byte("x")})
	require.NoError(t, err)

	clk.Advance(3 * time.Minute)
	fresh := a.Create(key, "alice")
	clk.Advance(3 * time.Minute)

	assert.Equal(t, 1, a.Reap())
	assert.Equal(t, int32(1), atomic.LoadInt32(&reaped))
	_, err = a.Get(fresh.ID)
	require.NoError(t, err)
	assert.Empty(t, a.chunks)
}

func TestRun_SweepsOnInterval(t *testing.T) {
	a, clk := newArena(t)
	a.Create(key, "alice")
	clk.Advance(10 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, time.Minute) }()

	require.NoError(t, clk.WaitAdvance(time.Minute, time.Second, 1))
	assert.Eventually(t, func() bool { return a.Len() == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
