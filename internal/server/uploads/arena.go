// Package uploads stages asset uploads between init and commit. Batches
// live only in memory and expire after a TTL.
package uploads

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

// Batch is an upload in progress.
type Batch struct {
	ID        string
	Key       models.InitAssetKey
	Owner     string
	CreatedAt time.Time
	ExpiresAt time.Time

	chunks map[uint64]*Chunk
}

// ChunkCount is the number of chunks received so far.
func (b *Batch) ChunkCount() int {
	return len(b.chunks)
}

// Chunk is one staged block of a batch.
type Chunk struct {
	ID      string
	BatchID string
	OrderID uint64
	Content []byte
}

// Arena tracks live batches and their chunks.
type Arena struct {
	mu      sync.Mutex
	clock   clock.Clock
	ttl     time.Duration
	maxSize int
	batches map[string]*Batch
	chunks  map[string]*Chunk
	logger  logging.Logger
	// onReap, when set, is told how many batches each sweep dropped.
	onReap func(n int)
}

// NewArena returns an empty arena. Chunks larger than maxChunkSize bytes
// are rejected.
func NewArena(clk clock.Clock, ttl time.Duration, maxChunkSize int, l logging.Logger) *Arena {
	return &Arena{
		clock:   clk,
		ttl:     ttl,
		maxSize: maxChunkSize,
		batches: make(map[string]*Batch),
		chunks:  make(map[string]*Chunk),
		logger:  l.With("module", "uploads"),
	}
}

// OnReap registers a callback invoked after every sweep that dropped batches.
func (a *Arena) OnReap(fn func(n int)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onReap = fn
}

// Create opens a batch for key on behalf of owner.
func (a *Arena) Create(key models.InitAssetKey, owner string) *Batch {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.clock.Now()
	b := &Batch{
		ID:        uuid.NewString(),
		Key:       key,
		Owner:     owner,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
		chunks:    make(map[uint64]*Chunk),
	}
	a.batches[b.ID] = b
	return b.snapshot()
}

// snapshot copies b without its chunks.
func (b *Batch) snapshot() *Batch {
	out := *b
	out.chunks = nil
	return &out
}

// live returns the batch or drops it when expired. Caller holds mu.
func (a *Arena) live(id string) (*Batch, error) {
	b, ok := a.batches[id]
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", id, common.ErrBatchNotFound)
	}
	if !a.clock.Now().Before(b.ExpiresAt) {
		a.drop(b)
		return nil, fmt.Errorf("batch %s: %w", id, common.ErrBatchExpired)
	}
	return b, nil
}

// drop removes b and its chunks. Caller holds mu.
func (a *Arena) drop(b *Batch) {
	for _, c := range b.chunks {
		delete(a.chunks, c.ID)
	}
	delete(a.batches, b.ID)
}

// Get returns a live batch.
func (a *Arena) Get(id string) (*Batch, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.live(id)
	if err != nil {
		return nil, err
	}
	out := b.snapshot()
	return out, nil
}

// Append stages content under orderID. Only the batch owner or a controller
// may append; an order index can be used once.
func (a *Arena) Append(caller string, controller bool, in models.UploadChunk) (string, error) {
	if len(in.Content) > a.maxSize {
		return "", fmt.Errorf("chunk of %d bytes exceeds %d: %w", len(in.Content), a.maxSize, common.ErrSizeLimitExceeded)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	b, err := a.live(in.BatchID)
	if err != nil {
		return "", err
	}
	if b.Owner != caller && !controller {
		return "", fmt.Errorf("batch %s: %w", b.ID, common.ErrPermissionDenied)
	}
	if _, dup := b.chunks[in.OrderID]; dup {
		return "", fmt.Errorf("chunk index %d already uploaded: %w", in.OrderID, common.ErrInvalidInput)
	}

	c := &Chunk{
		ID:      uuid.NewString(),
		BatchID: b.ID,
		OrderID: in.OrderID,
		Content: slices.Clone(in.Content),
	}
	b.chunks[in.OrderID] = c
	a.chunks[c.ID] = c
	return c.ID, nil
}

// Collect validates that chunkIDs all belong to batchID and returns them in
// order index order. The batch stays staged until Discard.
func (a *Arena) Collect(batchID string, chunkIDs []string) (*Batch, []*Chunk, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, err := a.live(batchID)
	if err != nil {
		return nil, nil, err
	}
	if len(chunkIDs) == 0 {
		return nil, nil, fmt.Errorf("batch %s has no chunks to commit: %w", batchID, common.ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(chunkIDs))
	out := make([]*Chunk, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if _, dup := seen[id]; dup {
			return nil, nil, fmt.Errorf("chunk %s listed twice: %w", id, common.ErrInvalidInput)
		}
		seen[id] = struct{}{}

		c, ok := a.chunks[id]
		if !ok || c.BatchID != batchID {
			return nil, nil, fmt.Errorf("chunk %s does not belong to batch %s: %w", id, batchID, common.ErrInvalidInput)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return b.snapshot(), out, nil
}

// Discard drops a batch and its chunks. Unknown ids are ignored.
func (a *Arena) Discard(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if b, ok := a.batches[id]; ok {
		a.drop(b)
	}
}

// Len is the number of staged batches, expired ones included.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.batches)
}

// Reap drops every expired batch and returns how many were dropped.
func (a *Arena) Reap() int {
	a.mu.Lock()
	now := a.clock.Now()
	n := 0
	for _, b := range a.batches {
		if !now.Before(b.ExpiresAt) {
			a.drop(b)
			n++
		}
	}
	onReap := a.onReap
	a.mu.Unlock()

	if n > 0 && onReap != nil {
		onReap(n)
	}
	return n
}

// Run sweeps expired batches every interval until ctx is done.
func (a *Arena) Run(ctx context.Context, interval time.Duration) error {
	a.logger.Info(ctx, "Starting batch reaper", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			a.logger.Info(ctx, "Stopping batch reaper")
			return nil
		case <-a.clock.After(interval):
			if n := a.Reap(); n > 0 {
				a.logger.Debug(ctx, "Reaped expired batches", "count", n)
			}
		}
	}
}
