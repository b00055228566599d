// Package blobstore stores asset chunk bytes by key.
package blobstore

import (
	"context"
	"fmt"
)

// Store is a flat key to bytes store.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	// Get returns common.ErrorNotFound for unknown keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete ignores unknown keys.
	Delete(ctx context.Context, key string) error
}

// ChunkKey is the key of chunk index of a committed batch.
func ChunkKey(batchID string, index int) string {
	return fmt.Sprintf("assets/%s/%d", batchID, index)
}

// EncodedChunkKey is the key of a chunk of an encoding derived from a batch.
func EncodedChunkKey(batchID, encoding string, index int) string {
	return fmt.Sprintf("assets/%s/%s/%d", batchID, encoding, index)
}
