// Package deploy uploads a directory tree as assets of one collection.
package deploy

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"github.com/dmitrijs2005/satellite/internal/api"
	"github.com/dmitrijs2005/satellite/internal/chunkx"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/filex"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// Uploader is the part of the satellite API used by a deploy.
type Uploader interface {
	InitAssetUpload(ctx context.Context, in *api.InitAssetUploadRequest, opts ...grpc.CallOption) (*api.InitAssetUploadResponse, error)
	UploadAssetChunk(ctx context.Context, in *models.UploadChunk, opts ...grpc.CallOption) (*api.UploadAssetChunkResponse, error)
	CommitAssetUpload(ctx context.Context, in *models.CommitBatch, opts ...grpc.CallOption) (*api.AssetResponse, error)
}

type Options struct {
	Collection  string
	ChunkSize   int
	Gzip        bool
	Concurrency int
}

// Result counts what a deploy did.
type Result struct {
	Files     int
	Encodings int
	Bytes     int64
}

type Deployer struct {
	up     Uploader
	opts   Options
	logger logging.Logger
}

func New(up Uploader, opts Options, l logging.Logger) *Deployer {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = common.DefaultMaxChunkSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Deployer{up: up, opts: opts, logger: l.With("module", "deploy")}
}

var compressible = map[string]bool{
	".html": true, ".htm": true, ".css": true, ".js": true, ".mjs": true,
	".json": true, ".svg": true, ".txt": true, ".xml": true, ".wasm": true, ".map": true,
}

// Run uploads every regular file below dir. Files are named by their path
// relative to dir. The first failure cancels the remaining uploads.
func (d *Deployer) Run(ctx context.Context, dir string) (Result, error) {
	paths, err := filex.Walk(dir)
	if err != nil {
		return Result{}, err
	}

	var files, encodings, size atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Concurrency)
	for _, p := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
			if err != nil {
				return err
			}
			if err := d.upload(ctx, p, "identity", data); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			encodings.Add(1)

			if d.opts.Gzip && compressible[path.Ext(p)] {
				gz, err := chunkx.Gzip(data)
				if err != nil {
					return err
				}
				if len(gz) < len(data) {
					if err := d.upload(ctx, p, "gzip", gz); err != nil {
						return fmt.Errorf("%s (gzip): %w", p, err)
					}
					encodings.Add(1)
				}
			}

			files.Add(1)
			size.Add(int64(len(data)))
			d.logger.Debug(ctx, "Uploaded", "path", p, "bytes", len(data))
			return nil
		})
	}
	err = g.Wait()

	return Result{Files: int(files.Load()), Encodings: int(encodings.Load()), Bytes: size.Load()}, err
}

func (d *Deployer) upload(ctx context.Context, fullPath, encoding string, data []byte) error {
	blocks, err := chunkx.Split(bytes.NewReader(data), d.opts.ChunkSize)
	if err != nil {
		return err
	}

	init, err := d.up.InitAssetUpload(ctx, &api.InitAssetUploadRequest{Key: models.InitAssetKey{
		Collection:   d.opts.Collection,
		FullPath:     fullPath,
		EncodingType: encoding,
	}})
	if err != nil {
		return err
	}

	ids := make([]string, len(blocks))
	for i, b := range blocks {
		resp, err := d.up.UploadAssetChunk(ctx, &models.UploadChunk{BatchID: init.BatchID, OrderID: uint64(i), Content: b})
		if err != nil {
			return err
		}
		ids[i] = resp.ChunkID
	}

	_, err = d.up.CommitAssetUpload(ctx, &models.CommitBatch{BatchID: init.BatchID, ChunkIDs: ids})
	return err
}
