package grpc

import (
	"context"

	"github.com/dmitrijs2005/satellite/internal/api"
	"github.com/dmitrijs2005/satellite/internal/server/delivery"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/dmitrijs2005/satellite/internal/server/services"
)

func (s *GRPCServer) InitAssetUpload(ctx context.Context, req *api.InitAssetUploadRequest) (*api.InitAssetUploadResponse, error) {
	b, err := s.svc.Assets.InitUpload(ctx, principalFrom(ctx), req.Key)
	if err != nil {
		return nil, err
	}
	return &api.InitAssetUploadResponse{BatchID: b.ID, ExpiresAt: b.ExpiresAt}, nil
}

func (s *GRPCServer) UploadAssetChunk(ctx context.Context, req *models.UploadChunk) (*api.UploadAssetChunkResponse, error) {
	id, err := s.svc.Assets.UploadChunk(ctx, principalFrom(ctx), *req)
	if err != nil {
		return nil, err
	}
	return &api.UploadAssetChunkResponse{ChunkID: id}, nil
}

func (s *GRPCServer) CommitAssetUpload(ctx context.Context, req *models.CommitBatch) (*api.AssetResponse, error) {
	a, err := s.svc.Assets.CommitUpload(ctx, principalFrom(ctx), *req)
	if err != nil {
		return nil, err
	}
	return &api.AssetResponse{Asset: a.NoContent()}, nil
}

func noContent(a *models.Asset) *models.AssetNoContent {
	if a == nil {
		return nil
	}
	return a.NoContent()
}

func (s *GRPCServer) GetAsset(ctx context.Context, req *api.AssetRequest) (*api.AssetResponse, error) {
	a, err := s.svc.Assets.Get(ctx, principalFrom(ctx), req.Collection, req.FullPath)
	if err != nil {
		return nil, err
	}
	return &api.AssetResponse{Asset: noContent(a)}, nil
}

func (s *GRPCServer) GetManyAssets(ctx context.Context, req *api.GetManyAssetsRequest) (*api.AssetsResponse, error) {
	refs := make([]services.AssetRef, len(req.Assets))
	for i, a := range req.Assets {
		refs[i] = services.AssetRef{Collection: a.Collection, FullPath: a.FullPath}
	}
	assets, err := s.svc.Assets.GetMany(ctx, principalFrom(ctx), refs)
	if err != nil {
		return nil, err
	}
	out := make([]*models.AssetNoContent, len(assets))
	for i, a := range assets {
		out[i] = noContent(a)
	}
	return &api.AssetsResponse{Assets: out}, nil
}

func (s *GRPCServer) ListAssets(ctx context.Context, req *api.ListRequest) (*api.ListAssetsResponse, error) {
	res, err := s.svc.Assets.List(ctx, principalFrom(ctx), req.Collection, req.Params)
	if err != nil {
		return nil, err
	}
	return &api.ListAssetsResponse{Results: res}, nil
}

func (s *GRPCServer) CountAssets(ctx context.Context, req *api.ListRequest) (*api.CountResponse, error) {
	n, err := s.svc.Assets.Count(ctx, principalFrom(ctx), req.Collection, req.Params)
	if err != nil {
		return nil, err
	}
	return &api.CountResponse{Count: n}, nil
}

func (s *GRPCServer) DelAsset(ctx context.Context, req *api.DelAssetRequest) (*api.AssetResponse, error) {
	a, err := s.svc.Assets.Delete(ctx, principalFrom(ctx), req.Collection, req.FullPath, req.Asset)
	if err != nil {
		return nil, err
	}
	return &api.AssetResponse{Asset: noContent(a)}, nil
}

func (s *GRPCServer) DelManyAssets(ctx context.Context, req *api.DelManyAssetsRequest) (*api.Empty, error) {
	items := make([]services.DelAssetItem, len(req.Assets))
	for i, a := range req.Assets {
		items[i] = services.DelAssetItem{Collection: a.Collection, FullPath: a.FullPath, Asset: a.Asset}
	}
	if err := s.svc.Assets.DeleteMany(ctx, principalFrom(ctx), items); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) DelAssets(ctx context.Context, req *api.CollectionRequest) (*api.CountResponse, error) {
	n, err := s.svc.Assets.DeleteAll(ctx, principalFrom(ctx), req.Collection)
	if err != nil {
		return nil, err
	}
	return &api.CountResponse{Count: n}, nil
}

func (s *GRPCServer) HttpRequest(ctx context.Context, req *api.HttpRequest) (*api.HttpResponse, error) {
	resp, err := s.svc.Delivery.HTTPRequest(ctx, principalFrom(ctx), delivery.HTTPRequest{
		Method:  req.Method,
		URL:     req.URL,
		Headers: req.Headers,
	})
	if err != nil {
		return nil, err
	}
	return &api.HttpResponse{
		StatusCode:     resp.StatusCode,
		Headers:        resp.Headers,
		Body:           resp.Body,
		StreamingToken: resp.Streaming,
	}, nil
}

func (s *GRPCServer) HttpRequestStreamingCallback(ctx context.Context, req *api.StreamingCallbackRequest) (*api.StreamingCallbackResponse, error) {
	resp, err := s.svc.Delivery.StreamingCallback(ctx, principalFrom(ctx), req.Token)
	if err != nil {
		return nil, err
	}
	return &api.StreamingCallbackResponse{Body: resp.Body, Token: resp.Token}, nil
}
