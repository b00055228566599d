package api

import (
	"context"

	"github.com/dmitrijs2005/satellite/internal/codec"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "satellite.Satellite"

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// SatelliteServer is implemented by the server.
type SatelliteServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	SetDoc(context.Context, *SetDocRequest) (*DocResponse, error)
	GetDoc(context.Context, *DocRequest) (*DocResponse, error)
	DelDoc(context.Context, *DelDocRequest) (*DocResponse, error)
	ListDocs(context.Context, *ListRequest) (*ListDocsResponse, error)
	CountDocs(context.Context, *ListRequest) (*CountResponse, error)
	GetManyDocs(context.Context, *GetManyDocsRequest) (*DocsResponse, error)
	SetManyDocs(context.Context, *SetManyDocsRequest) (*DocsResponse, error)
	DelManyDocs(context.Context, *DelManyDocsRequest) (*Empty, error)
	DelDocs(context.Context, *CollectionRequest) (*CountResponse, error)
	GetRule(context.Context, *GetRuleRequest) (*RuleResponse, error)
	ListRules(context.Context, *ListRulesRequest) (*RulesResponse, error)
	SetRule(context.Context, *SetRuleRequest) (*RuleResponse, error)
	DelRule(context.Context, *DelRuleRequest) (*Empty, error)
	ListControllers(context.Context, *Empty) (*ControllersResponse, error)
	SetControllers(context.Context, *SetControllersRequest) (*ControllersResponse, error)
	DelControllers(context.Context, *DelControllersRequest) (*ControllersResponse, error)
	GetConfig(context.Context, *Empty) (*ConfigResponse, error)
	SetConfig(context.Context, *SetConfigRequest) (*Empty, error)
	ListCustomDomains(context.Context, *Empty) (*CustomDomainsResponse, error)
	SetCustomDomain(context.Context, *SetCustomDomainRequest) (*CustomDomainResponse, error)
	DelCustomDomain(context.Context, *DelCustomDomainRequest) (*Empty, error)
	InitAssetUpload(context.Context, *InitAssetUploadRequest) (*InitAssetUploadResponse, error)
	UploadAssetChunk(context.Context, *models.UploadChunk) (*UploadAssetChunkResponse, error)
	CommitAssetUpload(context.Context, *models.CommitBatch) (*AssetResponse, error)
	GetAsset(context.Context, *AssetRequest) (*AssetResponse, error)
	GetManyAssets(context.Context, *GetManyAssetsRequest) (*AssetsResponse, error)
	ListAssets(context.Context, *ListRequest) (*ListAssetsResponse, error)
	CountAssets(context.Context, *ListRequest) (*CountResponse, error)
	DelAsset(context.Context, *DelAssetRequest) (*AssetResponse, error)
	DelManyAssets(context.Context, *DelManyAssetsRequest) (*Empty, error)
	DelAssets(context.Context, *CollectionRequest) (*CountResponse, error)
	HttpRequest(context.Context, *HttpRequest) (*HttpResponse, error)
	HttpRequestStreamingCallback(context.Context, *StreamingCallbackRequest) (*StreamingCallbackResponse, error)
}

// UnimplementedSatelliteServer answers every call with codes.Unimplemented.
// Embed it to implement a subset of the service.
type UnimplementedSatelliteServer struct{}

func (UnimplementedSatelliteServer) Ping(context.Context, *Empty) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func (UnimplementedSatelliteServer) SetDoc(context.Context, *SetDocRequest) (*DocResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetDoc not implemented")
}

func (UnimplementedSatelliteServer) GetDoc(context.Context, *DocRequest) (*DocResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDoc not implemented")
}

func (UnimplementedSatelliteServer) DelDoc(context.Context, *DelDocRequest) (*DocResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DelDoc not implemented")
}

func (UnimplementedSatelliteServer) ListDocs(context.Context, *ListRequest) (*ListDocsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListDocs not implemented")
}

func (UnimplementedSatelliteServer) CountDocs(context.Context, *ListRequest) (*CountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CountDocs not implemented")
}

func (UnimplementedSatelliteServer) GetManyDocs(context.Context, *GetManyDocsRequest) (*DocsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetManyDocs not implemented")
}

func (UnimplementedSatelliteServer) SetManyDocs(context.Context, *SetManyDocsRequest) (*DocsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetManyDocs not implemented")
}

func (UnimplementedSatelliteServer) DelManyDocs(context.Context, *DelManyDocsRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DelManyDocs not implemented")
}

func (UnimplementedSatelliteServer) DelDocs(context.Context, *CollectionRequest) (*CountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DelDocs not implemented")
}

func (UnimplementedSatelliteServer) GetRule(context.Context, *GetRuleRequest) (*RuleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRule not implemented")
}

func (UnimplementedSatelliteServer) ListRules(context.Context, *ListRulesRequest) (*RulesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRules not implemented")
}

func (UnimplementedSatelliteServer) SetRule(context.Context, *SetRuleRequest) (*RuleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetRule not implemented")
}

func (UnimplementedSatelliteServer) DelRule(context.Context, *DelRuleRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DelRule not implemented")
}

func (UnimplementedSatelliteServer) ListControllers(context.Context, *Empty) (*ControllersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListControllers not implemented")
}

func (UnimplementedSatelliteServer) SetControllers(context.Context, *SetControllersRequest) (*ControllersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetControllers not implemented")
}

func (UnimplementedSatelliteServer) DelControllers(context.Context, *DelControllersRequest) (*ControllersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DelControllers not implemented")
}

func (UnimplementedSatelliteServer) GetConfig(context.Context, *Empty) (*ConfigResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetConfig not implemented")
}

func (UnimplementedSatelliteServer) SetConfig(context.Context, *SetConfigRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetConfig not implemented")
}

func (UnimplementedSatelliteServer) ListCustomDomains(context.Context, *Empty) (*CustomDomainsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListCustomDomains not implemented")
}

func (UnimplementedSatelliteServer) SetCustomDomain(context.Context, *SetCustomDomainRequest) (*CustomDomainResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetCustomDomain not implemented")
}

func (UnimplementedSatelliteServer) DelCustomDomain(context.Context, *DelCustomDomainRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DelCustomDomain not implemented")
}

func (UnimplementedSatelliteServer) InitAssetUpload(context.Context, *InitAssetUploadRequest) (*InitAssetUploadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method InitAssetUpload not implemented")
}

func (UnimplementedSatelliteServer) UploadAssetChunk(context.Context, *models.UploadChunk) (*UploadAssetChunkResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UploadAssetChunk not implemented")
}

func (UnimplementedSatelliteServer) CommitAssetUpload(context.Context, *models.CommitBatch) (*AssetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CommitAssetUpload not implemented")
}

func (UnimplementedSatelliteServer) GetAsset(context.Context, *AssetRequest) (*AssetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAsset not implemented")
}

func (UnimplementedSatelliteServer) GetManyAssets(context.Context, *GetManyAssetsRequest) (*AssetsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetManyAssets not implemented")
}

func (UnimplementedSatelliteServer) ListAssets(context.Context, *ListRequest) (*ListAssetsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAssets not implemented")
}

func (UnimplementedSatelliteServer) CountAssets(context.Context, *ListRequest) (*CountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CountAssets not implemented")
}

func (UnimplementedSatelliteServer) DelAsset(context.Context, *DelAssetRequest) (*AssetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DelAsset not implemented")
}

func (UnimplementedSatelliteServer) DelManyAssets(context.Context, *DelManyAssetsRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DelManyAssets not implemented")
}

func (UnimplementedSatelliteServer) DelAssets(context.Context, *CollectionRequest) (*CountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DelAssets not implemented")
}

func (UnimplementedSatelliteServer) HttpRequest(context.Context, *HttpRequest) (*HttpResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HttpRequest not implemented")
}

func (UnimplementedSatelliteServer) HttpRequestStreamingCallback(context.Context, *StreamingCallbackRequest) (*StreamingCallbackResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HttpRequestStreamingCallback not implemented")
}

// unary builds the method descriptor of one call.
func unary[Req, Resp any](method string, call func(SatelliteServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(SatelliteServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes the satellite service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SatelliteServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", SatelliteServer.Ping),
		unary("SetDoc", SatelliteServer.SetDoc),
		unary("GetDoc", SatelliteServer.GetDoc),
		unary("DelDoc", SatelliteServer.DelDoc),
		unary("ListDocs", SatelliteServer.ListDocs),
		unary("CountDocs", SatelliteServer.CountDocs),
		unary("GetManyDocs", SatelliteServer.GetManyDocs),
		unary("SetManyDocs", SatelliteServer.SetManyDocs),
		unary("DelManyDocs", SatelliteServer.DelManyDocs),
		unary("DelDocs", SatelliteServer.DelDocs),
		unary("GetRule", SatelliteServer.GetRule),
		unary("ListRules", SatelliteServer.ListRules),
		unary("SetRule", SatelliteServer.SetRule),
		unary("DelRule", SatelliteServer.DelRule),
		unary("ListControllers", SatelliteServer.ListControllers),
		unary("SetControllers", SatelliteServer.SetControllers),
		unary("DelControllers", SatelliteServer.DelControllers),
		unary("GetConfig", SatelliteServer.GetConfig),
		unary("SetConfig", SatelliteServer.SetConfig),
		unary("ListCustomDomains", SatelliteServer.ListCustomDomains),
		unary("SetCustomDomain", SatelliteServer.SetCustomDomain),
		unary("DelCustomDomain", SatelliteServer.DelCustomDomain),
		unary("InitAssetUpload", SatelliteServer.InitAssetUpload),
		unary("UploadAssetChunk", SatelliteServer.UploadAssetChunk),
		unary("CommitAssetUpload", SatelliteServer.CommitAssetUpload),
		unary("GetAsset", SatelliteServer.GetAsset),
		unary("GetManyAssets", SatelliteServer.GetManyAssets),
		unary("ListAssets", SatelliteServer.ListAssets),
		unary("CountAssets", SatelliteServer.CountAssets),
		unary("DelAsset", SatelliteServer.DelAsset),
		unary("DelManyAssets", SatelliteServer.DelManyAssets),
		unary("DelAssets", SatelliteServer.DelAssets),
		unary("HttpRequest", SatelliteServer.HttpRequest),
		unary("HttpRequestStreamingCallback", SatelliteServer.HttpRequestStreamingCallback),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "satellite",
}

// RegisterSatelliteServer registers srv on s.
func RegisterSatelliteServer(s grpc.ServiceRegistrar, srv SatelliteServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// SatelliteClient calls the satellite service over CBOR.
type SatelliteClient struct {
	cc grpc.ClientConnInterface
}

// NewSatelliteClient returns a client over cc.
func NewSatelliteClient(cc grpc.ClientConnInterface) *SatelliteClient {
	return &SatelliteClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SatelliteClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts...)
}

func (c *SatelliteClient) SetDoc(ctx context.Context, in *SetDocRequest, opts ...grpc.CallOption) (*DocResponse, error) {
	return invoke[DocResponse](ctx, c.cc, "SetDoc", in, opts...)
}

func (c *SatelliteClient) GetDoc(ctx context.Context, in *DocRequest, opts ...grpc.CallOption) (*DocResponse, error) {
	return invoke[DocResponse](ctx, c.cc, "GetDoc", in, opts...)
}

func (c *SatelliteClient) DelDoc(ctx context.Context, in *DelDocRequest, opts ...grpc.CallOption) (*DocResponse, error) {
	return invoke[DocResponse](ctx, c.cc, "DelDoc", in, opts...)
}

func (c *SatelliteClient) ListDocs(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListDocsResponse, error) {
	return invoke[ListDocsResponse](ctx, c.cc, "ListDocs", in, opts...)
}

func (c *SatelliteClient) CountDocs(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*CountResponse, error) {
	return invoke[CountResponse](ctx, c.cc, "CountDocs", in, opts...)
}

func (c *SatelliteClient) GetManyDocs(ctx context.Context, in *GetManyDocsRequest, opts ...grpc.CallOption) (*DocsResponse, error) {
	return invoke[DocsResponse](ctx, c.cc, "GetManyDocs", in, opts...)
}

func (c *SatelliteClient) SetManyDocs(ctx context.Context, in *SetManyDocsRequest, opts ...grpc.CallOption) (*DocsResponse, error) {
	return invoke[DocsResponse](ctx, c.cc, "SetManyDocs", in, opts...)
}

func (c *SatelliteClient) DelManyDocs(ctx context.Context, in *DelManyDocsRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DelManyDocs", in, opts...)
}

func (c *SatelliteClient) DelDocs(ctx context.Context, in *CollectionRequest, opts ...grpc.CallOption) (*CountResponse, error) {
	return invoke[CountResponse](ctx, c.cc, "DelDocs", in, opts...)
}

func (c *SatelliteClient) GetRule(ctx context.Context, in *GetRuleRequest, opts ...grpc.CallOption) (*RuleResponse, error) {
	return invoke[RuleResponse](ctx, c.cc, "GetRule", in, opts...)
}

func (c *SatelliteClient) ListRules(ctx context.Context, in *ListRulesRequest, opts ...grpc.CallOption) (*RulesResponse, error) {
	return invoke[RulesResponse](ctx, c.cc, "ListRules", in, opts...)
}

func (c *SatelliteClient) SetRule(ctx context.Context, in *SetRuleRequest, opts ...grpc.CallOption) (*RuleResponse, error) {
	return invoke[RuleResponse](ctx, c.cc, "SetRule", in, opts...)
}

func (c *SatelliteClient) DelRule(ctx context.Context, in *DelRuleRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DelRule", in, opts...)
}

func (c *SatelliteClient) ListControllers(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ControllersResponse, error) {
	return invoke[ControllersResponse](ctx, c.cc, "ListControllers", in, opts...)
}

func (c *SatelliteClient) SetControllers(ctx context.Context, in *SetControllersRequest, opts ...grpc.CallOption) (*ControllersResponse, error) {
	return invoke[ControllersResponse](ctx, c.cc, "SetControllers", in, opts...)
}

func (c *SatelliteClient) DelControllers(ctx context.Context, in *DelControllersRequest, opts ...grpc.CallOption) (*ControllersResponse, error) {
	return invoke[ControllersResponse](ctx, c.cc, "DelControllers", in, opts...)
}

func (c *SatelliteClient) GetConfig(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ConfigResponse, error) {
	return invoke[ConfigResponse](ctx, c.cc, "GetConfig", in, opts...)
}

func (c *SatelliteClient) SetConfig(ctx context.Context, in *SetConfigRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "SetConfig", in, opts...)
}

func (c *SatelliteClient) ListCustomDomains(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CustomDomainsResponse, error) {
	return invoke[CustomDomainsResponse](ctx, c.cc, "ListCustomDomains", in, opts...)
}

func (c *SatelliteClient) SetCustomDomain(ctx context.Context, in *SetCustomDomainRequest, opts ...grpc.CallOption) (*CustomDomainResponse, error) {
	return invoke[CustomDomainResponse](ctx, c.cc, "SetCustomDomain", in, opts...)
}

func (c *SatelliteClient) DelCustomDomain(ctx context.Context, in *DelCustomDomainRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DelCustomDomain", in, opts...)
}

func (c *SatelliteClient) InitAssetUpload(ctx context.Context, in *InitAssetUploadRequest, opts ...grpc.CallOption) (*InitAssetUploadResponse, error) {
	return invoke[InitAssetUploadResponse](ctx, c.cc, "InitAssetUpload", in, opts...)
}

func (c *SatelliteClient) UploadAssetChunk(ctx context.Context, in *models.UploadChunk, opts ...grpc.CallOption) (*UploadAssetChunkResponse, error) {
	return invoke[UploadAssetChunkResponse](ctx, c.cc, "UploadAssetChunk", in, opts...)
}

func (c *SatelliteClient) CommitAssetUpload(ctx context.Context, in *models.CommitBatch, opts ...grpc.CallOption) (*AssetResponse, error) {
	return invoke[AssetResponse](ctx, c.cc, "CommitAssetUpload", in, opts...)
}

func (c *SatelliteClient) GetAsset(ctx context.Context, in *AssetRequest, opts ...grpc.CallOption) (*AssetResponse, error) {
	return invoke[AssetResponse](ctx, c.cc, "GetAsset", in, opts...)
}

func (c *SatelliteClient) GetManyAssets(ctx context.Context, in *GetManyAssetsRequest, opts ...grpc.CallOption) (*AssetsResponse, error) {
	return invoke[AssetsResponse](ctx, c.cc, "GetManyAssets", in, opts...)
}

func (c *SatelliteClient) ListAssets(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListAssetsResponse, error) {
	return invoke[ListAssetsResponse](ctx, c.cc, "ListAssets", in, opts...)
}

func (c *SatelliteClient) CountAssets(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*CountResponse, error) {
	return invoke[CountResponse](ctx, c.cc, "CountAssets", in, opts...)
}

func (c *SatelliteClient) DelAsset(ctx context.Context, in *DelAssetRequest, opts ...grpc.CallOption) (*AssetResponse, error) {
	return invoke[AssetResponse](ctx, c.cc, "DelAsset", in, opts...)
}

func (c *SatelliteClient) DelManyAssets(ctx context.Context, in *DelManyAssetsRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DelManyAssets", in, opts...)
}

func (c *SatelliteClient) DelAssets(ctx context.Context, in *CollectionRequest, opts ...grpc.CallOption) (*CountResponse, error) {
	return invoke[CountResponse](ctx, c.cc, "DelAssets", in, opts...)
}

func (c *SatelliteClient) HttpRequest(ctx context.Context, in *HttpRequest, opts ...grpc.CallOption) (*HttpResponse, error) {
	return invoke[HttpResponse](ctx, c.cc, "HttpRequest", in, opts...)
}

func (c *SatelliteClient) HttpRequestStreamingCallback(ctx context.Context, in *StreamingCallbackRequest, opts ...grpc.CallOption) (*StreamingCallbackResponse, error) {
	return invoke[StreamingCallbackResponse](ctx, c.cc, "HttpRequestStreamingCallback", in, opts...)
}
