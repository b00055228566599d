// Package api defines the satellite gRPC service: its messages, the
// service descriptor used by the server and the client stub. Messages are
// plain structs carried by the CBOR codec.
package api

import (
	"time"

	"github.com/dmitrijs2005/satellite/internal/server/models"
)

type Empty struct{}

type PingResponse struct {
	Status string
}

type DocRequest struct {
	Collection string
	Key        string
}

type SetDocRequest struct {
	Collection string
	Key        string
	Doc        models.SetDoc
}

type DelDocRequest struct {
	Collection string
	Key        string
	Doc        models.DelDoc
}

type DocResponse struct {
	// Doc is nil when the document does not exist.
	Doc *models.Doc
}

type ListRequest struct {
	Collection string
	Params     models.ListParams
}

type ListDocsResponse struct {
	Results models.ListResults[*models.Doc]
}

type CountResponse struct {
	Count int
}

type GetManyDocsRequest struct {
	Docs []DocRequest
}

type SetManyDocsRequest struct {
	Docs []SetDocRequest
}

type DelManyDocsRequest struct {
	Docs []DelDocRequest
}

type DocsResponse struct {
	Docs []*models.Doc
}

type CollectionRequest struct {
	Collection string
}

type GetRuleRequest struct {
	Kind       models.RulesType
	Collection string
}

type ListRulesRequest struct {
	Kind models.RulesType
}

type SetRuleRequest struct {
	Kind       models.RulesType
	Collection string
	Rule       models.SetRule
}

type DelRuleRequest struct {
	Kind       models.RulesType
	Collection string
	Version    *uint64
}

type RuleResponse struct {
	Rule *models.Rule
}

type RulesResponse struct {
	Rules []*models.Rule
}

type SetControllersRequest struct {
	IDs        []string
	Controller models.SetController
}

type DelControllersRequest struct {
	IDs []string
}

type ControllersResponse struct {
	Controllers []*models.Controller
}

type ConfigResponse struct {
	Config *models.StorageConfig
}

type SetConfigRequest struct {
	Config *models.StorageConfig
}

type SetCustomDomainRequest struct {
	Domain     string
	Collection string
}

type DelCustomDomainRequest struct {
	Domain string
}

type CustomDomainResponse struct {
	Domain *models.CustomDomain
}

type CustomDomainsResponse struct {
	Domains []*models.CustomDomain
}

type InitAssetUploadRequest struct {
	Key models.InitAssetKey
}

type InitAssetUploadResponse struct {
	BatchID   string
	ExpiresAt time.Time
}

type UploadAssetChunkResponse struct {
	ChunkID string
}

type AssetRequest struct {
	Collection string
	FullPath   string
}

type DelAssetRequest struct {
	Collection string
	FullPath   string
	Asset      models.DelAsset
}

type AssetResponse struct {
	// Asset is nil when the asset does not exist.
	Asset *models.AssetNoContent
}

type GetManyAssetsRequest struct {
	Assets []AssetRequest
}

type DelManyAssetsRequest struct {
	Assets []DelAssetRequest
}

type AssetsResponse struct {
	Assets []*models.AssetNoContent
}

type ListAssetsResponse struct {
	Results models.ListResults[*models.AssetNoContent]
}

type HttpRequest struct {
	Method  string
	URL     string
	Headers []models.HeaderField
}

type HttpResponse struct {
	StatusCode     int
	Headers        []models.HeaderField
	Body           []byte
	StreamingToken *string
}

type StreamingCallbackRequest struct {
	Token string
}

type StreamingCallbackResponse struct {
	Body  []byte
	Token *string
}
