package models

import "time"

// Encoding types an asset can be stored under.
const (
	EncodingIdentity = "identity"
	EncodingGzip     = "gzip"
	EncodingCompress = "compress"
	EncodingDeflate  = "deflate"
	EncodingBrotli   = "br"
)

// ValidEncoding reports whether t is a supported encoding type.
func ValidEncoding(t string) bool {
	switch t {
	case EncodingIdentity, EncodingGzip, EncodingCompress, EncodingDeflate, EncodingBrotli:
		return true
	}
	return false
}

// HeaderField is a single HTTP header.
type HeaderField struct {
	Name  string
	Value string
}

// AssetKey identifies an asset and carries its descriptive metadata.
type AssetKey struct {
	Collection string
	FullPath   string
	Name       string
	Owner      string
	// Token, when set, must be presented as the "token" query parameter.
	Token       *string
	Description string
}

// AssetEncoding is one stored byte representation of an asset.
type AssetEncoding struct {
	// ContentChunks are blob store keys in delivery order.
	ContentChunks []string
	ChunkLengths  []uint64
	TotalLength   uint64
	Sha256        [32]byte
	ModifiedAt    time.Time
}

// Asset is a record of the asset store.
type Asset struct {
	Key       AssetKey
	Headers   []HeaderField
	Encodings map[string]AssetEncoding
	Delegates []string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   uint64
}

// AssetEncodingNoContent is the listing view of an encoding.
type AssetEncodingNoContent struct {
	TotalLength uint64
	Sha256      [32]byte
	ModifiedAt  time.Time
}

// AssetNoContent is the listing view of an asset.
type AssetNoContent struct {
	Key       AssetKey
	Headers   []HeaderField
	Encodings map[string]AssetEncodingNoContent
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   uint64
}

// NoContent strips chunk references from a.
func (a *Asset) NoContent() *AssetNoContent {
	out := &AssetNoContent{
		Key:       a.Key,
		Headers:   a.Headers,
		Encodings: make(map[string]AssetEncodingNoContent, len(a.Encodings)),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Version:   a.Version,
	}
	for t, e := range a.Encodings {
		out.Encodings[t] = AssetEncodingNoContent{TotalLength: e.TotalLength, Sha256: e.Sha256, ModifiedAt: e.ModifiedAt}
	}
	return out
}

// ChunkKeys lists every blob key referenced by the asset.
func (a *Asset) ChunkKeys() []string {
	var keys []string
	for _, e := range a.Encodings {
		keys = append(keys, e.ContentChunks...)
	}
	return keys
}

// InitAssetKey opens an upload batch.
type InitAssetKey struct {
	Collection   string
	FullPath     string
	Name         string
	EncodingType string
	Token        *string
	Description  string
}

// UploadChunk appends content to a batch.
type UploadChunk struct {
	BatchID string
	OrderID uint64
	Content []byte
}

// CommitBatch finalizes a batch into an asset encoding.
type CommitBatch struct {
	BatchID  string
	ChunkIDs []string
	Headers  []HeaderField
}

// DelAsset carries the optional expected version of an asset delete.
type DelAsset struct {
	Version *uint64
}

// AssetContext describes one asset mutation for hook notifiers.
type AssetContext struct {
	Collection string
	FullPath   string
	Before     *Asset
	After      *Asset
}

func (a *Asset) ListKey() string          { return a.Key.FullPath }
func (a *Asset) ListOwner() string        { return a.Key.Owner }
func (a *Asset) ListDescription() string  { return a.Key.Description }
func (a *Asset) ListCreatedAt() time.Time { return a.CreatedAt }
func (a *Asset) ListUpdatedAt() time.Time { return a.UpdatedAt }
func (a *Asset) ListDelegates() []string  { return a.Delegates }
