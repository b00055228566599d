package delivery

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hosting = "#dapp"

type fakeAssets struct {
	assets map[string]*models.Asset
	blobs  map[string][]byte
	hidden map[string]bool
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{assets: map[string]*models.Asset{}, blobs: map[string][]byte{}, hidden: map[string]bool{}}
}

func (f *fakeAssets) Readable(_ context.Context, _ string, collection, fullPath string) (*models.Asset, error) {
	if f.hidden[fullPath] {
		return nil, nil
	}
	return f.assets[collection+fullPath], nil
}

func (f *fakeAssets) Blob(_ context.Context, key string) ([]byte, error) {
	b, ok := f.blobs[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

// put stores an asset whose encodings are split into the given chunks.
func (f *fakeAssets) put(collection, fullPath string, headers []models.HeaderField, encodings map[string][][]byte) *models.Asset {
	a := &models.Asset{
		Key:       models.AssetKey{Collection: collection, FullPath: fullPath},
		Headers:   headers,
		Encodings: map[string]models.AssetEncoding{},
	}
	for name, chunks := range encodings {
		var enc models.AssetEncoding
		for i, c := range chunks {
			k := fmt.Sprintf("%s%s/%s/%d", collection, fullPath, name, i)
			f.blobs[k] = c
			enc.ContentChunks = append(enc.ContentChunks, k)
			enc.ChunkLengths = append(enc.ChunkLengths, uint64(len(c)))
			enc.TotalLength += uint64(len(c))
		}
		enc.Sha256 = sha256.Sum256(bytes.Join(chunks, nil))
		a.Encodings[name] = enc
	}
	f.assets[collection+fullPath] = a
	return a
}

func (f *fakeAssets) putIdentity(fullPath string, chunks ...[]byte) *models.Asset {
	return f.put(hosting, fullPath, nil, map[string][][]byte{models.EncodingIdentity: chunks})
}

type fakeHosting struct {
	cfg     models.StorageConfig
	domains map[string]string
}

func (h *fakeHosting) HostingFor(_ context.Context, host string) (*models.StorageConfig, string, error) {
	cfg := h.cfg
	if c, ok := h.domains[host]; ok {
		return &cfg, c, nil
	}
	return &cfg, hosting, nil
}

func newTestService(assets *fakeAssets, h *fakeHosting) *Service {
	return NewService(assets, h, NewSealer([]byte("secret")), nil, logging.Nop{})
}

func get(t *testing.T, s *Service, url string, headers ...models.HeaderField) *HTTPResponse {
	t.Helper()
	resp, err := s.HTTPRequest(context.Background(), "anonymous", HTTPRequest{Method: "GET", URL: url, Headers: headers})
	require.NoError(t, err)
	return resp
}

func TestHTTPRequest_MethodNotAllowed(t *testing.T) {
	s := newTestService(newFakeAssets(), &fakeHosting{})
	resp, err := s.HTTPRequest(context.Background(), "anonymous", HTTPRequest{Method: "POST", URL: "/"})
	require.NoError(t, err)
	assert.Equal(t, 405, resp.StatusCode)
	v, _ := header(resp.Headers, "Allow")
	assert.Equal(t, "GET, HEAD", v)
}

func TestHTTPRequest_HeadOmitsBody(t *testing.T) {
	assets := newFakeAssets()
	assets.putIdentity("/big.bin", []byte("aaaa"), []byte("bbbb"))
	s := newTestService(assets, &fakeHosting{})

	getResp, err := s.HTTPRequest(context.Background(), "anonymous", HTTPRequest{Method: "GET", URL: "/big.bin"})
	require.NoError(t, err)
	headResp, err := s.HTTPRequest(context.Background(), "anonymous", HTTPRequest{Method: "HEAD", URL: "/big.bin"})
	require.NoError(t, err)

	assert.Equal(t, 200, headResp.StatusCode)
	assert.Equal(t, getResp.Headers, headResp.Headers)
	assert.Empty(t, headResp.Body)
	assert.Nil(t, headResp.Streaming)
	assert.NotNil(t, getResp.Streaming)
}

func TestHTTPRequest_ExactAndAliases(t *testing.T) {
	assets := newFakeAssets()
	assets.putIdentity("/index.html", []byte("home"))
	assets.putIdentity("/about.html", []byte("about"))
	assets.putIdentity("/blog/index.html", []byte("blog"))
	s := newTestService(assets, &fakeHosting{})

	tests := map[string]string{
		"/":                "home",
		"/index.html":      "home",
		"/about":           "about",
		"/blog":            "blog",
		"/blog/":           "blog",
		"/about?utm=x":     "about",
		"/blog/index.html": "blog",
	}
	for url, want := range tests {
		resp := get(t, s, url)
		assert.Equal(t, 200, resp.StatusCode, url)
		assert.Equal(t, want, string(resp.Body), url)
		assert.Nil(t, resp.Streaming, url)
	}
}

func TestHTTPRequest_RoutingOrder(t *testing.T) {
	assets := newFakeAssets()
	assets.putIdentity("/index.html", []byte("spa"))
	assets.putIdentity("/app/special.html", []byte("special"))
	assets.putIdentity("/404.html", []byte("missing"))
	h := &fakeHosting{cfg: models.StorageConfig{
		Redirects: map[string]models.Redirect{"/old/**": {Location: "https://example.com/new", StatusCode: 301}},
		Rewrites: map[string]string{
			"/app/**":         "/index.html",
			"/app/settings/*": "/app/special.html",
		},
	}}
	s := newTestService(assets, h)

	resp := get(t, s, "/old/page")
	assert.Equal(t, 301, resp.StatusCode)
	loc, _ := header(resp.Headers, "Location")
	assert.Equal(t, "https://example.com/new", loc)

	resp = get(t, s, "/app/dashboard")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "spa", string(resp.Body))

	resp = get(t, s, "/app/settings/profile")
	assert.Equal(t, "special", string(resp.Body), "most specific rewrite wins")

	// An existing asset beats any rewrite.
	resp = get(t, s, "/app/special.html")
	assert.Equal(t, "special", string(resp.Body))

	resp = get(t, s, "/elsewhere")
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "missing", string(resp.Body))
}

func TestHTTPRequest_NotFound(t *testing.T) {
	s := newTestService(newFakeAssets(), &fakeHosting{})
	resp := get(t, s, "/nothing")
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHTTPRequest_UnreadableLooksAbsent(t *testing.T) {
	assets := newFakeAssets()
	assets.putIdentity("/secret.html", []byte("s"))
	assets.hidden["/secret.html"] = true
	s := newTestService(assets, &fakeHosting{})

	assert.Equal(t, 404, get(t, s, "/secret.html").StatusCode)
}

func TestHTTPRequest_AccessToken(t *testing.T) {
	assets := newFakeAssets()
	a := assets.putIdentity("/private.pdf", []byte("pdf"))
	token := "t0k"
	a.Key.Token = &token
	s := newTestService(assets, &fakeHosting{})

	assert.Equal(t, 404, get(t, s, "/private.pdf").StatusCode)
	assert.Equal(t, 404, get(t, s, "/private.pdf?token=wrong").StatusCode)
	resp := get(t, s, "/private.pdf?token=t0k")
	assert.Equal(t, 200, resp.StatusCode)
	ct, _ := header(resp.Headers, "Content-Type")
	assert.Equal(t, "application/pdf", ct)
}

func TestHTTPRequest_CustomDomain(t *testing.T) {
	assets := newFakeAssets()
	assets.put("docs", "/index.html", nil, map[string][][]byte{models.EncodingIdentity: {[]byte("docs")}})
	assets.putIdentity("/index.html", []byte("main"))
	s := newTestService(assets, &fakeHosting{domains: map[string]string{"docs.example.com": "docs"}})

	resp := get(t, s, "/", models.HeaderField{Name: "host", Value: "docs.example.com"})
	assert.Equal(t, "docs", string(resp.Body))
	resp = get(t, s, "/")
	assert.Equal(t, "main", string(resp.Body))
}

func TestHTTPRequest_HeadersAndEncoding(t *testing.T) {
	assets := newFakeAssets()
	a := assets.put(hosting, "/app.js",
		[]models.HeaderField{{Name: "Cache-Control", Value: "max-age=60"}},
		map[string][][]byte{
			models.EncodingIdentity: {[]byte("plain")},
			models.EncodingGzip:     {[]byte("gz")},
			models.EncodingBrotli:   {[]byte("br")},
		})
	h := &fakeHosting{cfg: models.StorageConfig{
		Headers: map[string][]models.HeaderField{
			"/**":    {{Name: "Cache-Control", Value: "no-cache"}, {Name: "X-Site", Value: "sat"}},
			"/*.js":  {{Name: "X-Script", Value: "yes"}},
			"/*.css": {{Name: "X-Style", Value: "yes"}},
		},
		Iframe: models.IframeSameOrigin,
	}}
	s := newTestService(assets, h)

	resp := get(t, s, "/app.js", models.HeaderField{Name: "Accept-Encoding", Value: "gzip, br;q=0"})
	assert.Equal(t, "gz", string(resp.Body))
	assert.Equal(t, []models.HeaderField{
		{Name: "Cache-Control", Value: "max-age=60"},
		{Name: "Content-Encoding", Value: "gzip"},
		{Name: "Content-Type", Value: contentType("/app.js")},
		{Name: "ETag", Value: ETag(a.Encodings[models.EncodingGzip])},
		{Name: "X-Frame-Options", Value: "SAMEORIGIN"},
		{Name: "X-Script", Value: "yes"},
		{Name: "X-Site", Value: "sat"},
	}, resp.Headers)

	resp = get(t, s, "/app.js", models.HeaderField{Name: "Accept-Encoding", Value: "gzip, br"})
	assert.Equal(t, "br", string(resp.Body))

	resp = get(t, s, "/app.js")
	assert.Equal(t, "plain", string(resp.Body))
	_, ok := header(resp.Headers, "Content-Encoding")
	assert.False(t, ok)

	// Identical requests yield identical responses.
	assert.Equal(t, resp, get(t, s, "/app.js"))
}

func TestStreaming_WalksAllChunks(t *testing.T) {
	ctx := context.Background()
	assets := newFakeAssets()
	assets.putIdentity("/big.bin", []byte("c0"), []byte("c1"), []byte("c2"))
	s := newTestService(assets, &fakeHosting{})

	resp := get(t, s, "/big.bin")
	require.NotNil(t, resp.Streaming)
	got := append([]byte{}, resp.Body...)

	tok := resp.Streaming
	for tok != nil {
		next, err := s.StreamingCallback(ctx, "anonymous", *tok)
		require.NoError(t, err)
		got = append(got, next.Body...)
		tok = next.Token
	}
	assert.Equal(t, "c0c1c2", string(got))
}

func TestStreaming_ResumeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	assets := newFakeAssets()
	assets.putIdentity("/big.bin", []byte("c0"), []byte("c1"))
	s := newTestService(assets, &fakeHosting{})

	resp := get(t, s, "/big.bin")
	require.NotNil(t, resp.Streaming)

	first, err := s.StreamingCallback(ctx, "anonymous", *resp.Streaming)
	require.NoError(t, err)
	again, err := s.StreamingCallback(ctx, "anonymous", *resp.Streaming)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, "c1", string(first.Body))
	assert.Nil(t, first.Token, "end of stream")
}

func TestStreaming_ContentChangedMidStream(t *testing.T) {
	ctx := context.Background()
	assets := newFakeAssets()
	assets.putIdentity("/big.bin", []byte("old0"), []byte("old1"))
	s := newTestService(assets, &fakeHosting{})

	resp := get(t, s, "/big.bin")
	require.NotNil(t, resp.Streaming)

	assets.putIdentity("/big.bin", []byte("new0"), []byte("new1"))
	_, err := s.StreamingCallback(ctx, "anonymous", *resp.Streaming)
	require.ErrorIs(t, err, common.ErrIntegrityMismatch)
}

func TestStreaming_HeadersChangedMidStream(t *testing.T) {
	ctx := context.Background()
	assets := newFakeAssets()
	a := assets.putIdentity("/big.bin", []byte("0"), []byte("1"))
	s := newTestService(assets, &fakeHosting{})

	resp := get(t, s, "/big.bin")
	require.NotNil(t, resp.Streaming)

	a.Headers = []models.HeaderField{{Name: "Cache-Control", Value: "no-store"}}
	_, err := s.StreamingCallback(ctx, "anonymous", *resp.Streaming)
	require.ErrorIs(t, err, common.ErrIntegrityMismatch)
}

func TestStreaming_TamperedToken(t *testing.T) {
	ctx := context.Background()
	assets := newFakeAssets()
	assets.putIdentity("/big.bin", []byte("0"), []byte("1"), []byte("2"))
	s := newTestService(assets, &fakeHosting{})

	resp := get(t, s, "/big.bin")
	require.NotNil(t, resp.Streaming)

	// A token sealed with another key does not verify.
	forged, err := NewSealer([]byte("other")).Seal(StreamingToken{
		Collection: hosting, FullPath: "/big.bin", Encoding: models.EncodingIdentity, Index: 2,
		Sha256: assets.assets[hosting+"/big.bin"].Encodings[models.EncodingIdentity].Sha256,
	})
	require.NoError(t, err)
	_, err = s.StreamingCallback(ctx, "anonymous", forged)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	raw := []byte(*resp.Streaming)
	raw[len(raw)/2] ^= 1
	_, err = s.StreamingCallback(ctx, "anonymous", string(raw))
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = s.StreamingCallback(ctx, "anonymous", "%%%")
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestStreaming_DeletedAsset(t *testing.T) {
	ctx := context.Background()
	assets := newFakeAssets()
	assets.putIdentity("/big.bin", []byte("0"), []byte("1"))
	s := newTestService(assets, &fakeHosting{})

	resp := get(t, s, "/big.bin")
	require.NotNil(t, resp.Streaming)
	delete(assets.assets, hosting+"/big.bin")

	_, err := s.StreamingCallback(ctx, "anonymous", *resp.Streaming)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

type recordingCertifier struct{ calls int }

func (c *recordingCertifier) Certify(url string, status int, _ []models.HeaderField, body []byte) []models.HeaderField {
	c.calls++
	return []models.HeaderField{{Name: "IC-Certificate", Value: fmt.Sprintf("%s|%d|%d", url, status, len(body))}}
}

func TestHTTPRequest_Certifies(t *testing.T) {
	assets := newFakeAssets()
	assets.putIdentity("/index.html", []byte("home"))
	cert := &recordingCertifier{}
	s := NewService(assets, &fakeHosting{}, NewSealer([]byte("k")), cert, logging.Nop{})

	resp := get(t, s, "/")
	v, ok := header(resp.Headers, "IC-Certificate")
	require.True(t, ok)
	assert.Equal(t, "/|200|4", v)
	assert.Equal(t, 1, cert.calls)
}
