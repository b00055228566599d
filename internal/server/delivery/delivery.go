// Package delivery serves assets over an HTTP-like request/response
// protocol. Bodies made of several chunks are streamed across calls with
// self-validating continuation tokens.
package delivery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// Assets is the read side of the asset store used by delivery.
type Assets interface {
	// Readable returns nil when the asset is absent or the caller may not read it.
	Readable(ctx context.Context, principal, collection, fullPath string) (*models.Asset, error)
	Blob(ctx context.Context, key string) ([]byte, error)
}

// Hosting supplies the storage configuration and the collection serving a host.
type Hosting interface {
	HostingFor(ctx context.Context, host string) (*models.StorageConfig, string, error)
}

// Certifier attaches integrity headers to a final response.
type Certifier interface {
	Certify(url string, status int, headers []models.HeaderField, body []byte) []models.HeaderField
}

// NopCertifier adds nothing.
type NopCertifier struct{}

func (NopCertifier) Certify(string, int, []models.HeaderField, []byte) []models.HeaderField {
	return nil
}

// HTTPRequest is an inbound request.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers []models.HeaderField
}

// HTTPResponse is the first part of a response. Streaming is set when
// more chunks follow.
type HTTPResponse struct {
	StatusCode int
	Headers    []models.HeaderField
	Body       []byte
	Streaming  *string
}

// StreamingResponse carries one continuation chunk.
type StreamingResponse struct {
	Body  []byte
	Token *string
}

// Service implements the delivery protocol.
type Service struct {
	assets    Assets
	hosting   Hosting
	sealer    *Sealer
	certifier Certifier
	logger    logging.Logger
}

// NewService returns a Service. A nil certifier adds no headers.
func NewService(assets Assets, hosting Hosting, sealer *Sealer, certifier Certifier, l logging.Logger) *Service {
	if certifier == nil {
		certifier = NopCertifier{}
	}
	return &Service{
		assets:    assets,
		hosting:   hosting,
		sealer:    sealer,
		certifier: certifier,
		logger:    l.With("module", "delivery"),
	}
}

func textResponse(status int, msg string) *HTTPResponse {
	return &HTTPResponse{
		StatusCode: status,
		Headers:    []models.HeaderField{{Name: "Content-Type", Value: "text/plain; charset=utf-8"}},
		Body:       []byte(msg),
	}
}

// HTTPRequest answers req on behalf of principal.
func (s *Service) HTTPRequest(ctx context.Context, principal string, req HTTPRequest) (*HTTPResponse, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		resp := textResponse(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		resp.Headers = append(resp.Headers, models.HeaderField{Name: "Allow", Value: "GET, HEAD"})
		return resp, nil
	}

	u, err := url.ParseRequestURI(req.URL)
	if err != nil {
		return nil, fmt.Errorf("url %q: %w", req.URL, common.ErrInvalidInput)
	}
	reqPath := u.Path
	if reqPath == "" {
		reqPath = "/"
	}
	accessToken := u.Query().Get("token")

	host, _ := header(req.Headers, "Host")
	cfg, collection, err := s.hosting.HostingFor(ctx, host)
	if err != nil {
		return nil, err
	}

	routing, err := s.Resolve(ctx, principal, collection, reqPath, accessToken, cfg)
	if err != nil {
		return nil, err
	}

	var resp *HTTPResponse
	switch r := routing.(type) {
	case RoutingDefault:
		resp, err = s.serve(ctx, cfg, reqPath, collection, accessToken, r.Asset, http.StatusOK, req.Headers)
	case RoutingRewrite:
		resp, err = s.serve(ctx, cfg, reqPath, collection, accessToken, r.Asset, r.StatusCode, req.Headers)
	case RoutingRedirect:
		resp = &HTTPResponse{
			StatusCode: r.Redirect.StatusCode,
			Headers:    []models.HeaderField{{Name: "Location", Value: r.Redirect.Location}},
		}
		if v, ok := iframeHeader(cfg.Iframe); ok {
			resp.Headers = append(resp.Headers, models.HeaderField{Name: "X-Frame-Options", Value: v})
		}
	case RoutingNotFound:
		resp = textResponse(http.StatusNotFound, http.StatusText(http.StatusNotFound))
	default:
		return nil, fmt.Errorf("unhandled routing %T", routing)
	}
	if err != nil {
		return nil, err
	}

	resp.Headers = append(resp.Headers, s.certifier.Certify(req.URL, resp.StatusCode, resp.Headers, resp.Body)...)
	// HEAD carries the GET headers, certification included, but no body.
	if req.Method == http.MethodHead {
		resp.Body, resp.Streaming = nil, nil
	}
	s.logger.Debug(ctx, "Served request", "path", reqPath, "collection", collection, "method", req.Method, "status", resp.StatusCode)
	return resp, nil
}

func (s *Service) serve(ctx context.Context, cfg *models.StorageConfig, reqPath, collection, accessToken string, a *models.Asset, status int, reqHeaders []models.HeaderField) (*HTTPResponse, error) {
	acceptEncoding, _ := header(reqHeaders, "Accept-Encoding")
	name, enc, ok := chooseEncoding(a, acceptEncoding)
	if !ok || len(enc.ContentChunks) == 0 {
		return textResponse(http.StatusNotFound, http.StatusText(http.StatusNotFound)), nil
	}

	headers, err := responseHeaders(cfg, reqPath, a, name, enc)
	if err != nil {
		return nil, err
	}
	body, err := s.assets.Blob(ctx, enc.ContentChunks[0])
	if err != nil {
		return nil, fmt.Errorf("chunk 0 of %s: %w", a.Key.FullPath, err)
	}

	resp := &HTTPResponse{StatusCode: status, Headers: headers, Body: body}
	if len(enc.ContentChunks) > 1 {
		tok, err := s.sealer.Seal(StreamingToken{
			Collection:  collection,
			FullPath:    a.Key.FullPath,
			AccessToken: accessToken,
			Encoding:    name,
			Index:       1,
			Sha256:      enc.Sha256,
			Layout:      LayoutFingerprint(enc),
			Headers:     HeadersFingerprint(a.Headers),
		})
		if err != nil {
			return nil, err
		}
		resp.Streaming = &tok
	}
	return resp, nil
}

// StreamingCallback returns the chunk a token points at and the token of
// the next chunk, if any. A token whose asset changed since it was issued
// fails with common.ErrIntegrityMismatch.
func (s *Service) StreamingCallback(ctx context.Context, principal, raw string) (*StreamingResponse, error) {
	t, err := s.sealer.Open(raw)
	if err != nil {
		return nil, err
	}

	a, err := s.assets.Readable(ctx, principal, t.Collection, t.FullPath)
	if err != nil {
		return nil, err
	}
	if a == nil || !tokenMatches(a, t.AccessToken) {
		return nil, fmt.Errorf("asset %s: %w", t.FullPath, common.ErrorNotFound)
	}
	enc, ok := a.Encodings[t.Encoding]
	if !ok || enc.Sha256 != t.Sha256 || LayoutFingerprint(enc) != t.Layout || HeadersFingerprint(a.Headers) != t.Headers {
		return nil, fmt.Errorf("asset %s changed during streaming: %w", t.FullPath, common.ErrIntegrityMismatch)
	}
	if t.Index < 0 || t.Index >= len(enc.ContentChunks) {
		return nil, fmt.Errorf("chunk %d out of range: %w", t.Index, common.ErrInvalidInput)
	}

	body, err := s.assets.Blob(ctx, enc.ContentChunks[t.Index])
	if err != nil {
		return nil, fmt.Errorf("chunk %d of %s: %w", t.Index, t.FullPath, err)
	}
	resp := &StreamingResponse{Body: body}
	if t.Index+1 < len(enc.ContentChunks) {
		t.Index++
		next, err := s.sealer.Seal(t)
		if err != nil {
			return nil, err
		}
		resp.Token = &next
	}
	return resp, nil
}
