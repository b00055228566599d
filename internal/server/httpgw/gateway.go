// Package httpgw serves the delivery protocol and Prometheus metrics over
// plain HTTP.
package httpgw

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/auth"
	"github.com/dmitrijs2005/satellite/internal/server/delivery"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Delivery is the protocol the gateway translates HTTP into.
type Delivery interface {
	HTTPRequest(ctx context.Context, principal string, req delivery.HTTPRequest) (*delivery.HTTPResponse, error)
	StreamingCallback(ctx context.Context, principal, token string) (*delivery.StreamingResponse, error)
}

// Observer records delivered status codes.
type Observer interface {
	ObserveHTTP(status int)
}

type Gateway struct {
	address   string
	delivery  Delivery
	gatherer  prometheus.Gatherer
	observer  Observer
	logger    logging.Logger
	jwtSecret []byte
}

// New returns a gateway. gatherer and observer may be nil.
func New(address string, l logging.Logger, d Delivery, gatherer prometheus.Gatherer, observer Observer, secretKey string) *Gateway {
	return &Gateway{
		address:   address,
		delivery:  d,
		gatherer:  gatherer,
		observer:  observer,
		logger:    l.With("module", "http_gateway"),
		jwtSecret: []byte(secretKey),
	}
}

// Handler returns the routes of the gateway.
func (g *Gateway) Handler() http.Handler {
	r := mux.NewRouter()
	if g.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(g.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.PathPrefix("/").HandlerFunc(g.serve)
	return r
}

// Run listens on the configured address until ctx is done.
func (g *Gateway) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", g.address)
	if err != nil {
		return err
	}
	return g.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is done.
func (g *Gateway) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		g.logger.Info(ctx, "Stopping HTTP gateway...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	g.logger.Info(ctx, "Starting HTTP gateway", "address", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// principal resolves an optional bearer token.
func (g *Gateway) principal(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return common.AnonymousPrincipal, nil
	}
	tok, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return "", common.ErrInvalidToken
	}
	return auth.PrincipalFromToken(tok, g.jwtSecret)
}

func requestHeaders(r *http.Request) []models.HeaderField {
	out := []models.HeaderField{{Name: "Host", Value: r.Host}}
	for name, values := range r.Header {
		if strings.EqualFold(name, "Authorization") {
			continue
		}
		for _, v := range values {
			out = append(out, models.HeaderField{Name: name, Value: v})
		}
	}
	return out
}

func (g *Gateway) observe(status int) {
	if g.observer != nil {
		g.observer.ObserveHTTP(status)
	}
}

func (g *Gateway) fail(w http.ResponseWriter, status int) {
	g.observe(status)
	http.Error(w, http.StatusText(status), status)
}

func (g *Gateway) serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := g.principal(r)
	if err != nil {
		g.fail(w, http.StatusUnauthorized)
		return
	}

	resp, err := g.delivery.HTTPRequest(ctx, principal, delivery.HTTPRequest{
		Method:  r.Method,
		URL:     r.URL.RequestURI(),
		Headers: requestHeaders(r),
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			g.fail(w, http.StatusBadRequest)
			return
		}
		g.logger.Error(ctx, "Delivery failed", "path", r.URL.Path, "error", err)
		g.fail(w, http.StatusInternalServerError)
		return
	}

	for _, h := range resp.Headers {
		w.Header().Add(h.Name, h.Value)
	}
	w.WriteHeader(resp.StatusCode)
	g.observe(resp.StatusCode)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		return
	}

	// the status line is already sent, a broken stream can only be cut short
	for tok := resp.Streaming; tok != nil; {
		next, err := g.delivery.StreamingCallback(ctx, principal, *tok)
		if err != nil {
			g.logger.Warn(ctx, "Streaming aborted", "path", r.URL.Path, "error", err)
			return
		}
		if _, err := w.Write(next.Body); err != nil {
			return
		}
		tok = next.Token
	}
}
