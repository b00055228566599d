package client

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/satellite/internal/api"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	api         *api.SatelliteClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// mapError converts a call failure into a common sentinel error.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.Unavailable {
		return fmt.Errorf("%w: %s", ErrUnavailable, status.Convert(err).Message())
	}
	return api.FromStatus(err)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	ctx = withAccessToken(ctx, s.accessToken)
	return mapError(invoker(ctx, method, req, reply, cc, opts...))
}

// NewGRPCClient connects to endpointURL. accessToken may be empty for
// anonymous calls. Extra dial options are appended after the defaults.
func NewGRPCClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.api = api.NewSatelliteClient(conn)
	return c, nil
}

// API returns the typed service stub. Its errors are already mapped.
func (s *GRPCClient) API() *api.SatelliteClient {
	return s.api
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	_, err := s.api.Ping(ctx, &api.Empty{})
	return err
}

// Fetch issues a GET through the delivery protocol and copies the whole
// body, following continuation tokens, to w.
func (s *GRPCClient) Fetch(ctx context.Context, url string, headers []models.HeaderField, w io.Writer) (*api.HttpResponse, error) {
	resp, err := s.api.HttpRequest(ctx, &api.HttpRequest{Method: "GET", URL: url, Headers: headers})
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(resp.Body); err != nil {
		return nil, err
	}
	for tok := resp.StreamingToken; tok != nil; {
		next, err := s.api.HttpRequestStreamingCallback(ctx, &api.StreamingCallbackRequest{Token: *tok})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(next.Body); err != nil {
			return nil, err
		}
		tok = next.Token
	}
	return resp, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}
