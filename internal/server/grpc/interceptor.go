package grpc

import (
	"context"
	"path"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const principalKey ctxKey = "principal"

// principalFrom returns the authenticated principal or the anonymous one.
func principalFrom(ctx context.Context) string {
	if p, ok := ctx.Value(principalKey).(string); ok && p != "" {
		return p
	}
	return common.AnonymousPrincipal
}

// accessTokenInterceptor resolves the caller. Requests without a token run
// as anonymous; a token that does not verify is rejected.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}

	if accessToken == "" {
		return handler(context.WithValue(ctx, principalKey, common.AnonymousPrincipal), req)
	}

	principal, err := auth.PrincipalFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	return handler(context.WithValue(ctx, principalKey, principal), req)
}

// errorInterceptor converts service errors into gRPC statuses.
func (s *GRPCServer) errorInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err == nil {
		return resp, nil
	}
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, "Request failed", "method", info.FullMethod, "error", err)
	}
	return nil, st
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.observer == nil {
		return handler(ctx, req)
	}
	start := s.clock.Now()
	resp, err := handler(ctx, req)
	s.observer.ObserveRPC(path.Base(info.FullMethod), status.Code(err).String(), s.clock.Now().Sub(start))
	return resp, err
}
