package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/auth"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestServer(secret string) *GRPCServer {
	return &GRPCServer{
		logger:    logging.Nop{},
		jwtSecret: []byte(secret),
		clock:     testclock.NewClock(time.Time{}),
	}
}

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/satellite.Satellite/GetDoc"}

func capture(seen *string) grpc.UnaryHandler {
	return func(ctx context.Context, req any) (any, error) {
		*seen = principalFrom(ctx)
		return "ok", nil
	}
}

func withToken(tok string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, tok))
}

func TestAccessTokenInterceptor_MissingTokenIsAnonymous(t *testing.T) {
	s := newTestServer("secret")
	var seen string
	resp, err := s.accessTokenInterceptor(context.Background(), nil, testInfo, capture(&seen))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, common.AnonymousPrincipal, seen)
}

func TestAccessTokenInterceptor_ValidToken(t *testing.T) {
	s := newTestServer("secret")
	tok, err := auth.GenerateToken("alice", []byte("secret"), time.Minute)
	require.NoError(t, err)

	var seen string
	_, err = s.accessTokenInterceptor(withToken(tok), nil, testInfo, capture(&seen))
	require.NoError(t, err)
	assert.Equal(t, "alice", seen)
}

func TestAccessTokenInterceptor_Rejects(t *testing.T) {
	s := newTestServer("secret")
	wrongKey, err := auth.GenerateToken("alice", []byte("other"), time.Minute)
	require.NoError(t, err)
	expired, err := auth.GenerateToken("alice", []byte("secret"), -time.Minute)
	require.NoError(t, err)

	for name, tok := range map[string]string{"garbage": "not-a-jwt", "wrong key": wrongKey, "expired": expired} {
		t.Run(name, func(t *testing.T) {
			called := false
			_, err := s.accessTokenInterceptor(withToken(tok), nil, testInfo, func(context.Context, any) (any, error) {
				called = true
				return nil, nil
			})
			assert.Equal(t, codes.Unauthenticated, status.Code(err))
			assert.False(t, called)
		})
	}
}

func TestErrorInterceptor_MapsErrors(t *testing.T) {
	s := newTestServer("secret")
	_, err := s.errorInterceptor(context.Background(), nil, testInfo, func(context.Context, any) (any, error) {
		return nil, common.ErrBatchExpired
	})
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
}

func TestMetricsInterceptor_RecordsCode(t *testing.T) {
	s := newTestServer("secret")
	obs := &recordingObserver{}
	s.observer = obs
	_, _ = s.metricsInterceptor(context.Background(), nil, testInfo, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "x")
	})
	assert.Equal(t, []string{"GetDoc:NotFound"}, obs.calls)
}

func TestPrincipalFrom_DefaultsToAnonymous(t *testing.T) {
	assert.Equal(t, common.AnonymousPrincipal, principalFrom(context.Background()))
	assert.Equal(t, "bob", principalFrom(context.WithValue(context.Background(), principalKey, "bob")))
}
