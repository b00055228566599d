// Package client is the gRPC side of the satellite CLI. GRPCClient owns the
// connection, attaches the access token to every call and turns gRPC
// statuses back into the sentinel errors of internal/common, so callers
// match failures with errors.Is. ErrUnavailable reports an unreachable
// server.
package client
