package config

import (
	"os"

	"github.com/dmitrijs2005/satellite/internal/flagx"
	"github.com/spf13/pflag"
)

// serverFlags lists the short flags handled by parseFlags.
var serverFlags = []string{
	"-a", "-w", "-d", "-s", "-k", "-u", "-p", "-b", "-g", "-e",
	"-t", "-i", "-m", "-z", "-f", "-y", "-o", "-l", "-v",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-w string     HTTP gateway bind address
//	-d string     PostgreSQL DSN, empty for the in-memory backend
//	-s string     JWT HMAC secret key
//	-k string     continuation token secret
//	-u, -p        S3 root user and password
//	-b, -g, -e    S3 bucket, region and base endpoint
//	-t duration   upload batch TTL
//	-i duration   batch reaper interval
//	-m int        max chunk size in bytes
//	-z bool       generate gzip encodings
//	-f string     snapshot file
//	-y string     snapshot passphrase
//	-o strings    bootstrap admin controllers (repeatable or comma separated)
//	-l string     log format, json or text
//	-v string     log level
//
// The arguments are first filtered with flagx.FilterArgs so flags meant for
// other components (-c) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)

	fs.StringVarP(&config.EndpointAddrGRPC, "grpc-address", "a", config.EndpointAddrGRPC, "address and port of the gRPC API")
	fs.StringVarP(&config.EndpointAddrHTTP, "http-address", "w", config.EndpointAddrHTTP, "address and port of the HTTP gateway")
	fs.StringVarP(&config.DatabaseDSN, "database-dsn", "d", config.DatabaseDSN, "database DSN")
	fs.StringVarP(&config.SecretKey, "secret-key", "s", config.SecretKey, "JWT secret key")
	fs.StringVarP(&config.TokenSecret, "token-secret", "k", config.TokenSecret, "continuation token secret")

	fs.StringVarP(&config.S3RootUser, "s3-user", "u", config.S3RootUser, "S3 root user")
	fs.StringVarP(&config.S3RootPassword, "s3-password", "p", config.S3RootPassword, "S3 root password")
	fs.StringVarP(&config.S3Bucket, "s3-bucket", "b", config.S3Bucket, "S3 bucket, empty keeps blobs in memory")
	fs.StringVarP(&config.S3Region, "s3-region", "g", config.S3Region, "S3 region")
	fs.StringVarP(&config.S3BaseEndpoint, "s3-endpoint", "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.DurationVarP(&config.BatchTTL, "batch-ttl", "t", config.BatchTTL, "upload batch lifetime")
	fs.DurationVarP(&config.ReapInterval, "reap-interval", "i", config.ReapInterval, "expired batch reaper period")
	fs.IntVarP(&config.MaxChunkSize, "max-chunk-size", "m", config.MaxChunkSize, "max chunk size in bytes")
	fs.BoolVarP(&config.GenerateGzip, "gzip", "z", config.GenerateGzip, "generate gzip encodings")
	fs.StringVarP(&config.SnapshotPath, "snapshot", "f", config.SnapshotPath, "snapshot file")
	fs.StringVarP(&config.SnapshotPassphrase, "snapshot-passphrase", "y", config.SnapshotPassphrase, "encrypt snapshot files with this passphrase")
	fs.StringSliceVarP(&config.Controllers, "controllers", "o", config.Controllers, "bootstrap admin controllers")
	fs.StringVarP(&config.LogFormat, "log-format", "l", config.LogFormat, "log format (json|text)")
	fs.StringVarP(&config.LogLevel, "log-level", "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
