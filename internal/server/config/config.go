// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/satellite/internal/common"
)

// Config holds runtime settings for the satellite server.
//
// Fields:
//   - EndpointAddrGRPC / EndpointAddrHTTP: bind addresses of the gRPC API and the HTTP gateway.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory backend.
//   - SecretKey: HMAC secret verifying caller JWTs (HS256).
//   - TokenSecret: key of the continuation token MAC.
//   - S3*: object storage for chunk blobs. An empty S3Bucket keeps blobs in memory.
//   - BatchTTL / ReapInterval: upload batch lifetime and reaper period.
//   - MaxChunkSize: upper bound of an uploaded or generated chunk.
//   - GenerateGzip: derive a gzip encoding from identity commits.
//   - SnapshotPath: snapshot imported at boot (memory backend) and written on shutdown.
//   - SnapshotPassphrase: when set, snapshot files are encrypted with it.
//   - Controllers: principals bootstrapped as admin controllers.
//   - LogFormat / LogLevel: "json" or "text"; debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC   string
	EndpointAddrHTTP   string
	DatabaseDSN        string
	SecretKey          string
	TokenSecret        string
	S3RootUser         string
	S3RootPassword     string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	BatchTTL           time.Duration
	ReapInterval       time.Duration
	MaxChunkSize       int
	GenerateGzip       bool
	SnapshotPath       string
	SnapshotPassphrase string
	Controllers        []string
	LogFormat          string
	LogLevel           string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TokenSecret = "tokenSecret"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.BatchTTL = 5 * time.Minute
	c.ReapInterval = time.Minute
	c.MaxChunkSize = common.DefaultMaxChunkSize
	c.GenerateGzip = true
	c.SnapshotPath = ""
	c.SnapshotPassphrase = ""
	c.Controllers = nil
	c.LogFormat = "json"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
