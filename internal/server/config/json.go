package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/satellite/internal/flagx"
	"github.com/dmitrijs2005/satellite/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration,
// which accepts both "1s"-style strings and integer nanoseconds. Pointer
// fields tell an explicit false or zero apart from an absent key.
type JsonConfig struct {
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	TokenSecret        string         `json:"token_secret"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	BatchTTL           timex.Duration `json:"batch_ttl"`
	ReapInterval       timex.Duration `json:"reap_interval"`
	MaxChunkSize       int            `json:"max_chunk_size"`
	GenerateGzip       *bool          `json:"generate_gzip"`
	SnapshotPath       string         `json:"snapshot_path"`
	SnapshotPassphrase string         `json:"snapshot_passphrase"`
	Controllers        []string       `json:"controllers"`
	LogFormat          string         `json:"log_format"`
	LogLevel           string         `json:"log_level"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays values from the JSON file named by -c/-config onto
// config. Keys that are absent or empty keep the current value. An
// unreadable or malformed file panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TokenSecret, c.TokenSecret)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SnapshotPath, c.SnapshotPath)
	setString(&config.SnapshotPassphrase, c.SnapshotPassphrase)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)

	if c.BatchTTL.Duration > 0 {
		config.BatchTTL = c.BatchTTL.Duration
	}
	if c.ReapInterval.Duration > 0 {
		config.ReapInterval = c.ReapInterval.Duration
	}
	if c.MaxChunkSize > 0 {
		config.MaxChunkSize = c.MaxChunkSize
	}
	if c.GenerateGzip != nil {
		config.GenerateGzip = *c.GenerateGzip
	}
	if len(c.Controllers) > 0 {
		config.Controllers = c.Controllers
	}
}
