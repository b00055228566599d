package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc": "www.example:9000",
		"database_dsn":       "postgres://db",
		"secret_key":         "my_secret_key",
		"s3_bucket":          "bucket",
		"batch_ttl":          "2m",
		"reap_interval":      float64(time.Second),
		"max_chunk_size":     2048,
		"generate_gzip":      false,
		"controllers":        []string{"root"},
		"log_format":         "text",
	})

	t.Run("loads from json over defaults", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		want := &Config{}
		want.LoadDefaults()
		want.EndpointAddrGRPC = "www.example:9000"
		want.DatabaseDSN = "postgres://db"
		want.SecretKey = "my_secret_key"
		want.S3Bucket = "bucket"
		want.BatchTTL = 2 * time.Minute
		want.ReapInterval = time.Second
		want.MaxChunkSize = 2048
		want.GenerateGzip = false
		want.Controllers = []string{"root"}
		want.LogFormat = "text"

		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		want := &Config{}
		want.LoadDefaults()
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("flags win over json", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", pathFlag, "-a", ":7000"}

		cfg := LoadConfig()
		assert.Equal(t, ":7000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
