package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/satellite/internal/client/client"
	"github.com/dmitrijs2005/satellite/internal/client/config"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/auth"
	"github.com/dmitrijs2005/satellite/internal/server/blobstore"
	"github.com/dmitrijs2005/satellite/internal/server/delivery"
	satgrpc "github.com/dmitrijs2005/satellite/internal/server/grpc"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/satellite/internal/server/services"
	"github.com/dmitrijs2005/satellite/internal/server/uploads"
	"github.com/juju/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "cli-secret"

// startServer runs a satellite over bufconn with "admin" as controller.
func startServer(t *testing.T) *bufconn.Listener {
	t.Helper()
	store := &services.Store{
		Tx:     dbx.NewMutexTransactor(),
		Repos:  repomanager.NewMemoryRepositoryManager(),
		Clock:  clock.WallClock,
		Logger: logging.Nop{},
	}
	controllers := services.NewControllerService(store)
	require.NoError(t, controllers.Bootstrap(context.Background(), []string{"admin"}))

	arena := uploads.NewArena(clock.WallClock, time.Minute, 1024, logging.Nop{})
	assets := services.NewAssetService(store, arena, blobstore.NewMemoryStore(), nil, services.AssetOptions{MaxChunkSize: common.DefaultMaxChunkSize})
	settings := services.NewSettingsService(store)
	svc := satgrpc.Services{
		Docs:        services.NewDocService(store, nil),
		Assets:      assets,
		Rules:       services.NewRuleService(store),
		Controllers: controllers,
		Settings:    settings,
		Delivery:    delivery.NewService(assets, settings, delivery.NewSealer([]byte("k")), nil, logging.Nop{}),
	}
	srv := satgrpc.NewGRPCServer("bufnet", logging.Nop{}, svc, nil, clock.WallClock, testSecret)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return lis
}

// run executes one command line as principal and returns its output.
func run(t *testing.T, lis *bufconn.Listener, principal string, args ...string) (string, error) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecret
	if principal != "" {
		tok, err := auth.GenerateToken(principal, []byte(testSecret), time.Hour)
		require.NoError(t, err)
		cfg.AccessToken = tok
	}

	var out bytes.Buffer
	a := NewApp(cfg, &out, logging.Nop{})
	a.dial = func() (*client.GRPCClient, error) {
		return client.NewGRPCClient("passthrough:///bufnet", cfg.AccessToken,
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	}
	err := a.Run(context.Background(), args)
	return out.String(), err
}

func TestCLI_Ping(t *testing.T) {
	lis := startServer(t)
	out, err := run(t, lis, "", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, `"OK"`)
}

func TestCLI_GlobalFlagsAreIgnored(t *testing.T) {
	lis := startServer(t)
	_, err := run(t, lis, "", "-a", "elsewhere:1", "ping", "-t=5s")
	require.NoError(t, err)
}

func TestCLI_DocRoundTrip(t *testing.T) {
	lis := startServer(t)

	out, err := run(t, lis, "alice", "doc", "set", "notes", "n1", "--data", "hello", "--description", "first")
	require.NoError(t, err)
	var doc models.Doc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "alice", doc.Owner)
	assert.Equal(t, uint64(1), doc.Version)

	out, err = run(t, lis, "alice", "doc", "get", "notes", "n1", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = run(t, lis, "alice", "doc", "set", "notes", "n1", "--data", "again", "--version", "7")
	assert.ErrorIs(t, err, common.ErrVersionConflict)

	out, err = run(t, lis, "alice", "doc", "count", "notes")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Count":1}`, out)

	_, err = run(t, lis, "alice", "doc", "del", "notes", "n1", "--version", "1")
	require.NoError(t, err)

	_, err = run(t, lis, "alice", "doc", "get", "notes", "n1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCLI_DocSetFromFile(t *testing.T) {
	lis := startServer(t)
	file := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"a":1}`), 0o600))

	_, err := run(t, lis, "alice", "doc", "set", "notes", "n1", "--file", file)
	require.NoError(t, err)

	out, err := run(t, lis, "alice", "doc", "get", "notes", "n1", "--raw")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}

func TestCLI_AdminCommands(t *testing.T) {
	lis := startServer(t)

	_, err := run(t, lis, "bob", "rule", "set", "db", "posts", "--read", "public")
	assert.ErrorIs(t, err, common.ErrPermissionDenied)

	out, err := run(t, lis, "admin", "rule", "set", "db", "posts", "--read", "public", "--write", "private", "--max-size", "64")
	require.NoError(t, err)
	var rule models.Rule
	require.NoError(t, json.Unmarshal([]byte(out), &rule))
	assert.Equal(t, models.PermissionPublic, rule.Read)
	assert.Equal(t, models.PermissionPrivate, rule.Write)
	require.NotNil(t, rule.MaxSize)
	assert.Equal(t, uint64(64), *rule.MaxSize)

	_, err = run(t, lis, "admin", "rule", "set", "db", "posts", "--read", "everyone")
	assert.Error(t, err)

	out, err = run(t, lis, "admin", "controller", "set", "carol", "--scope", "write", "--metadata", "team=web")
	require.NoError(t, err)
	assert.Contains(t, out, "carol")

	out, err = run(t, lis, "admin", "controller", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "carol")
	assert.Contains(t, out, "admin")

	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"Rewrites":{"/**":"/index.html"}}`), 0o600))
	_, err = run(t, lis, "admin", "config", "set", "--file", file)
	require.NoError(t, err)

	out, err = run(t, lis, "", "config", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "/index.html")

	_, err = run(t, lis, "admin", "domain", "set", "example.org", "#dapp")
	require.NoError(t, err)
	out, err = run(t, lis, "admin", "domain", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "example.org")
}

func TestCLI_DeployAndGet(t *testing.T) {
	lis := startServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), bytes.Repeat([]byte("<p>hi</p>"), 100), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "logo.png"), []byte{0x89, 'P', 'N', 'G'}, 0o600))

	out, err := run(t, lis, "admin", "deploy", dir, "--chunk-size", "64")
	require.NoError(t, err)
	assert.Contains(t, out, `"Files": 2`)

	out, err = run(t, lis, "", "get", "/img/logo.png")
	require.NoError(t, err)
	assert.Equal(t, string([]byte{0x89, 'P', 'N', 'G'}), out)

	out, err = run(t, lis, "", "get", "/index.html", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "200\n")

	out, err = run(t, lis, "admin", "asset", "count", "#dapp")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Count":2}`, out)

	_, err = run(t, lis, "admin", "asset", "del", "#dapp", "/img/logo.png")
	require.NoError(t, err)

	out, err = run(t, lis, "", "get", "/img/logo.png", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "404\n")
}

func TestCLI_UnknownCommand(t *testing.T) {
	_, err := run(t, nil, "", "frobnicate")
	assert.ErrorContains(t, err, "unknown command")
}

func TestCLI_HelpListsCommands(t *testing.T) {
	out, err := run(t, nil, "", "--help")
	require.NoError(t, err)
	for _, name := range []string{"ping", "doc", "deploy", "rule", "controller"} {
		assert.Contains(t, out, name)
	}
}

func TestCLI_Token(t *testing.T) {
	out, err := run(t, nil, "", "token", "alice", "--validity", "1m")
	require.NoError(t, err)
	sub, err := auth.PrincipalFromToken(trimNewline(out), []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, nil, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Build version:")
}
