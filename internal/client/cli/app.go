package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/satellite/internal/api"
	"github.com/dmitrijs2005/satellite/internal/buildinfo"
	"github.com/dmitrijs2005/satellite/internal/client/client"
	"github.com/dmitrijs2005/satellite/internal/client/config"
	"github.com/dmitrijs2005/satellite/internal/flagx"
	"github.com/dmitrijs2005/satellite/internal/logging"
)

type App struct {
	config *config.Config
	out    io.Writer
	logger logging.Logger

	// dial opens the connection on first use.
	dial   func() (*client.GRPCClient, error)
	client *client.GRPCClient
}

func NewApp(c *config.Config, out io.Writer, l logging.Logger) *App {
	a := &App{config: c, out: out, logger: l}
	a.dial = func() (*client.GRPCClient, error) {
		return client.NewGRPCClient(c.ServerEndpointAddr, c.AccessToken)
	}
	return a
}

func (a *App) conn() (*client.GRPCClient, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := a.dial()
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", a.config.ServerEndpointAddr, err)
	}
	a.client = c
	return c, nil
}

func (a *App) api() (*api.SatelliteClient, error) {
	c, err := a.conn()
	if err != nil {
		return nil, err
	}
	return c.API(), nil
}

// call runs fn with the configured per-call timeout.
func (a *App) call(ctx context.Context, fn func(ctx context.Context, c *api.SatelliteClient) (any, error)) error {
	c, err := a.api()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, a.config.CallTimeout)
	defer cancel()
	v, err := fn(ctx, c)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return a.printJSON(v)
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Close releases the connection, if one was opened.
func (a *App) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func (a *App) root() *Command {
	return &Command{
		Name:    "satellite-cli",
		Summary: "Command-line client of a satellite server.",
		Subcommands: []*Command{
			a.versionCommand(),
			a.pingCommand(),
			a.tokenCommand(),
			a.docCommand(),
			a.assetCommand(),
			a.deployCommand(),
			a.getCommand(),
			a.ruleCommand(),
			a.controllerCommand(),
			a.configCommand(),
			a.domainCommand(),
		},
	}
}

// Run executes the command line args (without the program name). Global
// connection flags are removed first.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.Close()
	return a.root().Execute(ctx, a.out, flagx.RemoveArgs(args, config.GlobalFlags))
}

func (a *App) pingCommand() *Command {
	return &Command{
		Name:    "ping",
		Summary: "Check that the server answers.",
		Run: func(ctx context.Context, _ []string) error {
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				return c.Ping(ctx, &api.Empty{})
			})
		},
	}
}

func (a *App) versionCommand() *Command {
	return &Command{
		Name:    "version",
		Summary: "Print build information.",
		Run: func(context.Context, []string) error {
			buildinfo.PrintBuildData(a.out)
			return nil
		},
	}
}
