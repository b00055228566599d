package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/satellite/internal/api"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/spf13/pflag"
)

func (a *App) assetCommand() *Command {
	return &Command{
		Name:    "asset",
		Summary: "Inspect and delete stored assets.",
		Subcommands: []*Command{
			a.assetGetCommand(),
			a.assetListCommand(),
			a.assetCountCommand(),
			a.assetDelCommand(),
			a.assetClearCommand(),
		},
	}
}

func (a *App) assetGetCommand() *Command {
	return &Command{
		Name:    "get",
		Summary: "Print the metadata of one asset.",
		Usage:   "<collection> <full-path>",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("asset get: collection and full path required")
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				resp, err := c.GetAsset(ctx, &api.AssetRequest{Collection: args[0], FullPath: args[1]})
				if err != nil {
					return nil, err
				}
				if resp.Asset == nil {
					return nil, fmt.Errorf("asset %s: %w", args[1], common.ErrorNotFound)
				}
				return resp.Asset, nil
			})
		},
	}
}

func (a *App) assetListCommand() *Command {
	var lf listFlags
	return &Command{
		Name:    "list",
		Summary: "List assets of a collection.",
		Usage:   "<collection> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			lf.bind(fs)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("asset list: collection required")
			}
			params, err := lf.params()
			if err != nil {
				return err
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				resp, err := c.ListAssets(ctx, &api.ListRequest{Collection: args[0], Params: params})
				if err != nil {
					return nil, err
				}
				return resp.Results, nil
			})
		},
	}
}

func (a *App) assetCountCommand() *Command {
	var lf listFlags
	return &Command{
		Name:    "count",
		Summary: "Count assets of a collection.",
		Usage:   "<collection> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("count", pflag.ContinueOnError)
			lf.bind(fs)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("asset count: collection required")
			}
			params, err := lf.params()
			if err != nil {
				return err
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				return c.CountAssets(ctx, &api.ListRequest{Collection: args[0], Params: params})
			})
		},
	}
}

func (a *App) assetDelCommand() *Command {
	var (
		fs      *pflag.FlagSet
		version uint64
	)
	return &Command{
		Name:    "del",
		Summary: "Delete an asset with all its encodings.",
		Usage:   "<collection> <full-path> [flags]",
		Flags: func() *pflag.FlagSet {
			fs = pflag.NewFlagSet("del", pflag.ContinueOnError)
			fs.Uint64Var(&version, "version", 0, "expected current version")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("asset del: collection and full path required")
			}
			req := &api.DelAssetRequest{
				Collection: args[0],
				FullPath:   args[1],
				Asset:      models.DelAsset{Version: optionalVersion(fs, version)},
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				_, err := c.DelAsset(ctx, req)
				return nil, err
			})
		},
	}
}

func (a *App) assetClearCommand() *Command {
	return &Command{
		Name:    "clear",
		Summary: "Delete every asset of a collection. Controllers only.",
		Usage:   "<collection>",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("asset clear: collection required")
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				return c.DelAssets(ctx, &api.CollectionRequest{Collection: args[0]})
			})
		},
	}
}
