package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/satellite/internal/client/deploy"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/spf13/pflag"
)

func (a *App) deployCommand() *Command {
	var opts deploy.Options
	return &Command{
		Name:    "deploy",
		Summary: "Upload a directory as assets. Files keep their relative paths.",
		Usage:   "<dir> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("deploy", pflag.ContinueOnError)
			fs.StringVar(&opts.Collection, "collection", "#dapp", "target collection")
			fs.IntVar(&opts.ChunkSize, "chunk-size", common.DefaultMaxChunkSize, "upload chunk size in bytes")
			fs.BoolVar(&opts.Gzip, "gzip", true, "also upload gzip encodings of text files")
			fs.IntVar(&opts.Concurrency, "concurrency", 4, "files uploaded in parallel")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("deploy: directory required")
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			res, err := deploy.New(c, opts, a.logger).Run(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
}
