package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/satellite/internal/api"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/spf13/pflag"
)

func (a *App) docCommand() *Command {
	return &Command{
		Name:    "doc",
		Summary: "Read and write datastore documents.",
		Subcommands: []*Command{
			a.docGetCommand(),
			a.docSetCommand(),
			a.docDelCommand(),
			a.docListCommand(),
			a.docCountCommand(),
			a.docClearCommand(),
		},
	}
}

func (a *App) docGetCommand() *Command {
	var raw bool
	return &Command{
		Name:    "get",
		Summary: "Print one document.",
		Usage:   "<collection> <key> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("get", pflag.ContinueOnError)
			fs.BoolVar(&raw, "raw", false, "print only the document data")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("doc get: collection and key required")
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				resp, err := c.GetDoc(ctx, &api.DocRequest{Collection: args[0], Key: args[1]})
				if err != nil {
					return nil, err
				}
				if resp.Doc == nil {
					return nil, fmt.Errorf("doc %s/%s: %w", args[0], args[1], common.ErrorNotFound)
				}
				if raw {
					_, err := a.out.Write(resp.Doc.Data)
					return nil, err
				}
				return resp.Doc, nil
			})
		},
	}
}

func (a *App) docSetCommand() *Command {
	var (
		fs          *pflag.FlagSet
		data, file  string
		description string
		delegates   []string
		version     uint64
	)
	return &Command{
		Name:    "set",
		Summary: "Create or update a document.",
		Usage:   "<collection> <key> [flags]",
		Flags: func() *pflag.FlagSet {
			fs = pflag.NewFlagSet("set", pflag.ContinueOnError)
			fs.StringVar(&data, "data", "", "document data")
			fs.StringVar(&file, "file", "", "read document data from a file, - for stdin")
			fs.StringVar(&description, "description", "", "document description")
			fs.StringSliceVar(&delegates, "delegate", nil, "principals allowed to manage the document")
			fs.Uint64Var(&version, "version", 0, "expected current version")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("doc set: collection and key required")
			}
			body, err := readData(data, file)
			if err != nil {
				return err
			}
			req := &api.SetDocRequest{
				Collection: args[0],
				Key:        args[1],
				Doc: models.SetDoc{
					Data:        body,
					Description: description,
					Delegates:   delegates,
					Version:     optionalVersion(fs, version),
				},
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				resp, err := c.SetDoc(ctx, req)
				if err != nil {
					return nil, err
				}
				return resp.Doc, nil
			})
		},
	}
}

func (a *App) docDelCommand() *Command {
	var (
		fs      *pflag.FlagSet
		version uint64
	)
	return &Command{
		Name:    "del",
		Summary: "Delete a document.",
		Usage:   "<collection> <key> [flags]",
		Flags: func() *pflag.FlagSet {
			fs = pflag.NewFlagSet("del", pflag.ContinueOnError)
			fs.Uint64Var(&version, "version", 0, "expected current version")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("doc del: collection and key required")
			}
			req := &api.DelDocRequest{
				Collection: args[0],
				Key:        args[1],
				Doc:        models.DelDoc{Version: optionalVersion(fs, version)},
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				_, err := c.DelDoc(ctx, req)
				return nil, err
			})
		},
	}
}

func (a *App) docListCommand() *Command {
	var lf listFlags
	return &Command{
		Name:    "list",
		Summary: "List documents of a collection.",
		Usage:   "<collection> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			lf.bind(fs)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("doc list: collection required")
			}
			params, err := lf.params()
			if err != nil {
				return err
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				resp, err := c.ListDocs(ctx, &api.ListRequest{Collection: args[0], Params: params})
				if err != nil {
					return nil, err
				}
				return resp.Results, nil
			})
		},
	}
}

func (a *App) docCountCommand() *Command {
	var lf listFlags
	return &Command{
		Name:    "count",
		Summary: "Count documents of a collection.",
		Usage:   "<collection> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("count", pflag.ContinueOnError)
			lf.bind(fs)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("doc count: collection required")
			}
			params, err := lf.params()
			if err != nil {
				return err
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				return c.CountDocs(ctx, &api.ListRequest{Collection: args[0], Params: params})
			})
		},
	}
}

func (a *App) docClearCommand() *Command {
	return &Command{
		Name:    "clear",
		Summary: "Delete every document of a collection. Controllers only.",
		Usage:   "<collection>",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("doc clear: collection required")
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				return c.DelDocs(ctx, &api.CollectionRequest{Collection: args[0]})
			})
		},
	}
}

// readData returns the inline data, or the content of file when set.
func readData(data, file string) ([]byte, error) {
	switch {
	case file == "-":
		return io.ReadAll(os.Stdin)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return b, nil
	}
	return []byte(data), nil
}
