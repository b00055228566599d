package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/spf13/pflag"
)

func (a *App) getCommand() *Command {
	var (
		headers []string
		verbose bool
	)
	return &Command{
		Name:    "get",
		Summary: "Fetch a URL through the delivery protocol and write the body to stdout.",
		Usage:   "<url> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("get", pflag.ContinueOnError)
			fs.StringArrayVarP(&headers, "header", "H", nil, "request header as Name: value")
			fs.BoolVarP(&verbose, "verbose", "v", false, "print the status and response headers first")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("get: url required")
			}
			fields, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			c, err := a.conn()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(ctx, a.config.CallTimeout)
			defer cancel()

			if !verbose {
				_, err = c.Fetch(ctx, args[0], fields, a.out)
				return err
			}
			var body strings.Builder
			resp, err := c.Fetch(ctx, args[0], fields, &body)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d\n", resp.StatusCode)
			for _, h := range resp.Headers {
				fmt.Fprintf(a.out, "%s: %s\n", h.Name, h.Value)
			}
			fmt.Fprintln(a.out)
			_, err = fmt.Fprint(a.out, body.String())
			return err
		},
	}
}

func parseHeaders(raw []string) ([]models.HeaderField, error) {
	out := make([]models.HeaderField, 0, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("malformed header %q", h)
		}
		out = append(out, models.HeaderField{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return out, nil
}
