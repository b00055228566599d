package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/satellite/internal/server/auth"
	"github.com/spf13/pflag"
)

func (a *App) tokenCommand() *Command {
	var validity time.Duration
	return &Command{
		Name:    "token",
		Summary: "Mint an access token for a principal with the shared JWT secret.",
		Usage:   "<principal> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
			fs.DurationVar(&validity, "validity", 24*time.Hour, "token lifetime")
			return fs
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("token: principal required")
			}
			tok, err := auth.GenerateToken(args[0], []byte(a.config.SecretKey), validity)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, tok)
			return err
		},
	}
}
