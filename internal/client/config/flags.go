package config

import (
	"os"

	"github.com/dmitrijs2005/satellite/internal/flagx"
	"github.com/spf13/pflag"
)

// parseFlags populates Config fields from the global command-line flags.
// Subcommand arguments are filtered out first with flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-s", "-t"})

	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)

	fs.StringVarP(&cfg.ServerEndpointAddr, "address", "a", cfg.ServerEndpointAddr, "address and port of the satellite server")
	fs.StringVarP(&cfg.AccessToken, "access-token", "k", cfg.AccessToken, "access token")
	fs.StringVarP(&cfg.SecretKey, "secret-key", "s", cfg.SecretKey, "JWT secret for minting tokens")
	fs.DurationVarP(&cfg.CallTimeout, "timeout", "t", cfg.CallTimeout, "per-call timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
