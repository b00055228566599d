package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/satellite/internal/api"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/spf13/pflag"
)

func parseKind(s string) (models.RulesType, error) {
	k := models.RulesType(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown rules type %q, want db or storage", s)
	}
	return k, nil
}

func (a *App) ruleCommand() *Command {
	return &Command{
		Name:    "rule",
		Summary: "Manage collection rules. Controllers only.",
		Subcommands: []*Command{
			a.ruleGetCommand(),
			a.ruleListCommand(),
			a.ruleSetCommand(),
			a.ruleDelCommand(),
		},
	}
}

func (a *App) ruleGetCommand() *Command {
	return &Command{
		Name:    "get",
		Summary: "Print the rule of a collection.",
		Usage:   "<db|storage> <collection>",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("rule get: rules type and collection required")
			}
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				resp, err := c.GetRule(ctx, &api.GetRuleRequest{Kind: kind, Collection: args[1]})
				if err != nil {
					return nil, err
				}
				return resp.Rule, nil
			})
		},
	}
}

func (a *App) ruleListCommand() *Command {
	return &Command{
		Name:    "list",
		Summary: "List the rules of one store.",
		Usage:   "<db|storage>",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("rule list: rules type required")
			}
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				resp, err := c.ListRules(ctx, &api.ListRulesRequest{Kind: kind})
				if err != nil {
					return nil, err
				}
				return resp.Rules, nil
			})
		},
	}
}

func (a *App) ruleSetCommand() *Command {
	var (
		fs                 *pflag.FlagSet
		read, write        string
		maxSize            uint64
		maxChanges         uint32
		mutablePermissions bool
		version            uint64
	)
	return &Command{
		Name:    "set",
		Summary: "Create or update the rule of a collection.",
		Usage:   "<db|storage> <collection> [flags]",
		Flags: func() *pflag.FlagSet {
			fs = pflag.NewFlagSet("set", pflag.ContinueOnError)
			fs.StringVar(&read, "read", "managed", "read permission: public, private, managed or controllers")
			fs.StringVar(&write, "write", "managed", "write permission: public, private, managed or controllers")
			fs.Uint64Var(&maxSize, "max-size", 0, "maximum record size in bytes")
			fs.Uint32Var(&maxChanges, "max-changes", 0, "maximum records per user")
			fs.BoolVar(&mutablePermissions, "mutable-permissions", true, "allow later permission changes")
			fs.Uint64Var(&version, "version", 0, "expected current version")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("rule set: rules type and collection required")
			}
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			r, err := models.ParsePermission(read)
			if err != nil {
				return err
			}
			w, err := models.ParsePermission(write)
			if err != nil {
				return err
			}
			rule := models.SetRule{Read: r, Write: w, Version: optionalVersion(fs, version)}
			if fs.Changed("max-size") {
				rule.MaxSize = &maxSize
			}
			if fs.Changed("max-changes") {
				rule.MaxChangesPerUser = &maxChanges
			}
			if fs.Changed("mutable-permissions") {
				rule.MutablePermissions = &mutablePermissions
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				resp, err := c.SetRule(ctx, &api.SetRuleRequest{Kind: kind, Collection: args[1], Rule: rule})
				if err != nil {
					return nil, err
				}
				return resp.Rule, nil
			})
		},
	}
}

func (a *App) ruleDelCommand() *Command {
	var (
		fs      *pflag.FlagSet
		version uint64
	)
	return &Command{
		Name:    "del",
		Summary: "Delete the rule of a collection.",
		Usage:   "<db|storage> <collection> [flags]",
		Flags: func() *pflag.FlagSet {
			fs = pflag.NewFlagSet("del", pflag.ContinueOnError)
			fs.Uint64Var(&version, "version", 0, "expected current version")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("rule del: rules type and collection required")
			}
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			req := &api.DelRuleRequest{Kind: kind, Collection: args[1], Version: optionalVersion(fs, version)}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				_, err := c.DelRule(ctx, req)
				return nil, err
			})
		},
	}
}

func (a *App) controllerCommand() *Command {
	return &Command{
		Name:    "controller",
		Summary: "Manage controllers. Admin controllers only.",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List controllers.",
				Run: func(ctx context.Context, _ []string) error {
					return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
						resp, err := c.ListControllers(ctx, &api.Empty{})
						if err != nil {
							return nil, err
						}
						return resp.Controllers, nil
					})
				},
			},
			a.controllerSetCommand(),
			{
				Name:    "del",
				Summary: "Remove controllers.",
				Usage:   "<id>...",
				Run: func(ctx context.Context, args []string) error {
					if len(args) == 0 {
						return fmt.Errorf("controller del: at least one id required")
					}
					return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
						resp, err := c.DelControllers(ctx, &api.DelControllersRequest{IDs: args})
						if err != nil {
							return nil, err
						}
						return resp.Controllers, nil
					})
				},
			},
		},
	}
}

func (a *App) controllerSetCommand() *Command {
	var (
		scope    string
		expires  time.Duration
		metadata map[string]string
	)
	return &Command{
		Name:    "set",
		Summary: "Add or update controllers.",
		Usage:   "<id>... [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("set", pflag.ContinueOnError)
			fs.StringVar(&scope, "scope", "write", "controller scope: write or admin")
			fs.DurationVar(&expires, "expires", 0, "lifetime of the controllers, 0 for none")
			fs.StringToStringVar(&metadata, "metadata", nil, "metadata as key=value pairs")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("controller set: at least one id required")
			}
			sc, err := models.ParseControllerScope(scope)
			if err != nil {
				return err
			}
			ctrl := models.SetController{Scope: sc, Metadata: metadata}
			if expires > 0 {
				at := time.Now().Add(expires)
				ctrl.ExpiresAt = &at
			}
			return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
				resp, err := c.SetControllers(ctx, &api.SetControllersRequest{IDs: args, Controller: ctrl})
				if err != nil {
					return nil, err
				}
				return resp.Controllers, nil
			})
		},
	}
}

func (a *App) configCommand() *Command {
	var file string
	return &Command{
		Name:    "config",
		Summary: "Read or replace the hosting configuration.",
		Subcommands: []*Command{
			{
				Name:    "get",
				Summary: "Print the hosting configuration.",
				Run: func(ctx context.Context, _ []string) error {
					return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
						resp, err := c.GetConfig(ctx, &api.Empty{})
						if err != nil {
							return nil, err
						}
						return resp.Config, nil
					})
				},
			},
			{
				Name:    "set",
				Summary: "Replace the hosting configuration with a JSON file. Admin controllers only.",
				Usage:   "--file <path>",
				Flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("set", pflag.ContinueOnError)
					fs.StringVar(&file, "file", "", "JSON configuration file, - for stdin")
					return fs
				},
				Run: func(ctx context.Context, _ []string) error {
					if file == "" {
						return fmt.Errorf("config set: --file required")
					}
					cfg, err := readStorageConfig(file)
					if err != nil {
						return err
					}
					return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
						_, err := c.SetConfig(ctx, &api.SetConfigRequest{Config: cfg})
						return nil, err
					})
				},
			},
		},
	}
}

func readStorageConfig(file string) (*models.StorageConfig, error) {
	data, err := readData("", file)
	if err != nil {
		return nil, err
	}
	var cfg models.StorageConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	return &cfg, nil
}

func (a *App) domainCommand() *Command {
	return &Command{
		Name:    "domain",
		Summary: "Manage custom domains.",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List custom domains.",
				Run: func(ctx context.Context, _ []string) error {
					return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
						resp, err := c.ListCustomDomains(ctx, &api.Empty{})
						if err != nil {
							return nil, err
						}
						return resp.Domains, nil
					})
				},
			},
			{
				Name:    "set",
				Summary: "Serve a collection on a host name. Admin controllers only.",
				Usage:   "<domain> <collection>",
				Run: func(ctx context.Context, args []string) error {
					if len(args) != 2 {
						return fmt.Errorf("domain set: domain and collection required")
					}
					return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
						resp, err := c.SetCustomDomain(ctx, &api.SetCustomDomainRequest{Domain: args[0], Collection: args[1]})
						if err != nil {
							return nil, err
						}
						return resp.Domain, nil
					})
				},
			},
			{
				Name:    "del",
				Summary: "Remove a custom domain. Admin controllers only.",
				Usage:   "<domain>",
				Run: func(ctx context.Context, args []string) error {
					if len(args) != 1 {
						return fmt.Errorf("domain del: domain required")
					}
					return a.call(ctx, func(ctx context.Context, c *api.SatelliteClient) (any, error) {
						_, err := c.DelCustomDomain(ctx, &api.DelCustomDomainRequest{Domain: args[0]})
						return nil, err
					})
				},
			},
		},
	}
}
