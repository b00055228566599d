// Package cli implements the satellite command-line client: a tree of
// subcommands over the gRPC API for documents, assets, rules, controllers,
// hosting settings and directory deploys, plus a token minting helper.
//
// Global connection flags are handled by internal/client/config; the
// dispatcher strips them before parsing subcommand flags.
package cli
