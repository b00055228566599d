// Package config loads runtime configuration for the satellite CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the satellite gRPC endpoint
//	-k string     access token sent with every call
//	-s string     JWT secret used by the token command
//	-t duration   per-call timeout
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "eyJ...",
//	  "secret_key": "secretKey",
//	  "call_timeout": "30s"
//	}
//
// GlobalFlags lists the flags above so the command dispatcher can strip them
// before parsing subcommand arguments.
package config
