package config

import "time"

// Config holds runtime settings for the satellite CLI.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	SecretKey          string
	CallTimeout        time.Duration
}

// GlobalFlags are the command-line flags owned by this package.
var GlobalFlags = []string{"-a", "-k", "-s", "-t", "-c", "-config"}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.AccessToken = ""
	c.SecretKey = "secretKey"
	c.CallTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
