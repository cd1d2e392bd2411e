package config

import "time"

// Config holds runtime settings for the sealpost CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the relay HTTP endpoint.
//   - TokenTTL: validity window of the tokens the client mints.
type Config struct {
	ServerEndpointAddr string
	TokenTTL           time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://localhost:8080"
	c.TokenTTL = 5 * time.Minute
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
