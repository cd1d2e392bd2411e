// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the sealpost relay server.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP/WebSocket endpoint.
//   - DatabaseDSN: PostgreSQL DSN for the identity repository, or "memory"
//     to keep identities in process memory.
//   - TokenLeeway: clock-skew tolerance for iat/exp validation.
//   - ReplayTTLFloor: minimum retention window for seen token ids.
//   - AllowedOrigins: origin patterns accepted on the WebSocket handshake.
type Config struct {
	EndpointAddr   string
	DatabaseDSN    string
	TokenLeeway    time.Duration
	ReplayTTLFloor time.Duration
	AllowedOrigins []string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: the permissive origin patterns should be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.DatabaseDSN = "memory"
	c.TokenLeeway = 60 * time.Second
	c.ReplayTTLFloor = 10 * time.Minute
	c.AllowedOrigins = []string{"localhost:*", "127.0.0.1:*"}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
