// Package config holds the settings of the aviato operator CLI: defaults,
// an optional JSON file and command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the aviato CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gRPC AvailabilityService.
//   - SecretKey: HMAC secret shared with the server, used to mint access tokens
//     for the user the operator acts as.
//   - AccessTokenValidityDuration: lifetime of minted tokens.
//   - RequestTimeout: deadline applied to each RPC.
type Config struct {
	ServerEndpointAddr          string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	RequestTimeout              time.Duration
}

// LoadDefaults populates c with development defaults matching the server's.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = time.Hour
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
