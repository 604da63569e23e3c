package config

import "time"

// DefaultOnlineCheckInterval replaces a missing or non-positive interval.
const DefaultOnlineCheckInterval = 3 * time.Second

// Config holds runtime settings for the SecurePay CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DatabaseFile: SQLite file holding the session and saved goals.
//   - RequestTimeout: upper bound for a single remote call.
//   - LogLevel: level of the stderr logger.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	DatabaseFile        string
	RequestTimeout      time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = DefaultOnlineCheckInterval
	c.DatabaseFile = "securepay.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON, the environment and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if cfg.OnlineCheckInterval <= 0 {
		cfg.OnlineCheckInterval = DefaultOnlineCheckInterval
	}
	return cfg
}
