package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/securepay/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "SECUREPAY_"

// parseEnv overlays SECUREPAY_* environment variables, after loading the
// dotenv file named by -env if any.
func parseEnv(cfg *Config) {
	if envFile := flagx.EnvFileFlags(); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	}

	if v := os.Getenv(envPrefix + "SERVER_ADDRESS"); v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v := os.Getenv(envPrefix + "DB_FILE"); v != "" {
		cfg.DatabaseFile = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	envDuration(&cfg.OnlineCheckInterval, "ONLINE_CHECK_INTERVAL")
	envDuration(&cfg.RequestTimeout, "REQUEST_TIMEOUT")
}

func envDuration(dst *time.Duration, name string) {
	v := os.Getenv(envPrefix + name)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
