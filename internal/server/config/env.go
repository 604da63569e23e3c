package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/securepay/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "SECUREPAY_"

// parseEnv overlays SECUREPAY_* environment variables. When -env names a
// dotenv file it is loaded first; variables already set in the process
// environment take precedence over the file.
func parseEnv(config *Config) {
	if envFile := flagx.EnvFileFlags(); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	}

	envString(&config.EndpointAddrGRPC, "GRPC_ADDRESS")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")
	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	envDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.NotifyChannel, "NOTIFY_CHANNEL")
	envString(&config.LogLevel, "LOG_LEVEL")
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		*dst = v
	}
}

// envDuration accepts Go duration strings ("15m", "168h").
func envDuration(dst *time.Duration, name string) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
