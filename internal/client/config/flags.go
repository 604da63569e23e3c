package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/securepay/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-f", "-w", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabaseFile, "f", cfg.DatabaseFile, "local database file")
	requestTimeout := fs.Int("w", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds, 0 disables)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// durations keep their JSON/env value unless the flag was given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			if *onlineCheckInterval <= 0 {
				panic(fmt.Errorf("online check interval must be positive, got %d", *onlineCheckInterval))
			}
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "w":
			if *requestTimeout < 0 {
				panic(fmt.Errorf("request timeout must not be negative, got %d", *requestTimeout))
			}
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		}
	})
}
