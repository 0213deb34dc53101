package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/accounts/internal/flagx"
)

// parseFlags populates Config from command-line flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret (prefer ACCOUNTS_SECRET_KEY)
//	-i int      sweep interval, seconds
//	-t int      inactivity threshold, days
//	-r int      authenticate requests per minute per IP
//	-l string   log level
//
// Only these flags are picked out of args, so other components may define
// their own.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-i", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	sweepInterval := fs.Int("i", int(config.SweepInterval.Seconds()), "sweep interval (in seconds)")
	threshold := fs.Int("t", int(config.InactivityThreshold.Hours()/24), "inactivity threshold (in days)")
	fs.IntVar(&config.AuthRateLimit, "r", config.AuthRateLimit, "authenticate requests per minute per IP")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			config.SweepInterval = time.Duration(*sweepInterval) * time.Second
		case "t":
			config.InactivityThreshold = time.Duration(*threshold) * 24 * time.Hour
		}
	})
}
