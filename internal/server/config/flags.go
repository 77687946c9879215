package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags overlays command-line flags.
//
//	-a string     gRPC bind address
//	-m string     metrics bind address (empty disables)
//	-d string     PostgreSQL DSN
//	-s string     token signing secret
//	-k string     admin token for maintenance calls
//	-t int        access token validity, minutes
//	-g int        reset grant validity, minutes
//	-ttl dur      verification code lifetime
//	-n int        code length in digits
//	-w dur        expired code sweep interval (0 disables)
//	-l string     log level
//	-mail string  mail driver: log, smtp or ses
//	-r string     redis address for rate limiting
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-s", "-k", "-t", "-g", "-ttl", "-n", "-w", "-l", "-mail", "-r",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address to expose metrics on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.AdminToken, "k", config.AdminToken, "admin token")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	resetGrantValidity := fs.Int("g", int(config.ResetGrantValidityDuration.Minutes()), "reset grant validity (in minutes)")

	fs.DurationVar(&config.CodeTTL, "ttl", config.CodeTTL, "verification code lifetime")
	fs.IntVar(&config.CodeLength, "n", config.CodeLength, "verification code length")
	fs.DurationVar(&config.SweepInterval, "w", config.SweepInterval, "expired code sweep interval")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.MailDriver, "mail", config.MailDriver, "mail driver (log, smtp, ses)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.ResetGrantValidityDuration = time.Duration(*resetGrantValidity) * time.Minute
}
