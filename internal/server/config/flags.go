package config

import (
	"flag"
	"os"
	"time"

	"github.com/daybook-app/daybook/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   bind address of the HTTP endpoint
//	-d string   PostgreSQL DSN
//	-k string   JWT HMAC secret
//	-e int      presign expiry in seconds
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddr, "a", cfg.EndpointAddr, "address and port to bind")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "JWT secret key")
	presignExpiry := fs.Int("e", int(cfg.PresignExpiry.Seconds()), "presign expiry (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PresignExpiry = time.Duration(*presignExpiry) * time.Second
}
