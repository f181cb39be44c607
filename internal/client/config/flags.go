package config

import (
	"flag"
	"os"

	"github.com/daybook-app/daybook/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string   base URL of the sync server
//	-d string   data directory
//
// Only these flags are parsed here (via flagx.FilterArgs) so cobra's own
// flags are left alone.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the sync server")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")

	_ = fs.Parse(args)
}
