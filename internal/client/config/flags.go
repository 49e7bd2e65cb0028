package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/shiftdesk/internal/flagx"
)

// parseFlags overlays command-line flags onto cfg. Only the flags listed
// in the package doc are considered; anything else in os.Args is ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-p", "-d", "-t", "-f", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.PersistencePolicy, "p", cfg.PersistencePolicy, "session persistence policy")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "SQLite file for durable sessions")
	fetchTimeout := fs.Int("t", int(cfg.FetchTimeout.Seconds()), "profile fetch timeout (in seconds)")
	fs.StringVar(&cfg.FailurePolicy, "f", cfg.FailurePolicy, "fetch failure policy (logout|retry)")
	fs.Uint64Var(&cfg.FetchRetries, "r", cfg.FetchRetries, "fetch retries under the retry policy")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.FetchTimeout = time.Duration(*fetchTimeout) * time.Second
}
