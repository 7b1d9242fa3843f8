package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/aviato/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the gRPC server
//	-s string   JWT HMAC secret key
//	-t int      minted token validity, minutes
//	-r int      per-request timeout, seconds
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	requestTimeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AccessTokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
