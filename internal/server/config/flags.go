package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/sealpost/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN, or "memory"
//	-l int      token freshness leeway, seconds
//	-r int      replay record retention floor, minutes
//	-o string   comma-separated WebSocket origin patterns
//
// The function filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-l", "-r", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN (or \"memory\")")

	leeway := fs.Int("l", int(config.TokenLeeway.Seconds()), "token leeway (in seconds)")
	replayTTL := fs.Int("r", int(config.ReplayTTLFloor.Minutes()), "replay retention floor (in minutes)")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed websocket origins, comma-separated")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenLeeway = time.Duration(*leeway) * time.Second
	config.ReplayTTLFloor = time.Duration(*replayTTL) * time.Minute
	config.AllowedOrigins = splitOrigins(*origins)
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
