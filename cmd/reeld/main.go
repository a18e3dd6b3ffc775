// Command reeld runs the reel daemon in the foreground. The reel CLI
// launches it detached via `reel start`; running it directly is useful
// under a process supervisor.
package main

import (
	"context"
	"flag"
	"log"

	"reel/internal/config"
	"reel/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		log.Fatalf("reeld: %v", err)
	}
}
