package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dessyd/scout/internal/agent"
	"github.com/dessyd/scout/internal/config"
	"github.com/dessyd/scout/internal/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML configuration file (or set SCOUT_CONFIG)")
		service    = flag.String("service", "", "Override discovered service type (e.g. \"config\")")
		apiPort    = flag.Int("api-port", 0, "Enable the management API on this port")
		noStore    = flag.Bool("no-store", false, "Disable the SQLite history database")
		noPublish  = flag.Bool("no-publish", false, "Disable MQTT publishing")
		jsonLogs   = flag.Bool("json-logs", false, "Enable JSON structured logging")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *service != "" {
		cfg.Discovery.ServiceType = *service
	}
	if *apiPort != 0 {
		cfg.API.Enabled = true
		cfg.API.Port = *apiPort
	}
	if *noStore {
		cfg.Store.Enabled = false
	}
	if *noPublish {
		cfg.Publish.Enabled = false
	}
	if *jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if *debug {
		cfg.Logging.Level = "DEBUG"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Configure(cfg.Logging)
	logger.Info("scout starting",
		"service", cfg.Discovery.ServiceName(),
		"store", cfg.Store.Enabled,
		"publish", cfg.Publish.Enabled,
		"api", cfg.API.Enabled,
	)

	runner := agent.NewRunner(logger)
	if err := runner.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "agent exited with error: %v\n", err)
		os.Exit(1)
	}
}
