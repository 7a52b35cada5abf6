// Package config provides configuration types, loading, and validation
// for the scout agent.
//
// Configuration comes from an optional YAML file plus command-line
// overrides applied in cmd/scout. Validate normalizes every section so
// the rest of the code never deals with zero values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ResolveConfigPath picks the configuration file path: the explicit
// flag value wins, then the SCOUT_CONFIG environment variable, then
// empty (built-in defaults).
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("SCOUT_CONFIG")
}

// Load reads the YAML file at path, or returns a defaulted Config when
// path is empty. The result is always validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates and normalizes the configuration.
func (cfg *Config) Validate() error {
	// Normalize discovery
	if cfg.Discovery.ServiceType == "" {
		cfg.Discovery.ServiceType = "config"
	}
	if cfg.Discovery.Protocol == "" {
		cfg.Discovery.Protocol = "tcp"
	}
	if cfg.Discovery.Domain == "" {
		cfg.Discovery.Domain = "local"
	}
	if strings.ContainsAny(cfg.Discovery.ServiceType, "._") ||
		strings.ContainsAny(cfg.Discovery.Protocol, "._") {
		return errors.New("discovery.service_type and protocol must be bare words (underscores are added automatically)")
	}
	if cfg.Discovery.QueryInterval == "" {
		cfg.Discovery.QueryInterval = "10s"
	}
	if cfg.Discovery.ReceiveWait == "" {
		cfg.Discovery.ReceiveWait = "250ms"
	}
	if _, err := time.ParseDuration(cfg.Discovery.QueryInterval); err != nil {
		return fmt.Errorf("discovery.query_interval: %w", err)
	}
	if _, err := time.ParseDuration(cfg.Discovery.ReceiveWait); err != nil {
		return fmt.Errorf("discovery.receive_wait: %w", err)
	}

	// Normalize fetch
	if cfg.Fetch.Timeout == "" {
		cfg.Fetch.Timeout = "5s"
	}
	if _, err := time.ParseDuration(cfg.Fetch.Timeout); err != nil {
		return fmt.Errorf("fetch.timeout: %w", err)
	}

	// Normalize publish
	if cfg.Publish.ConnectTimeout == "" {
		cfg.Publish.ConnectTimeout = "5s"
	}
	if _, err := time.ParseDuration(cfg.Publish.ConnectTimeout); err != nil {
		return fmt.Errorf("publish.connect_timeout: %w", err)
	}
	if cfg.Publish.PollInterval != "" {
		if _, err := time.ParseDuration(cfg.Publish.PollInterval); err != nil {
			return fmt.Errorf("publish.poll_interval: %w", err)
		}
	}

	// Normalize store
	if cfg.Store.Path == "" {
		cfg.Store.Path = "scout.db"
	}

	// Normalize logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	// Normalize management API
	if cfg.API.Host == "" {
		cfg.API.Host = "127.0.0.1"
	}
	if cfg.API.Enabled {
		if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
			return errors.New("api.port must be 1..65535")
		}
	}

	return nil
}

// ServiceName composes the fully-qualified DNS-SD service name queried
// over mDNS, e.g. "_config._tcp.local".
func (d DiscoveryConfig) ServiceName() string {
	return fmt.Sprintf("_%s._%s.%s", d.ServiceType, d.Protocol, d.Domain)
}

// QueryIntervalDuration returns the parsed re-query period. Validate has
// already checked the string.
func (d DiscoveryConfig) QueryIntervalDuration() time.Duration {
	v, _ := time.ParseDuration(d.QueryInterval)
	return v
}

// ReceiveWaitDuration returns the parsed socket poll slice.
func (d DiscoveryConfig) ReceiveWaitDuration() time.Duration {
	v, _ := time.ParseDuration(d.ReceiveWait)
	return v
}

// TimeoutDuration returns the parsed HTTP timeout.
func (f FetchConfig) TimeoutDuration() time.Duration {
	v, _ := time.ParseDuration(f.Timeout)
	return v
}

// ConnectTimeoutDuration returns the parsed MQTT connect timeout.
func (p PublishConfig) ConnectTimeoutDuration() time.Duration {
	v, _ := time.ParseDuration(p.ConnectTimeout)
	return v
}
