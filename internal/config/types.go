package config

// DiscoveryConfig controls the mDNS query cycle.
//
// The queried service name follows the DNS-SD shape
// `_<service>._<protocol>.<domain>` (RFC 6763 Section 4.1).
type DiscoveryConfig struct {
	ServiceType   string `yaml:"service_type"`   // e.g. "config"
	Protocol      string `yaml:"protocol"`       // "tcp" or "udp"
	Domain        string `yaml:"domain"`         // e.g. "local"
	QueryInterval string `yaml:"query_interval"` // re-query period, e.g. "10s"
	ReceiveWait   string `yaml:"receive_wait"`   // socket poll slice, e.g. "250ms"
}

// FetchConfig controls retrieval of the remote configuration document
// once a service has been discovered.
type FetchConfig struct {
	Timeout string `yaml:"timeout"` // HTTP timeout, e.g. "5s"
}

// PublishConfig controls the MQTT telemetry publisher. Broker, port, and
// topic come from the fetched remote configuration, not from here.
type PublishConfig struct {
	Enabled bool `yaml:"enabled"`
	// FallbackPlaintext retries on port 1883 when the remote config
	// names the TLS port 8883 but the broker refuses the connection.
	FallbackPlaintext bool   `yaml:"fallback_plaintext"`
	ConnectTimeout    string `yaml:"connect_timeout"`
	// PollInterval overrides the remote poll_frequency_sec when set.
	PollInterval string `yaml:"poll_interval,omitempty"`
}

// StoreConfig controls the SQLite history database.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string            `yaml:"level"`
	Structured       bool              `yaml:"structured"`
	StructuredFormat string            `yaml:"structured_format"`
	IncludePID       bool              `yaml:"include_pid"`
	ExtraFields      map[string]string `yaml:"extra_fields,omitempty"`
}

// APIConfig contains management API settings.
//
// Note: APIKey is a secret and is never returned by API endpoints.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	APIKey  string `yaml:"api_key,omitempty"`
}

// Config is the root configuration structure.
type Config struct {
	Discovery DiscoveryConfig `yaml:"discovery"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Publish   PublishConfig   `yaml:"publish"`
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
	API       APIConfig       `yaml:"api"`
}
