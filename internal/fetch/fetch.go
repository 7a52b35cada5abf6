// Package fetch retrieves the remote configuration document from a
// discovered service endpoint.
//
// The request is a plain HTTP GET on the service URL with the agent's
// identity attached as query parameters. The response body is a JSON
// document whose "config" section carries the MQTT and polling
// settings.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dessyd/scout/internal/identity"
)

// maxBodySize bounds the response body read. Remote configuration
// documents are small; anything larger is a server fault.
const maxBodySize = 64 * 1024

var (
	// ErrHTTPStatus is returned when the server answers with a
	// non-200 status code.
	ErrHTTPStatus = errors.New("fetch: unexpected http status")
	// ErrIncomplete is returned when the parsed document is missing
	// the broker address or topic.
	ErrIncomplete = errors.New("fetch: incomplete remote config")
)

// RemoteConfig is the "config" section of the fetched document.
type RemoteConfig struct {
	MQTTBroker            string `json:"mqtt_broker"`
	MQTTPort              int    `json:"mqtt_port"`
	MQTTTopic             string `json:"mqtt_topic"`
	PollFrequencySec      int    `json:"poll_frequency_sec"`
	HeartbeatFrequencySec int    `json:"heartbeat_frequency_sec"`
	Template              string `json:"template"`
}

type configDocument struct {
	Config *RemoteConfig `json:"config"`
}

// PollInterval returns the configured reading period, defaulting to one
// minute when the server omits it.
func (rc RemoteConfig) PollInterval() time.Duration {
	if rc.PollFrequencySec <= 0 {
		return time.Minute
	}
	return time.Duration(rc.PollFrequencySec) * time.Second
}

// HeartbeatInterval returns the configured heartbeat period, defaulting
// to five minutes when the server omits it.
func (rc RemoteConfig) HeartbeatInterval() time.Duration {
	if rc.HeartbeatFrequencySec <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(rc.HeartbeatFrequencySec) * time.Second
}

// Fetcher retrieves remote configuration over HTTP.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher returns a Fetcher with the given request timeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch issues GET <serviceURL>?device_id=<id>&mac=<mac> and parses the
// JSON response. The service URL comes straight from discovery.
func (f *Fetcher) Fetch(ctx context.Context, serviceURL string, device identity.DeviceID) (RemoteConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serviceURL, nil)
	if err != nil {
		return RemoteConfig{}, fmt.Errorf("fetch: build request: %w", err)
	}
	req.URL.RawQuery = device.QueryValues().Encode()

	f.logger.Debug("fetching remote config", "url", req.URL.String())

	resp, err := f.client.Do(req)
	if err != nil {
		return RemoteConfig{}, fmt.Errorf("fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RemoteConfig{}, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return RemoteConfig{}, fmt.Errorf("fetch: read body: %w", err)
	}

	return Parse(body)
}

// Parse decodes the configuration document and checks that the fields
// the publisher cannot run without are present.
func Parse(body []byte) (RemoteConfig, error) {
	var doc configDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return RemoteConfig{}, fmt.Errorf("fetch: parse json: %w", err)
	}
	if doc.Config == nil {
		return RemoteConfig{}, fmt.Errorf("%w: missing config section", ErrIncomplete)
	}
	rc := *doc.Config
	if rc.MQTTBroker == "" || rc.MQTTTopic == "" {
		return RemoteConfig{}, fmt.Errorf("%w: broker=%q topic=%q", ErrIncomplete, rc.MQTTBroker, rc.MQTTTopic)
	}
	if rc.MQTTPort <= 0 || rc.MQTTPort > 65535 {
		rc.MQTTPort = 1883
	}
	return rc, nil
}
