// Package publish delivers telemetry samples to the MQTT broker named
// by the remote configuration.
package publish

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Standard MQTT ports. 8883 expects TLS; when the broker refuses it the
// publisher can optionally retry in plaintext on 1883.
const (
	portTLS       = 8883
	portPlaintext = 1883
)

// ErrNotConnected is returned when Publish is called before a
// successful Connect.
var ErrNotConnected = errors.New("publish: not connected")

// Options configures a Publisher.
type Options struct {
	Broker            string
	Port              int
	Topic             string
	ConnectTimeout    time.Duration
	FallbackPlaintext bool
}

// Publisher wraps one MQTT client connection.
type Publisher struct {
	opts   Options
	client mqtt.Client
	logger *slog.Logger
}

// NewPublisher returns an unconnected Publisher.
func NewPublisher(opts Options, logger *slog.Logger) *Publisher {
	return &Publisher{opts: opts, logger: logger}
}

// Connect dials the broker. When the configured port is 8883 and the
// connection fails, FallbackPlaintext retries once on 1883.
func (p *Publisher) Connect() error {
	port := p.opts.Port
	if err := p.connectOn(port); err != nil {
		if p.opts.FallbackPlaintext && port == portTLS {
			p.logger.Warn("tls port refused, retrying plaintext",
				"broker", p.opts.Broker, "error", err)
			return p.connectOn(portPlaintext)
		}
		return err
	}
	return nil
}

func (p *Publisher) connectOn(port int) error {
	clientID := fmt.Sprintf("scout-%s", uuid.NewString()[:8])
	o := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", p.opts.Broker, port)).
		SetClientID(clientID).
		SetConnectTimeout(p.opts.ConnectTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(false)

	client := mqtt.NewClient(o)
	token := client.Connect()
	if !token.WaitTimeout(p.opts.ConnectTimeout) {
		client.Disconnect(0)
		return fmt.Errorf("publish: connect to %s:%d timed out", p.opts.Broker, port)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return fmt.Errorf("publish: connect to %s:%d: %w", p.opts.Broker, port, err)
	}

	p.client = client
	p.logger.Info("mqtt connected", "broker", p.opts.Broker, "port", port, "client_id", clientID)
	return nil
}

// Publish sends payload to the configured topic at QoS 0.
func (p *Publisher) Publish(payload []byte) error {
	return p.PublishTo(p.opts.Topic, payload)
}

// PublishTo sends payload to an explicit topic.
func (p *Publisher) PublishTo(topic string, payload []byte) error {
	if p.client == nil || !p.client.IsConnected() {
		return ErrNotConnected
	}
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(p.opts.ConnectTimeout) {
		return fmt.Errorf("publish: send to %q timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: send to %q: %w", topic, err)
	}
	return nil
}

// Connected reports whether the client currently holds a broker
// connection.
func (p *Publisher) Connected() bool {
	return p.client != nil && p.client.IsConnected()
}

// Close disconnects from the broker, letting in-flight messages drain
// briefly.
func (p *Publisher) Close() {
	if p.client != nil {
		p.client.Disconnect(250)
		p.client = nil
	}
}
