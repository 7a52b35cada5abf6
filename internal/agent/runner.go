// Package agent orchestrates the discovery, fetch, publish, and
// telemetry cycle.
//
// The agent runs a single cooperative loop: send an mDNS query, poll
// the socket in short slices, fold any response into the discovery
// store, and once a service is known fetch the remote configuration,
// connect the publisher, and start sampling telemetry. The management
// API runs beside the loop in its own goroutine.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dessyd/scout/internal/api"
	"github.com/dessyd/scout/internal/api/handlers"
	"github.com/dessyd/scout/internal/config"
	"github.com/dessyd/scout/internal/discovery"
	"github.com/dessyd/scout/internal/fetch"
	"github.com/dessyd/scout/internal/identity"
	"github.com/dessyd/scout/internal/publish"
	"github.com/dessyd/scout/internal/store"
	"github.com/dessyd/scout/internal/telemetry"
	"github.com/dessyd/scout/internal/transport"
)

// stats holds the agent's monotonically increasing counters.
type stats struct {
	queriesSent     atomic.Uint64
	packetsReceived atomic.Uint64
	packetsIgnored  atomic.Uint64
	incomplete      atomic.Uint64
	discoveries     atomic.Uint64
	readingsTaken   atomic.Uint64
	published       atomic.Uint64
}

func (s *stats) snapshot() handlers.AgentStatsSnapshot {
	return handlers.AgentStatsSnapshot{
		QueriesSent:     s.queriesSent.Load(),
		PacketsReceived: s.packetsReceived.Load(),
		PacketsIgnored:  s.packetsIgnored.Load(),
		Incomplete:      s.incomplete.Load(),
		Discoveries:     s.discoveries.Load(),
		ReadingsTaken:   s.readingsTaken.Load(),
		Published:       s.published.Load(),
	}
}

// Runner orchestrates agent startup, the main loop, and shutdown.
type Runner struct {
	logger *slog.Logger
	stats  stats

	// set while running
	publisher *publish.Publisher
}

// NewRunner creates a new agent runner with the given logger.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run starts the agent and blocks until SIGINT or SIGTERM.
func (r *Runner) Run(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return r.RunWithContext(ctx, cfg)
}

// RunWithContext starts the agent and blocks until ctx is canceled or a
// fatal error occurs.
//
// Lifecycle:
//  1. Open the history store (if enabled) and join the mDNS group
//  2. Start the management API (if enabled) in its own goroutine
//  3. Loop: query, poll, extract, and on discovery fetch + connect
//  4. Once configured, sample and publish telemetry on its own cadence
//  5. On shutdown, close the socket, publisher, API, and store
func (r *Runner) RunWithContext(ctx context.Context, cfg *config.Config) error {
	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var history *store.Store
	if cfg.Store.Enabled {
		h, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		history = h
		defer history.Close()
	}

	current := discovery.NewStore()
	client := discovery.NewClient(current, r.logger)

	mc, err := transport.Listen()
	if err != nil {
		return err
	}
	defer mc.Close()

	errCh := make(chan error, 1)
	var apiServer *api.Server
	if cfg.API.Enabled {
		h := handlers.New(cfg, current, history, r.logger)
		h.SetStatsFunc(r.stats.snapshot)
		apiServer = api.New(cfg, h, r.logger)
		r.logger.Info("api listening", "addr", apiServer.Addr())
		go func() {
			if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	loopErr := make(chan error, 1)
	go func() { loopErr <- r.loop(ctx, cfg, mc, client, current, history) }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		cancelRun()
		<-loopErr
		r.shutdown(apiServer)
		return err
	case err := <-loopErr:
		r.shutdown(apiServer)
		return err
	}

	<-loopErr
	r.shutdown(apiServer)
	return nil
}

func (r *Runner) shutdown(apiServer *api.Server) {
	if r.publisher != nil {
		r.publisher.Close()
		r.publisher = nil
	}
	if apiServer != nil {
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = apiServer.Shutdown(shCtx)
	}
}

// loop is the agent's main cycle. It owns the discovery client (and
// therefore the single packet buffer) for its whole lifetime.
func (r *Runner) loop(ctx context.Context, cfg *config.Config, mc *transport.Multicast,
	client *discovery.Client, current *discovery.Store, history *store.Store) error {

	serviceName := cfg.Discovery.ServiceName()
	queryInterval := cfg.Discovery.QueryIntervalDuration()
	receiveWait := cfg.Discovery.ReceiveWaitDuration()

	r.logger.Info("discovery starting",
		"service", serviceName,
		"query_interval", queryInterval,
	)

	fetcher := fetch.NewFetcher(cfg.Fetch.TimeoutDuration(), r.logger)
	collector := telemetry.NewCollector(r.logger)

	var (
		remote     fetch.RemoteConfig
		configured bool
		nextQuery  time.Time // zero means query immediately
		nextSample time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()

		if !configured && now.After(nextQuery) {
			if err := r.sendQuery(client, mc, serviceName); err != nil {
				r.logger.Warn("query send failed", "error", err)
			}
			nextQuery = now.Add(queryInterval)
		}

		n, err := mc.Receive(client.Buffer(), receiveWait)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if n > 0 {
			r.stats.packetsReceived.Add(1)
			r.handlePacket(ctx, cfg, client, current, history, fetcher, n, &remote, &configured)
		}

		if configured && now.After(nextSample) {
			r.sample(collector, history)
			nextSample = now.Add(r.sampleInterval(cfg, remote))
		}
	}
}

func (r *Runner) sendQuery(client *discovery.Client, mc *transport.Multicast, serviceName string) error {
	pkt, err := client.BuildQuery(serviceName)
	if err != nil {
		return err
	}
	if err := mc.Send(pkt); err != nil {
		return err
	}
	r.stats.queriesSent.Add(1)
	return nil
}

func (r *Runner) handlePacket(ctx context.Context, cfg *config.Config, client *discovery.Client,
	current *discovery.Store, history *store.Store, fetcher *fetch.Fetcher,
	n int, remote *fetch.RemoteConfig, configured *bool) {

	outcome, err := client.HandleResponse(client.Buffer()[:n])
	if err != nil {
		r.logger.Debug("response rejected", "error", err)
		return
	}

	switch outcome {
	case discovery.OutcomeIgnored:
		r.stats.packetsIgnored.Add(1)
	case discovery.OutcomeIncomplete:
		r.stats.incomplete.Add(1)
	case discovery.OutcomeDiscovered:
		r.stats.discoveries.Add(1)
		r.onDiscovered(ctx, cfg, current, history, fetcher, remote, configured)
	}
}

// onDiscovered persists the new record and, on the first discovery,
// fetches the remote configuration and connects the publisher.
func (r *Runner) onDiscovered(ctx context.Context, cfg *config.Config, current *discovery.Store,
	history *store.Store, fetcher *fetch.Fetcher, remote *fetch.RemoteConfig, configured *bool) {

	svc, ok := current.Current()
	if !ok {
		return
	}

	if history != nil {
		if err := history.InsertDiscovery(svc); err != nil {
			r.logger.Warn("discovery not persisted", "error", err)
		}
	}

	if *configured {
		return
	}

	url, err := svc.URL()
	if err != nil {
		r.logger.Warn("discovered record unusable", "error", err)
		return
	}

	device, err := identity.Resolve()
	if err != nil {
		r.logger.Error("device identity unavailable", "error", err)
		return
	}

	rc, err := fetcher.Fetch(ctx, url, device)
	if err != nil {
		r.logger.Error("remote config fetch failed", "url", url, "error", err)
		return
	}
	r.logger.Info("remote config received",
		"broker", rc.MQTTBroker,
		"topic", rc.MQTTTopic,
		"poll_interval", rc.PollInterval(),
	)

	if cfg.Publish.Enabled {
		pub := publish.NewPublisher(publish.Options{
			Broker:            rc.MQTTBroker,
			Port:              rc.MQTTPort,
			Topic:             rc.MQTTTopic,
			ConnectTimeout:    cfg.Publish.ConnectTimeoutDuration(),
			FallbackPlaintext: cfg.Publish.FallbackPlaintext,
		}, r.logger)
		if err := pub.Connect(); err != nil {
			r.logger.Error("mqtt connect failed", "error", err)
			return
		}
		r.publisher = pub
	}

	*remote = rc
	*configured = true
}

// sample collects one telemetry reading, persists it, and publishes it
// when a broker connection exists.
func (r *Runner) sample(collector *telemetry.Collector, history *store.Store) {
	reading := collector.Collect()
	if !reading.Valid() {
		r.logger.Warn("telemetry sample empty")
		return
	}
	r.stats.readingsTaken.Add(1)

	if history != nil {
		if err := history.InsertReading(reading); err != nil {
			r.logger.Warn("reading not persisted", "error", err)
		}
	}

	if r.publisher != nil && r.publisher.Connected() {
		payload, err := reading.Payload()
		if err != nil {
			return
		}
		if err := r.publisher.Publish(payload); err != nil {
			r.logger.Warn("publish failed", "error", err)
			return
		}
		r.stats.published.Add(1)
	}
}

// sampleInterval prefers the local override, then the remote setting.
func (r *Runner) sampleInterval(cfg *config.Config, remote fetch.RemoteConfig) time.Duration {
	if cfg.Publish.PollInterval != "" {
		if d, err := time.ParseDuration(cfg.Publish.PollInterval); err == nil && d > 0 {
			return d
		}
	}
	return remote.PollInterval()
}
