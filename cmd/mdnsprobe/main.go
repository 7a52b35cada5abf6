// mdnsprobe sends one mDNS PTR query for a service name and prints
// whatever service record the first matching response yields. It is a
// debugging aid for checking what discovery would see on the local
// network.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dessyd/scout/internal/discovery"
	"github.com/dessyd/scout/internal/transport"
)

func main() {
	var (
		name    = flag.String("name", "_config._tcp.local", "Service name to query")
		timeout = flag.Duration("timeout", 3*time.Second, "Total time to wait for responses")
		wait    = flag.Duration("wait", 250*time.Millisecond, "Per-read poll slice")
		verbose = flag.Bool("v", false, "Log screened packets to stderr")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if err := probe(*name, *timeout, *wait, logger); err != nil {
		fmt.Fprintf(os.Stderr, "mdnsprobe error: %v\n", err)
		os.Exit(1)
	}
}

func probe(name string, timeout, wait time.Duration, logger *slog.Logger) error {
	mc, err := transport.Listen()
	if err != nil {
		return err
	}
	defer mc.Close()

	store := discovery.NewStore()
	client := discovery.NewClient(store, logger)

	pkt, err := client.BuildQuery(name)
	if err != nil {
		return err
	}
	if err := mc.Send(pkt); err != nil {
		return err
	}
	fmt.Printf("query sent for %s, waiting %s\n", name, timeout)

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		n, err := mc.Receive(client.Buffer(), wait)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}

		outcome, err := client.HandleResponse(client.Buffer()[:n])
		if err != nil {
			logger.Debug("malformed packet discarded", "error", err)
			continue
		}
		if outcome != discovery.OutcomeDiscovered {
			continue
		}

		svc, _ := store.Current()
		url, _ := svc.URL()
		fmt.Printf("hostname=%s port=%d path=%s version=%s ipv4=%s\n",
			svc.Hostname, svc.Port, svc.Path, svc.APIVersion, svc.IPv4Text)
		fmt.Printf("url=%s\n", url)
		return nil
	}

	fmt.Println("no complete service record received")
	return nil
}
