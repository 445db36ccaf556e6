// Package probe implements the optional best-effort reachability check
// that runs before record generation. A positive result only means the
// tested port accepted a TCP connection from the generating machine; it
// is advisory filtering, not connectivity validation.
package probe

import (
	"context"
	"net"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/systmms/pamforge/internal/inventory"
	"github.com/systmms/pamforge/internal/logging"
)

// Options controls the probe worker pool.
type Options struct {
	Port    int
	Timeout time.Duration
	Workers int
}

// DefaultWorkers mirrors the conventional thread-pool sizing for
// blocking network probes.
func DefaultWorkers() int {
	n := runtime.NumCPU() * 5
	if n > 32 {
		n = 32
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (o Options) withDefaults() Options {
	if o.Port <= 0 {
		o.Port = 5986
	}
	if o.Timeout <= 0 {
		o.Timeout = 3 * time.Second
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers()
	}
	return o
}

// Reachable reports whether host accepts a TCP connection on port
// within the timeout.
func Reachable(ctx context.Context, host string, port int, timeout time.Duration) bool {
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Filter probes every entry concurrently, bounded by Options.Workers,
// and returns the reachable subset in original input order. Unreachable
// hosts are logged as warnings and dropped. The call blocks until all
// probes complete; a canceled context aborts the run.
func Filter(ctx context.Context, entries []inventory.HostEntry, opts Options, log *logging.Logger) ([]inventory.HostEntry, error) {
	opts = opts.withDefaults()

	// Each worker writes only its own slot, so no mutex is needed for
	// the result aggregation.
	reachable := make([]bool, len(entries))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, opts.Workers)

	for i, entry := range entries {
		wg.Add(1)
		go func(i int, host string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				return
			}
			reachable[i] = Reachable(ctx, host, opts.Port, opts.Timeout)
		}(i, entry.Hostname)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filtered := make([]inventory.HostEntry, 0, len(entries))
	for i, entry := range entries {
		if reachable[i] {
			filtered = append(filtered, entry)
		} else {
			log.Warn("%s unreachable on port %d - excluded", entry.Hostname, opts.Port)
		}
	}
	return filtered, nil
}
