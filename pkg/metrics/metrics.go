// Package metrics exposes the Prometheus metrics of sponsorwatch.
// All metrics are defined in their respective packages (catalog, poller)
// and registered via promauto on the default registry.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Handler returns the HTTP handler serving the default gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return serve(ctx, ln)
}

func serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger := log.With().Str("component", "metrics").Logger()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("Metrics listener started")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
		logger.Info().Msg("Metrics listener stopped")
		return nil
	}
}

// Metrics Documentation
//
// Catalog Metrics (pkg/catalog):
//   - sponsorwatch_catalog_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - sponsorwatch_catalog_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - sponsorwatch_catalog_errors_total{class} (Counter): Errors by class (network, status, decode)
//
// Poll Loop Metrics (pkg/poller):
//   - sponsorwatch_poller_pages_total (Counter): List pages fetched
//   - sponsorwatch_poller_places_emitted_total (Counter): Newly seen places emitted
//   - sponsorwatch_poller_duplicates_total (Counter): Already seen places skipped
//   - sponsorwatch_poller_seen_places (Gauge): Size of the seen set
//
// Example Prometheus Queries:
//
//   # Discovery rate
//   rate(sponsorwatch_poller_places_emitted_total[15m])
//
//   # Share of each page that was already seen
//   rate(sponsorwatch_poller_duplicates_total[5m]) /
//   (rate(sponsorwatch_poller_duplicates_total[5m]) + rate(sponsorwatch_poller_places_emitted_total[5m]))
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(sponsorwatch_catalog_request_duration_seconds_bucket[5m]))
