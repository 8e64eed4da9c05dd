package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

// RegisterMetricsServer starts a /metrics scrape endpoint on the configured
// listen address. Leaving the address empty disables the listener.
func RegisterMetricsServer(lc fx.Lifecycle, cfg *config.Config, recorder Recorder) {
	addr := cfg.Uplink.Metrics.ListenAddr
	if addr == "" {
		logger.Debugf("Metrics listener disabled (no listen address configured).")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(recorder.GetRegistry(), promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Infof("Metrics listener serving on %s.", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Errorf("Metrics listener failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
