package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchcore/internal/config"
	"matchcore/internal/engine"
	"matchcore/internal/events"
	"matchcore/internal/observability"
	"matchcore/internal/transport/httpapi"
	"matchcore/internal/transport/wsfeed"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the symbol/tick/lot configuration file")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	specs, err := cfg.SymbolSpecs()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse symbol table")
	}

	publisher := events.NewPublisherWithDepth(cfg.QueueDepth)
	eng, cancelEngine := engine.New(specs, publisher)
	defer cancelEngine()

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	go syncMetricsLoop(ctx, metrics, eng)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: buildHTTPMux(eng, registry),
	}
	wsServer := &http.Server{
		Addr:    cfg.WSAddr,
		Handler: wsfeed.NewHub(publisher),
	}

	go runServer(httpServer, "http")
	go runServer(wsServer, "websocket")

	log.Info().Strs("symbols", symbolNames(specs)).Msg("matchcore engine running")
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	_ = wsServer.Shutdown(shutdownCtx)
}

func buildHTTPMux(eng *engine.Engine, registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", httpapi.New(eng))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

func runServer(srv *http.Server, name string) {
	log.Info().Str("addr", srv.Addr).Str("transport", name).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Str("transport", name).Msg("server exited")
	}
}

func syncMetricsLoop(ctx context.Context, metrics *observability.Metrics, eng *engine.Engine) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.Sync(eng)
		}
	}
}

func symbolNames(specs []engine.SymbolSpec) []string {
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Symbol)
	}
	return names
}
