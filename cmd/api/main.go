package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"aitrip_ai/internal/adapters/backend"
	server "aitrip_ai/internal/adapters/http_server"
	"aitrip_ai/internal/adapters/observability"
	redisad "aitrip_ai/internal/adapters/redis"
	"aitrip_ai/internal/app"
	"aitrip_ai/internal/domain"
	"aitrip_ai/internal/shared"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = serve(ctx, cfg)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("server stopped gracefully")
}

// serve builds every dependency from cfg and blocks until ctx is done or a
// listener fails. Resources it opens are released before it returns.
func serve(ctx context.Context, cfg shared.Config) error {
	engine := app.NewPlaceholderRecommender(cfg.ModelName)
	var checks []app.Check

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer func() {
			if err := rc.Close(); err != nil {
				log.Warn().Err(err).Msg("close redis client")
			}
		}()
		cache = rc
		checks = append(checks, app.Check{Name: "cache", Required: true, Probe: rc})
		log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL()).Msg("recommendation cache enabled")
	}

	bc, err := backend.New(cfg.BackendAPIURL, "aitrip-ai/"+cfg.Version, 5)
	if err != nil {
		log.Warn().Err(err).Msg("backend probe disabled")
	} else {
		checks = append(checks, app.Check{Name: "backend", Probe: bc})
	}

	recs := app.NewRecommendationService(engine, cache, cfg.CacheTTL())
	ready := app.NewReadinessService(2*time.Second, checks...)

	// http
	srv := server.New(cfg.AllowedOrigins)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Recs:  recs,
		Ready: ready,
		Info:  server.ServiceInfo{Name: cfg.ProjectName, Version: cfg.Version},
	}, cfg.APIV1Str)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	servers := []*http.Server{httpSrv}
	if ms := observability.NewMetricsServer(cfg.MetricsAddr, reg); ms != nil {
		servers = append(servers, ms)
	}

	log.Info().
		Str("service", cfg.ProjectName).
		Str("version", cfg.Version).
		Str("model", engine.Model()).
		Str("api", cfg.APIV1Str).
		Str("addr", cfg.HTTPAddr).
		Msg("API listening")

	return run(ctx, servers...)
}

// run serves until ctx is cancelled or any server fails, then shuts all of them down.
func run(ctx context.Context, servers ...*http.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		s := s
		g.Go(func() error {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return s.Shutdown(sctx)
		})
	}
	return g.Wait()
}
