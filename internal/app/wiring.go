package app

import (
	"context"
	"fmt"
	"time"

	"github.com/grafana/pyroscope-go"
	lgcfg "gitlab.com/nevasik7/alerting/config"
	"gitlab.com/nevasik7/alerting/logger"

	"walletscope/internal/analysis"
	api "walletscope/internal/api/http"
	"walletscope/internal/api/http/handlers"
	"walletscope/internal/api/http/mw"
	"walletscope/internal/config"
	"walletscope/internal/metrics"
	"walletscope/internal/provider"
	"walletscope/internal/provider/alchemy"
	"walletscope/internal/provider/coingecko"
	"walletscope/internal/pubsub/nats"
	"walletscope/internal/security"
	"walletscope/internal/service"
	"walletscope/internal/stores/redis"
)

type Container struct {
	app *App

	// infra
	redis *redis.Client
	nc    *nats.Client

	// services
	scanner *service.Scanner

	// servers
	httpSrv *api.Server

	// metrics
	profiler *pyroscope.Profiler
}

func (c *Container) Start() error {
	return c.app.Start()
}

func (c *Container) Stop(ctx context.Context) error {
	if err := c.app.Shutdown(ctx); err != nil {
		return fmt.Errorf("app shutdown is failed, error=%w", err)
	}
	return nil
}

// Build constructs the whole dependency graph for the process.
func Build(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	lg := logger.New(lgcfg.LoggerCfg{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	lg.Info("Successfully initialize logger")

	profiler, err := metrics.InitPProf(cfg.App.InstanceID, &cfg.Metrics.Pyroscope)
	if err != nil {
		return nil, nil, fmt.Errorf("pyroscope initialize failed: %w", err)
	}
	if profiler != nil {
		lg.Infof("Successfully initialize Pyroscope to %s as %s", cfg.Metrics.Pyroscope.ServerAddr, cfg.Metrics.Pyroscope.AppName)
	}

	// Redis client
	rdb, err := redis.New(ctx, &cfg.Stores.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis client: %w", err)
	}
	lg.Infof("Successfully initialize redis client, addr=%s", cfg.Stores.Redis.Addr)

	// NATS Broadcaster
	natsCl, err := nats.New(lg, &cfg.PubSub.NATS)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize nats client: %w", err)
	}
	lg.Infof("Successfully initialize nats client, url=%s", cfg.PubSub.NATS.URL)

	// Wallet data provider
	wallet, err := alchemy.New(lg, &cfg.Providers.Alchemy)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize alchemy client: %w", err)
	}
	lg.Infof("Successfully initialize alchemy client, url=%s", cfg.Providers.Alchemy.BaseURL)

	// Price oracle, optionally cached through redis
	var oracle provider.PriceOracle = coingecko.New(lg, &cfg.Providers.Coingecko)
	if ttl := cfg.Providers.Coingecko.CacheTTL; ttl > 0 {
		oracle = provider.NewCachedOracle(lg, oracle, rdb, ttl)
		lg.Infof("Successfully initialize cached price oracle, ttl=%s", ttl)
	}

	// Service layer
	scanner := service.NewScanner(lg, wallet, oracle, analysis.NewAnalyzer(lg), natsCl, &cfg.Scanner)
	lg.Info("Successfully initialize scanner service")

	// Security
	var verifier *security.RS256Verifier
	if cfg.Security.JWT.Enabled {
		if verifier, err = security.NewRS256Verifier(&cfg.Security.JWT); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize JWT verifier: %w", err)
		}
		lg.Info("Successfully initialize JWT-Verifier")
	}

	// HTTP server
	handler := handlers.NewHandler(lg, scanner)

	var corsMW *mw.CORSMiddleware
	if cfg.API.HTTP.CORS.Enabled {
		corsMW = mw.NewCORSConfig(&cfg.API.HTTP.CORS)
	}

	router := api.BuildRouter(
		handler,
		mw.NewLogging(lg),
		mw.NewGzip(0, lg),
		mw.NewRateLimit(rdb, cfg.RateLimit, verifier),
		mw.NewJWTMiddleware(verifier),
		corsMW,
	)

	httpSrv := api.NewServer(lg, &cfg.API.HTTP, router)
	lg.Info("Successfully initialize HTTP server")

	c := &Container{
		app:      NewApp(lg, httpSrv),
		redis:    rdb,
		nc:       natsCl,
		scanner:  scanner,
		httpSrv:  httpSrv,
		profiler: profiler,
	}

	cleanupF := func() {
		ctxClean, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if c.profiler != nil {
			if err := c.profiler.Stop(); err != nil {
				lg.Errorf("Failed to stop profiler: %v", err)
			}
		}

		if err := httpSrv.Shutdown(ctxClean); err != nil {
			lg.Errorf("Failed to shutdown by cleanupF HTTP server: %v", err)
		}

		scanner.Close()

		if err := natsCl.Close(); err != nil {
			lg.Errorf("Failed to close by cleanupF nats client: %v", err)
		}

		if err := rdb.Close(); err != nil {
			lg.Errorf("Failed to close by cleanupF redis client: %v", err)
		}

		lg.Info("Successfully cleaned up dependency")
	}

	lg.Info("Successfully initialize Wiring")
	return c, cleanupF, nil
}
