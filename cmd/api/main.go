package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/repairpos/api/controllers"
	"github.com/angelmondragon/repairpos/api/routes"
	"github.com/angelmondragon/repairpos/internal/cart"
	"github.com/angelmondragon/repairpos/internal/cartstore"
	"github.com/angelmondragon/repairpos/internal/cron"
	"github.com/angelmondragon/repairpos/internal/inventory"
	"github.com/angelmondragon/repairpos/internal/pos"
	"github.com/angelmondragon/repairpos/internal/rates"
	"github.com/angelmondragon/repairpos/internal/repairs"
	"github.com/angelmondragon/repairpos/internal/sales"
	"github.com/angelmondragon/repairpos/pkg/config"
	"github.com/angelmondragon/repairpos/pkg/db"
	"github.com/angelmondragon/repairpos/pkg/enums"
	"github.com/angelmondragon/repairpos/pkg/env"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/logger"
	"github.com/angelmondragon/repairpos/pkg/metrics"
	"github.com/angelmondragon/repairpos/pkg/migrate"
	"github.com/angelmondragon/repairpos/pkg/redis"
)

const (
	shutdownTimeout = 10 * time.Second
	schedulerLock   = "scheduler"
)

func main() {
	logg := logger.New(logger.Options{Service: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		Service:   "api",
		Terminal:  cfg.App.TerminalID,
		Level:     cfg.App.LogLevel,
		Format:    cfg.App.LogFormat,
		WarnStack: cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cartMetrics := metrics.NewCartMetrics(reg)
	rateMetrics := metrics.NewRateMetrics(reg)
	jobMetrics := metrics.NewJobMetrics(reg)

	rateRepo := rates.NewRepository(dbClient.DB())
	rateSource, err := newRateSource(ctx, cfg, logg, rateRepo, rateMetrics)
	requireResource(ctx, logg, "rate source", err)

	store, err := newSlotStore(cfg, dbClient, redisClient)
	requireResource(ctx, logg, "cart slot store", err)

	slotKey := cfg.Cart.SlotKey
	slotCtx := logg.WithCartSlot(ctx, slotKey)

	persister := cartstore.NewPersister(store, slotKey, cfg.Cart.PersistTimeout, logg, cartMetrics)
	restored := cartstore.Restore(slotCtx, store, slotKey, logg, cartMetrics)
	engine, err := cart.NewEngine(rateSource, restored, persister, pos.MetricsObserver(cartMetrics))
	requireResource(ctx, logg, "cart engine", err)

	inventorySvc := inventory.NewService(inventory.NewRepository(dbClient.DB()))
	repairSvc := repairs.NewService(repairs.NewRepository(dbClient.DB()))
	salesSvc, err := sales.NewService(sales.ServiceParams{
		DB:         dbClient,
		TerminalID: cfg.App.TerminalID,
	})
	requireResource(ctx, logg, "sales service", err)

	terminal, err := pos.NewTerminal(pos.TerminalParams{
		Engine:   engine,
		Rates:    rateSource,
		Products: inventorySvc,
		Repairs:  repairSvc,
		Sales:    salesSvc,
		Logger:   logg,
	})
	requireResource(ctx, logg, "pos terminal", err)

	scheduler, err := newScheduler(cfg, logg, dbClient, redisClient, rateSource, rateRepo, jobMetrics)
	requireResource(ctx, logg, "scheduler", err)

	var redisPinger controllers.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisPinger,
			reg,
			terminal,
			rateSource,
			rateRepo,
			inventorySvc,
			repairSvc,
			sales.NewRepository(dbClient.DB()),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"slot_backend": cfg.Cart.Backend(),
		"rate_sync":    rateSource.SyncEnabled(),
	})
	logg.Info(runCtx, "starting api server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return persister.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })

	if err := g.Wait(); err != nil {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	persister.Flush(logg.WithCartSlot(flushCtx, slotKey))
	logg.Info(runCtx, "api server stopped")
}

// newRateSource seeds the live rate from the newest history row, falling
// back to the configured bootstrap rate on a fresh database.
func newRateSource(ctx context.Context, cfg *config.Config, logg *logger.Logger, repo *rates.Repository, m *metrics.RateMetrics) (*rates.Source, error) {
	initial, err := repo.Latest(ctx)
	if err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, err
		}
		value, err := cfg.Rates.Initial()
		if err != nil {
			return nil, err
		}
		initial = rates.Rate{Value: value, Provenance: enums.RateProvenanceDefault}
	}

	params := rates.SourceParams{
		Initial:     initial,
		History:     repo,
		Logger:      logg,
		Metrics:     m,
		SyncTimeout: cfg.Rates.SyncTimeout,
	}
	if cfg.Rates.SyncEnabled() {
		authority, err := rates.NewHTTPAuthority(cfg.Rates.AuthorityURL,
			rates.WithHTTPClient(&http.Client{Timeout: cfg.Rates.SyncTimeout}),
			rates.WithBreaker(cfg.Rates.BreakerMaxFailures, cfg.Rates.BreakerOpenTimeout),
			rates.WithStateChange(func(from, to gobreaker.State) {
				logg.Warn(logg.WithFields(ctx, map[string]any{
					"from": from.String(),
					"to":   to.String(),
				}), "rate authority circuit changed state")
			}),
		)
		if err != nil {
			return nil, err
		}
		params.Authority = authority
	}
	return rates.NewSource(params)
}

func newSlotStore(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client) (cartstore.Store, error) {
	if cfg.Cart.Backend() == config.SlotBackendRedis {
		if redisClient == nil {
			return nil, errors.New("redis cart slot backend selected but redis is not configured")
		}
		return cartstore.NewRedisStore(redisClient), nil
	}
	return cartstore.NewDBStore(dbClient.DB()), nil
}

func newScheduler(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	source *rates.Source,
	repo *rates.Repository,
	m *metrics.JobMetrics,
) (*cron.Service, error) {
	registry := cron.NewRegistry()
	if source.SyncEnabled() {
		job, err := cron.NewRateSyncJob(logg, source)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}
	historyJob, err := cron.NewRateHistoryJob(cron.RateHistoryJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: repo,
		Retention:  cfg.Rates.HistoryRetention,
	})
	if err != nil {
		return nil, err
	}
	if err := registry.Register(historyJob); err != nil {
		return nil, err
	}

	var lock cron.Lock = &cron.LocalLock{}
	if redisClient != nil {
		redisLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(schedulerLock), 0)
		if err != nil {
			return nil, err
		}
		lock = redisLock
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  m,
		Interval: cfg.Rates.SyncInterval,
	})
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
