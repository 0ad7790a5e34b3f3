package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/genesisbarrios/senfiltro/internal/audit"
	httpapi "github.com/genesisbarrios/senfiltro/internal/http"
	"github.com/genesisbarrios/senfiltro/internal/platform/config"
	"github.com/genesisbarrios/senfiltro/internal/platform/httpserver"
	"github.com/genesisbarrios/senfiltro/internal/platform/logger"
	platredis "github.com/genesisbarrios/senfiltro/internal/platform/redis"
	"github.com/genesisbarrios/senfiltro/internal/registry"
	"github.com/genesisbarrios/senfiltro/internal/registry/cache"
	registrymetrics "github.com/genesisbarrios/senfiltro/internal/registry/metrics"
	"github.com/genesisbarrios/senfiltro/internal/registry/service"
	"github.com/genesisbarrios/senfiltro/internal/registry/store"
	"github.com/genesisbarrios/senfiltro/internal/registry/store/memory"
	"github.com/genesisbarrios/senfiltro/internal/registry/store/postgres"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recordStore store.TxStore
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err.Error())
			os.Exit(1)
		}
		defer pool.Close()

		pg := postgres.New(pool)
		if err := pg.Migrate(ctx); err != nil {
			log.Error("postgres migration failed", "error", err.Error())
			os.Exit(1)
		}
		recordStore = pg
		log.Info("using postgres record store")
	} else {
		recordStore = memory.New()
		log.Warn("SENFILTRO_POSTGRES_URL not set, using in-memory record store")
	}

	m := registrymetrics.New()

	redisClient, err := platredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err.Error())
		os.Exit(1)
	}
	var postCache *cache.PostCache
	if redisClient != nil {
		defer redisClient.Close()
		postCache = cache.New(redisClient, cfg.PostCacheTTL, log, m)
		log.Info("post read cache enabled", "ttl", cfg.PostCacheTTL.String())
	}

	var sink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka audit sink failed", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit events flowing to kafka", "topic", cfg.Kafka.Topic)
	} else {
		sink = audit.NewInMemoryStore()
		log.Warn("SENFILTRO_KAFKA_BROKERS not set, audit events stay in memory")
	}

	recorder := audit.NewRecorder(256, log)
	worker := audit.NewWorker(sink, recorder.Events(), log)

	svc, err := registry.NewService(recordStore,
		service.WithCache(postCache),
		service.WithAudit(recorder),
		service.WithMetrics(m),
		service.WithLogger(log),
	)
	if err != nil {
		log.Error("service construction failed", "error", err.Error())
		os.Exit(1)
	}

	router := httpapi.NewRouter(log, registry.NewHandler(svc, log))
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting senfiltro registry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}
