package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollbook/internal/identity"
	jwttoken "rollbook/internal/jwt_token"
	"rollbook/internal/platform/config"
	"rollbook/internal/platform/httpserver"
	"rollbook/internal/platform/kafka"
	"rollbook/internal/platform/logger"
	"rollbook/internal/platform/metrics"
	"rollbook/internal/platform/postgres"
	platformredis "rollbook/internal/platform/redis"
	"rollbook/internal/registration/handler"
	regmetrics "rollbook/internal/registration/metrics"
	"rollbook/internal/registration/service"
	"rollbook/internal/registration/stats"
	campaignstore "rollbook/internal/registration/store/campaign"
	ledgerstore "rollbook/internal/registration/store/ledger"
	rulestore "rollbook/internal/registration/store/rule"
	"rollbook/pkg/platform/changefeed/publisher"
	"rollbook/pkg/platform/changefeed/relay"
	feedpg "rollbook/pkg/platform/changefeed/store/postgres"
)

// main wires storage, the change feed, and the HTTP surface. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := postgres.Migrate(ctx, db, log); err != nil {
		log.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	var campaigns service.CampaignStore = campaignstore.NewPostgres(db)
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		campaigns = campaignstore.NewCached(campaigns, redisClient.Client, cfg.Redis.CacheTTL)
		log.Info("campaign cache enabled", "ttl", cfg.Redis.CacheTTL)
	}

	var ruleOpts []rulestore.PostgresOption
	if cfg.GlobalTruncate {
		ruleOpts = append(ruleOpts, rulestore.WithGlobalTruncate())
	}
	rules := rulestore.NewPostgres(db, ruleOpts...)
	ledger := ledgerstore.NewPostgres(db)
	identities := identity.NewPostgres(db)

	outbox := feedpg.New(db)
	feed := publisher.NewPublisher(outbox, publisher.WithLogger(log))
	defer feed.Close()

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.Kafka)
		if err != nil {
			log.Error("kafka producer setup failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		go func() {
			if err := relay.New(outbox, producer, log, time.Second).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("changefeed relay stopped", "error", err)
			}
		}()
		log.Info("changefeed relay started", "topic", cfg.Kafka.Topic)
	}

	svc := service.New(campaigns, rules, ledger, identities,
		service.WithFeed(feed),
		service.WithLogger(log),
		service.WithMetrics(regmetrics.New()),
		service.WithTx(newLedgerPostgresTx(db)),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := chi.NewRouter()
	handler.New(svc, log, metrics.New(), jwttoken.NewAdapter(jwtService), cfg.AdminToken).Register(router)
	stats.NewHandler(stats.NewSource(svc, ledger), log, cfg.AdminToken).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", healthHandler(db))

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting rollbook", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
