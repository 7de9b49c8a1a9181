package cli

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	identityhandler "agora/internal/identity/handler"
	identitymetrics "agora/internal/identity/metrics"
	identityservice "agora/internal/identity/service"
	identitystore "agora/internal/identity/store"
	"agora/internal/platform/chain"
	"agora/internal/platform/config"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/logger"
	"agora/internal/platform/middleware"
	platformredis "agora/internal/platform/redis"
	quizhandler "agora/internal/quiz/handler"
	quizmetrics "agora/internal/quiz/metrics"
	quizservice "agora/internal/quiz/service"
	quizstore "agora/internal/quiz/store"
	rewardshandler "agora/internal/rewards/handler"
	rewardsmetrics "agora/internal/rewards/metrics"
	rewardsmodels "agora/internal/rewards/models"
	rewardsservice "agora/internal/rewards/service"
	rewardssink "agora/internal/rewards/sink"
	rewardsstore "agora/internal/rewards/store"
	transporthttp "agora/internal/transport/http"
	"agora/pkg/platform/audit"
	auditpublisher "agora/pkg/platform/audit/publisher"
	auditmemory "agora/pkg/platform/audit/store/memory"
	auditpostgres "agora/pkg/platform/audit/store/postgres"
	auditworker "agora/pkg/platform/audit/worker"
)

const (
	auditInboxSize  = 256
	blockInterval   = time.Second
	shutdownTimeout = 10 * time.Second
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the participation engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New()
	slog.SetDefault(log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	clock := chain.NewManualClock(0)

	// Audit trail: every mutation goes through the inbox to the store;
	// Kafka fan-out is optional.
	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	if cfg.Postgres.URL != "" {
		pg, err := auditpostgres.Open(cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		auditStore = pg
	}

	inbox := auditworker.NewInbox(auditInboxSize)
	publishers := []audit.Publisher{inbox}

	kafka, err := auditpublisher.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return err
	}
	if kafka != nil {
		defer kafka.Close()
		publishers = append(publishers, kafka)
	}
	recorder := audit.NewRecorder(audit.Fanout(publishers...), log)

	// Settlement sink: Redis stream when configured, in-process otherwise.
	rewardsSink, err := newSink(ctx, cfg, log)
	if err != nil {
		return err
	}

	identitySvc, err := newIdentityService(ctx, cfg, clock, log, recorder, registry)
	if err != nil {
		return err
	}
	quizSvc, err := newQuizService(ctx, cfg, clock, log, recorder, registry)
	if err != nil {
		return err
	}
	rewardsSvc, err := rewardsservice.New(rewardsstore.NewInMemory(), clock,
		rewardsservice.WithLogger(log),
		rewardsservice.WithAuditRecorder(recorder),
		rewardsservice.WithMetrics(rewardsmetrics.New(registry)),
		rewardsservice.WithSink(rewardsSink),
		rewardsservice.WithParameters(rewardsmodels.Parameters{
			BaseReward:     cfg.Engine.BaseRewardAmount,
			Multiplier:     cfg.Engine.BonusMultiplier,
			CooldownBlocks: cfg.Engine.CooldownBlocks,
			MaxPerUser:     cfg.Engine.MaxRewardsPerUser,
		}))
	if err != nil {
		return err
	}

	router := transporthttp.New(transporthttp.Config{
		Validator: middleware.NewHMACValidator(cfg.Auth.JWTSigningKey),
		Logger:    log,
		Metrics:   registry,
		Components: []transporthttp.Registerer{
			identityhandler.New(identitySvc, log),
			quizhandler.New(quizSvc, log),
			rewardshandler.New(rewardsSvc, log),
		},
	})
	server := httpserver.New(cfg.Server.Addr, router)

	worker := auditworker.New(auditStore, inbox.Events())
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()
	go func() {
		_ = chain.RunTicker(ctx, clock, blockInterval)
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newSink(ctx context.Context, cfg config.Config, log *slog.Logger) (rewardssink.Sink, error) {
	client, err := platformredis.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Info("redis not configured, settling in memory")
		return rewardssink.NewMemory(), nil
	}
	return rewardssink.NewRedis(client, ""), nil
}

func newIdentityService(ctx context.Context, cfg config.Config, clock chain.Clock, log *slog.Logger, recorder *audit.Recorder, registry prometheus.Registerer) (*identityservice.Service, error) {
	store := identitystore.NewInMemory(cfg.Engine.MaxUsers)
	return identityservice.New(store, clock,
		identityservice.WithLogger(log),
		identityservice.WithAuditRecorder(recorder),
		identityservice.WithMetrics(identitymetrics.New(registry)))
}

func newQuizService(ctx context.Context, cfg config.Config, clock chain.Clock, log *slog.Logger, recorder *audit.Recorder, registry prometheus.Registerer) (*quizservice.Service, error) {
	store := quizstore.NewInMemory()
	if cfg.Engine.MaxQuizzes > 0 {
		store.SetMaxQuizzes(ctx, int64(cfg.Engine.MaxQuizzes))
	}
	return quizservice.New(store, clock,
		quizservice.WithLogger(log),
		quizservice.WithAuditRecorder(recorder),
		quizservice.WithMetrics(quizmetrics.New(registry)))
}
