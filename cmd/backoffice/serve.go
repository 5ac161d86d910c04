package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cabinet-comptable/backoffice/internal/api"
	"github.com/cabinet-comptable/backoffice/internal/api/handler"
	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
	"github.com/cabinet-comptable/backoffice/internal/core/service"
	"github.com/cabinet-comptable/backoffice/internal/infrastructure/crypto"
	"github.com/cabinet-comptable/backoffice/internal/infrastructure/db/audit"
	mongostore "github.com/cabinet-comptable/backoffice/internal/infrastructure/db/mongo"
	redisstore "github.com/cabinet-comptable/backoffice/internal/infrastructure/db/redis"
	"github.com/cabinet-comptable/backoffice/internal/infrastructure/i18n"
	"github.com/cabinet-comptable/backoffice/internal/infrastructure/memory"
	"github.com/cabinet-comptable/backoffice/internal/infrastructure/queue"
	"github.com/cabinet-comptable/backoffice/internal/pkg/config"
)

const (
	shutdownTimeout = 15 * time.Second
	mutationLockTTL = 30 * time.Second
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), e.cfg, e.log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("closing connections")
		}
	}()

	if err := mongostore.EnsureIndexes(ctx, st.db); err != nil {
		return err
	}
	eval := authz.NewEvaluator(st.registry)

	clientRepo := mongostore.NewClientRepository(st.db)
	userRepo := mongostore.NewUserRepository(st.db)
	taskRepo := mongostore.NewTaskRepository(st.db)
	invoiceRepo := mongostore.NewInvoiceRepository(st.db)
	fiscalRepo := mongostore.NewFiscalRepository(st.db)

	var (
		cache    ports.ClientListCache
		guard    ports.MutationGuard
		sessions ports.SessionStore
	)
	if st.redis != nil {
		cache = redisstore.NewClientCache(st.redis, cfg.Redis.CacheTTL)
		guard = redisstore.NewMutationLock(st.redis, mutationLockTTL, log)
		sessions = redisstore.NewSessionStore(st.redis, cfg.TokenTTL)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, using in-process cache, guard and sessions")
		cache = memory.NewClientCache(cfg.Redis.CacheTTL)
		guard = memory.NewGuard()
		sessions = memory.NewSessionStore()
	}

	sealer := crypto.Plaintext()
	if cfg.SecretsKey != "" {
		if sealer, err = crypto.New(cfg.SecretsKey); err != nil {
			return err
		}
	} else {
		log.Warn().Msg("SECRETS_KEY not set, credentials are stored unencrypted")
	}

	auditStore, err := audit.Open(cfg.Audit.Driver, cfg.Audit.DSN)
	if err != nil {
		return err
	}
	st.closers = append(st.closers, auditStore.Close)

	translator, err := i18n.New(cfg.Locale)
	if err != nil {
		return err
	}

	var publisher queue.Publisher = queue.NewLogPublisher(log)
	if cfg.Notify.AMQPURL != "" {
		amqpPub, err := queue.NewAMQPPublisher(cfg.Notify.AMQPURL, log)
		if err != nil {
			return err
		}
		st.closers = append(st.closers, amqpPub.Close)
		publisher = amqpPub
	}
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, publisher, translator, cfg.Locale, log)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	clients := service.NewClientService(service.ClientDeps{
		Repo:     clientRepo,
		Cache:    cache,
		Guard:    guard,
		Sealer:   sealer,
		Eval:     eval,
		Notifier: dispatcher,
		Audit:    auditStore,
	}, log)

	checks := map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return st.mongo.Ping(ctx, nil) },
		"audit":   auditStore.Ping,
	}
	if st.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return st.redis.Ping(ctx).Err() }
	}

	e := api.NewRouter(api.Deps{
		Log:       log,
		JWTSecret: cfg.JWTSecret,
		Sessions:  sessions,
		Evaluator: eval,
		Auth:      service.NewAuthService(userRepo, sessions, guard, st.registry, cfg.JWTSecret, cfg.TokenTTL, log),
		Users:     service.NewUserService(userRepo, sessions, guard, eval, dispatcher, auditStore, log),
		Clients:   clients,
		Tasks:     service.NewTaskService(taskRepo, clientRepo, userRepo, eval, dispatcher, auditStore, log),
		Invoices:  service.NewInvoiceService(invoiceRepo, clientRepo, eval, dispatcher, auditStore, log),
		Fiscal:    service.NewFiscalService(fiscalRepo, eval, dispatcher, auditStore, log),
		Dashboard: service.NewDashboardService(clientRepo, taskRepo, invoiceRepo, fiscalRepo, eval, log),
		Audit:     auditStore,
		Checks:    checks,
	})
	e.HideBanner = true
	e.HidePort = true

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("roles", cfg.RoleVariant).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
