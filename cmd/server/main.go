package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"votesmart/internal/audit"
	auditkafka "votesmart/internal/audit/kafka"
	"votesmart/internal/jwttoken"
	"votesmart/internal/platform/config"
	"votesmart/internal/platform/httpserver"
	"votesmart/internal/platform/logger"
	platformmetrics "votesmart/internal/platform/metrics"
	"votesmart/internal/platform/middleware"
	"votesmart/internal/platform/redis"
	"votesmart/internal/ratelimit"
	"votesmart/internal/registry"
	"votesmart/internal/registry/handler"
	registrymetrics "votesmart/internal/registry/metrics"
	"votesmart/internal/registry/service"
	"votesmart/internal/registry/store"
	httptransport "votesmart/internal/transport/http"
)

const auditBuffer = 256

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	checks := map[string]httptransport.HealthCheck{}

	// Registry and audit state. Postgres when configured, in-memory for
	// local development.
	var (
		regStore   registry.Store
		auditStore audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			return err
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			return err
		}
		if err := audit.EnsureSchema(ctx, db); err != nil {
			return err
		}
		regStore = store.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
		log.InfoContext(ctx, "using postgres storage")
	} else {
		regStore = store.NewMemory()
		auditStore = audit.NewInMemoryStore()
		log.WarnContext(ctx, "DATABASE_URL not set, using in-memory storage")
	}
	checks["store"] = regStore.Ping

	if cfg.AdminAccountID != "" {
		if err := regStore.EnsureMasterAccountID(ctx, cfg.AdminAccountID); err != nil {
			return err
		}
	}

	// Redis backs the public read rate limiter. Absent redis, reads are
	// unthrottled.
	redisClient, err := redis.New(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	var rateLimitMiddleware func(http.Handler) http.Handler
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
		limiter := ratelimit.New(redisClient.Redis(), cfg.RateLimit.Requests, cfg.RateLimit.Window, log)
		rateLimitMiddleware = limiter.Middleware
	}

	// Optional Kafka fan-out of the audit trail.
	var auditSink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := auditkafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		auditSink = sink
		log.InfoContext(ctx, "audit events published to kafka", "topic", cfg.Kafka.AuditTopic)
	}

	publisher := audit.NewPublisher(auditBuffer, log)
	auditWorker := audit.NewWorker(auditStore, auditSink, publisher.Inbox(), log)

	registryService := service.New(regStore, registrymetrics.New(), publisher)

	jwtService := jwttoken.New(cfg.JWTSigningKey, 24*time.Hour)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:    log,
		Metrics:   platformmetrics.New(),
		Registry:  handler.New(registryService, log),
		Auth:      middleware.RequireAuth(&tokenValidator{jwt: jwtService}, log),
		RateLimit: rateLimitMiddleware,
		Checks:    checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := auditWorker.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		log.InfoContext(ctx, "starting votesmart registry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// tokenValidator adapts the JWT service to the auth middleware.
type tokenValidator struct {
	jwt *jwttoken.JWTService
}

func (v *tokenValidator) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := v.jwt.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{AccountID: claims.AccountID}, nil
}
