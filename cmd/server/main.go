package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/sportsync/sportsync-api/internal/config"
	api "github.com/sportsync/sportsync-api/internal/http"
	"github.com/sportsync/sportsync-api/internal/log"
	"github.com/sportsync/sportsync-api/internal/metrics"
	"github.com/sportsync/sportsync-api/internal/queue"
	"github.com/sportsync/sportsync-api/internal/repo"
	"github.com/sportsync/sportsync-api/internal/security"
)

// @title SportSync API
// @version 1.0
// @description Sports matchmaking service: accounts, sessions and pickup matches.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("config: %v", err)
	}

	logger, err := log.Init(cfg.IsProduction())
	if err != nil {
		stdlog.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.DDEnabled {
		tracer.Start(
			tracer.WithService("sportsync-api"),
			tracer.WithEnv(cfg.Env),
		)
		defer tracer.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureUserIndexes(ctx); err != nil {
		logger.Fatal("user indexes", zap.Error(err))
	}
	if err := store.EnsureMatchIndexes(ctx); err != nil {
		logger.Fatal("match indexes", zap.Error(err))
	}

	rds := repo.NewRedis(cfg.RedisAddr)
	if err := rds.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		rds = nil
	}
	if rds != nil {
		defer rds.Close()
	}

	var pub queue.Publisher
	if cfg.RabbitURL != "" {
		pub, err = queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
			pub = queue.NewNoop()
		}
	} else {
		pub = queue.NewNoop()
	}
	defer pub.Close()

	issuer, err := security.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer,
		time.Duration(cfg.JWTTTLDays)*24*time.Hour)
	if err != nil {
		logger.Fatal("token issuer", zap.Error(err))
	}

	metrics.MustRegister()

	h := api.NewHandler(store, issuer, cfg, rds, pub)
	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("sportsync-api listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
