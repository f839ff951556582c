// Command authgated serves the authgate HTTP API.
//
// Configuration comes from the environment (a .env file is honored when
// present):
//
//	HTTP_ADDR                    listen address (default :8080)
//	JWT_SECRET_KEY               token signing key (required)
//	ACCESS_TOKEN_EXPIRE_MINUTES  token lifetime (default 30)
//	RATE_LIMIT                   admissions per window (default 5)
//	RATE_WINDOW                  window length (default 1m)
//	REDIS_ADDR                   Redis for admission counters; empty runs
//	                             an in-process miniredis instead
//	AUDIT_LOG                    file for JSON-lines audit events; empty
//	                             writes them to stderr
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/margitantal68/authgate"
	"github.com/margitantal68/authgate/directory"
	"github.com/margitantal68/authgate/httpapi"
)

type envConfig struct {
	HTTPAddr                 string        `env:"HTTP_ADDR" envDefault:":8080"`
	JWTSecretKey             string        `env:"JWT_SECRET_KEY,required"`
	AccessTokenExpireMinutes int           `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	RateLimit                int           `env:"RATE_LIMIT" envDefault:"5"`
	RateWindow               time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
	RedisAddr                string        `env:"REDIS_ADDR"`
	AuditLog                 string        `env:"AUDIT_LOG"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("authgated exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	_ = godotenv.Load()

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return err
	}

	rdb, cleanup, err := openRedis(cfg.RedisAddr, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	auditSink, closeAudit, err := openAuditSink(cfg.AuditLog)
	if err != nil {
		return err
	}
	defer closeAudit()

	serviceCfg := authgate.DefaultConfig()
	serviceCfg.JWT.Secret = []byte(cfg.JWTSecretKey)
	serviceCfg.JWT.AccessTTL = time.Duration(cfg.AccessTokenExpireMinutes) * time.Minute
	serviceCfg.RateLimit.Limit = cfg.RateLimit
	serviceCfg.RateLimit.Period = cfg.RateWindow

	svc, err := authgate.New().
		WithConfig(serviceCfg).
		WithRedis(rdb).
		WithUserDirectory(directory.NewMemory()).
		WithAuditSink(auditSink).
		Build()
	if err != nil {
		return err
	}
	defer svc.Close()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(svc, logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.HTTPAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// openRedis connects to the configured Redis, or starts an in-process
// miniredis so the service runs without external infrastructure.
func openRedis(addr string, logger *slog.Logger) (*redis.Client, func(), error) {
	if addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	logger.Info("no REDIS_ADDR configured, using in-process miniredis",
		slog.String("addr", mr.Addr()))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

func openAuditSink(path string) (authgate.AuditSink, func(), error) {
	if path == "" {
		return authgate.NewJSONWriterSink(os.Stderr), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return authgate.NewJSONWriterSink(f), func() { _ = f.Close() }, nil
}
