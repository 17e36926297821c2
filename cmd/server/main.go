// Command server runs the auth service HTTP API.
//
//	@title			Auth Service API
//	@version		1.0
//	@description	Credential registration, login, password rotation and cookie sessions.
//	@BasePath		/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/auth-service/internal/api"
	"github.com/99minutos/auth-service/internal/api/handler"
	"github.com/99minutos/auth-service/internal/api/middleware"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/core/service"
	"github.com/99minutos/auth-service/internal/infrastructure/config"
	"github.com/99minutos/auth-service/internal/infrastructure/crypto"
	"github.com/99minutos/auth-service/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/auth-service/internal/infrastructure/db/mongo"
	"github.com/99minutos/auth-service/internal/infrastructure/db/postgres"
	"github.com/99minutos/auth-service/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-service/internal/infrastructure/queue"
	"github.com/99minutos/auth-service/internal/infrastructure/session"
	"github.com/99minutos/auth-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "auth-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "auth-service",
		Env:     cfg.Env,
	})
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	checks := map[string]handler.Check{}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	checks["store"] = store.Ping

	var revoker ports.SessionRevoker = session.Stateless{}
	if cfg.Session.Revocation {
		rdb, err := redis.Connect(ctx, redis.Config{
			URL:      cfg.Redis.URL,
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		rs := redis.NewRevocationStore(rdb, cfg.Session.MaxAge)
		checks["redis"] = rs.Ping
		revoker = rs
	} else {
		log.Warn().Msg("SESSION_REVOCATION disabled: logout and password changes do not invalidate issued sessions")
	}

	bcrypt, err := crypto.NewBcryptHasher(cfg.SecretKey, cfg.HashCost)
	if err != nil {
		return err
	}
	pool := queue.NewHashPool(cfg.HashWorkers, logger.Component("hash_pool"))
	// The pool outlives the signal context so requests drained by Shutdown
	// can still hash.
	pool.Start(context.Background())
	defer pool.Stop()

	codec, err := session.NewCodec(cfg.Session.Format, session.Options{
		Name:          cfg.Session.CookieName,
		SigningKey:    []byte(cfg.SecretKey),
		EncryptionKey: []byte(cfg.Session.EncryptionKey),
		MaxAge:        cfg.Session.MaxAge,
	})
	if err != nil {
		return err
	}

	authService := service.NewAuthService(store, queue.NewPooledHasher(pool, bcrypt), revoker, logger.Component("auth_service"))

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		Codec:       codec,
		Revoker:     revoker,
		Cookie: middleware.CookieOptions{
			Name:     cfg.Session.CookieName,
			Domain:   cfg.Session.Domain,
			MaxAge:   cfg.Session.MaxAge,
			Secure:   cfg.Session.Secure,
			SameSite: cfg.Session.SameSiteMode(),
		},
		Checks:      checks,
		CORSOrigins: cfg.CORSOrigins,
		Log:         logger.Component("http"),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreDriver).
			Str("session_format", cfg.Session.Format).
			Int("hash_workers", pool.Workers()).
			Msg("starting auth service")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := e.Shutdown(shutdownCtx)
		pool.Stop()
		return err
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.CredentialStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.NewCredentialStore(), func() {}, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		store := mongostore.NewCredentialStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo credential store ready")
		return store, closeFn, nil

	default:
		pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewCredentialStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Msg("postgres credential store ready")
		return store, pool.Close, nil
	}
}
