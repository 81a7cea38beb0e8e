package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/bookstore/internal/banner"
	"github.com/vasiliy-maslov/bookstore/internal/cart"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
	"github.com/vasiliy-maslov/bookstore/internal/config"
	"github.com/vasiliy-maslov/bookstore/internal/db"
	"github.com/vasiliy-maslov/bookstore/internal/faq"
	apihttp "github.com/vasiliy-maslov/bookstore/internal/handler/http"
	"github.com/vasiliy-maslov/bookstore/internal/media"
	"github.com/vasiliy-maslov/bookstore/internal/order"
	"github.com/vasiliy-maslov/bookstore/internal/session"
	"github.com/vasiliy-maslov/bookstore/internal/stats"
	"github.com/vasiliy-maslov/bookstore/internal/telemetry"
	"github.com/vasiliy-maslov/bookstore/internal/user"
)

const serviceName = "bookstore"

func setupLogger(cfg config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", serviceName).Logger()
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogger(cfg.App)

	log.Info().Msg("Bookstore service starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, serviceName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up tracing")
	}

	if err := db.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	rdb, err := session.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer rdb.Close()

	objects, err := media.NewMinioStore(ctx, cfg.Minio)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to object storage")
	}

	responder, err := faq.Load(cfg.FAQPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load FAQ")
	}

	bookRepo := catalog.NewRepository(pg.Pool)
	cartRepo := cart.NewRepository(pg.Pool)
	orderRepo := order.NewRepository(pg.Pool)
	userRepo := user.NewRepository(pg.Pool)
	bannerRepo := banner.NewRepository(pg.Pool)

	users := user.NewService(userRepo)
	books := catalog.NewService(bookRepo)
	carts := cart.NewService(cartRepo, bookRepo, pg)
	checkout := order.NewWorkflow(pg, bookRepo, cartRepo, orderRepo)
	orders := order.NewService(orderRepo, checkout)
	banners := banner.NewService(bannerRepo)
	sessions := session.NewRedisStore(rdb, cfg.Redis.SessionTTL)
	reporter := stats.NewReporter(pg.SQLX())
	uploader := media.NewUploader(objects, cfg.Minio.URLTTL)

	authn := apihttp.NewAuthenticator(sessions, users)
	router := apihttp.NewRouter(apihttp.Handlers{
		Auth:    apihttp.NewAuthHandler(users, sessions, cfg.Redis.SessionTTL),
		Books:   apihttp.NewBookHandler(books),
		Cart:    apihttp.NewCartHandler(carts),
		Orders:  apihttp.NewOrderHandler(orders),
		Admin:   apihttp.NewAdminHandler(users, orders, reporter),
		Banners: apihttp.NewBannerHandler(banners),
		Upload:  apihttp.NewUploadHandler(uploader),
		Chat:    apihttp.NewChatHandler(responder),
		Health: apihttp.NewHealthHandler(map[string]apihttp.PingFunc{
			"postgres": pg.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
	}, authn.RequireAuth, 30*time.Second)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Tracer shutdown failed")
	}

	log.Info().Msg("Bookstore service stopped gracefully")
}
