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
	"github.com/rs/zerolog"

	_ "github.com/tradelink/marketplace/docs"
	"github.com/tradelink/marketplace/internal/api"
	"github.com/tradelink/marketplace/internal/api/handler"
	"github.com/tradelink/marketplace/internal/core/ports"
	"github.com/tradelink/marketplace/internal/core/service"
	"github.com/tradelink/marketplace/internal/infrastructure/config"
	"github.com/tradelink/marketplace/internal/infrastructure/db/memory"
	mongodb "github.com/tradelink/marketplace/internal/infrastructure/db/mongo"
	redisdb "github.com/tradelink/marketplace/internal/infrastructure/db/redis"
	"github.com/tradelink/marketplace/internal/infrastructure/queue"
	"github.com/tradelink/marketplace/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Marketplace API
// @version                     1.0
// @description                 Listings, quotes and peer ratings between customers and sole traders.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Level: "error"})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: "marketplace"})

	store, err := openStore(ctx, cfg, logger.For("store"))
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("failed to open store")
	}
	defer store.close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers, store.activity, logger.For("activity"))
	dispatcher.Start(workerCtx)

	policy := service.NewPolicy()
	sessions := service.NewSessionService(store.users, store.revocations, cfg.JWTSecret, cfg.SessionTTL, logger.For("sessions"))
	svc := api.Services{
		Sessions: sessions,
		Accounts: service.NewAccountService(store.users, sessions, dispatcher, logger.For("accounts")),
		Listings: service.NewListingService(store.listings, policy, dispatcher, logger.For("listings")),
		Quotes:   service.NewQuoteService(store.quotes, store.listings, policy, dispatcher, logger.For("quotes")),
		Ratings: service.NewRatingService(store.ratings, store.users, store.quotes, policy, service.RatingRules{
			AllowSelf:           cfg.Ratings.AllowSelf,
			RequireTradePartner: cfg.Ratings.RequireTradePartner,
		}, dispatcher, logger.For("ratings")),
		Users: service.NewUserService(store.users, policy),
	}

	e := api.NewRouter(svc, api.Options{
		SecureCookie:    cfg.CookieSecure,
		LoginRatePerMin: cfg.LoginRatePerMin,
		Readiness:       store.readiness,
	}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("shutdown complete")
}

// backend is the set of repositories the services run on.
type backend struct {
	users       ports.UserRepository
	listings    ports.ListingRepository
	quotes      ports.QuoteRepository
	ratings     ports.RatingRepository
	activity    ports.ActivityRepository
	revocations ports.SessionRevocations
	readiness   map[string]handler.PingFunc
	close       func()
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		return &backend{
			users:       mem.Users(),
			listings:    mem.Listings(),
			quotes:      mem.Quotes(),
			ratings:     mem.Ratings(),
			activity:    mem.Activity(),
			revocations: mem.Revocations(),
			readiness:   map[string]handler.PingFunc{"memory": mem.Ping},
			close:       func() {},
		}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	users := mongodb.NewUserRepository(db)
	listings := mongodb.NewListingRepository(db)
	quotes := mongodb.NewQuoteRepository(client, db, listings)
	ratings := mongodb.NewRatingRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, listings, quotes, ratings); err != nil {
		log.Warn().Err(err).Msg("index creation failed")
	}

	return &backend{
		users:       users,
		listings:    listings,
		quotes:      quotes,
		ratings:     ratings,
		activity:    mongodb.NewActivityRepository(db),
		revocations: redisdb.NewRevocationStore(rdb),
		readiness: map[string]handler.PingFunc{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		close: func() {
			_ = rdb.Close()
			_ = client.Disconnect(context.Background())
		},
	}, nil
}
