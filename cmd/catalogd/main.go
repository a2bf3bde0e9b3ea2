package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"editorial_catalog/internal/cache"
	"editorial_catalog/internal/config"
	"editorial_catalog/internal/httpapi"
	"editorial_catalog/internal/publisher"
	"editorial_catalog/internal/scheduler"
	"editorial_catalog/internal/service"
	"editorial_catalog/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.Database.Migrate {
		if err := postgres.Migrate(db); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Events and the listing cache are optional. Both stay nil interfaces
	// when disabled so the services skip them.
	var events service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		events = rabbitMQ
	}

	var listingCache service.ListingCache
	if cfg.Cache.Enabled {
		client, err := cache.Connect(ctx, cache.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		listingCache = cache.NewListingCache(client, cfg.Cache.TTL, logger)
		logger.Info("listing cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
	}

	articleStore := postgres.NewArticleStore(db)
	categoryStore := postgres.NewCategoryStore(db)
	authorStore := postgres.NewAuthorStore(db)
	tagStore := postgres.NewTagStore(db)
	slugIndex := postgres.NewSlugIndex(db)
	txManager := postgres.NewTransactionManager(db)

	notifier := service.NewNotifier(events, listingCache, logger)

	articleService := service.NewArticleService(
		articleStore, categoryStore, authorStore, tagStore, slugIndex, txManager, notifier, logger,
	)
	categoryService := service.NewCategoryService(categoryStore, articleStore, slugIndex, txManager, notifier, logger)
	authorService := service.NewAuthorService(authorStore, articleStore, slugIndex, txManager, notifier, logger)
	tagService := service.NewTagService(tagStore, slugIndex, txManager, notifier, logger)
	queryService := service.NewQueryService(
		articleStore, categoryStore, authorStore, tagStore, listingCache, cfg.Catalog.PublicPageSize, logger,
	)

	handler := httpapi.NewHandler(
		articleService,
		categoryService,
		authorService,
		tagService,
		queryService,
		httpapi.Options{
			AdminPageSize: cfg.Catalog.AdminPageSize,
			RelatedLimit:  cfg.Catalog.RelatedLimit,
		},
		logger,
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httpapi.NewRouter(handler, cfg.HTTP.AdminToken),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	sched := scheduler.NewScheduler(articleService, cfg.Audit.Interval, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	go func() {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("starting editorial catalog",
		"addr", cfg.HTTP.Addr,
		"events", cfg.RabbitMQ.Enabled,
		"cache", cfg.Cache.Enabled,
		"audit_interval", cfg.Audit.Interval,
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
