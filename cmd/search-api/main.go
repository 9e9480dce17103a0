package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"smartshop-search/internal/common/config"
	"smartshop-search/internal/common/database"
	commonhttp "smartshop-search/internal/common/http"
	"smartshop-search/internal/common/logger"
	"smartshop-search/internal/common/observability"
	"smartshop-search/internal/httpapi"
	chatsearch "smartshop-search/internal/pipeline/chat-search"
	extractintent "smartshop-search/internal/pipeline/extract-intent"
	parseintent "smartshop-search/internal/pipeline/parse-intent"
	querycatalog "smartshop-search/internal/pipeline/query-catalog"
)

func main() {
	cfg, envFile, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(
		zap.String("service", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting search api", map[string]interface{}{
		"version": cfg.App.Version,
		"envFile": envFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name, log)

	// --- Catalog store, fatal when unreachable after retries ---
	pgCfg := cfg.Database.Postgres
	var pg *database.PostgresClient
	err = database.RetryWithBackoff(ctx, func() error {
		if pg != nil {
			_ = pg.Close()
		}
		var err error
		pg, err = database.NewPostgres(pgCfg)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, config.GetDuration(pgCfg.QueryTimeout))
		defer cancel()
		return pg.Ping(pingCtx)
	}, pgCfg.ConnectRetries, time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}
	defer pg.Close()
	log.Info("PostgreSQL connected", map[string]interface{}{"host": pgCfg.Host, "database": pgCfg.Database})

	catalog := querycatalog.NewHandler(&querycatalog.Config{
		Timeout:      config.GetDuration(pgCfg.QueryTimeout),
		MaxPageLimit: 100,
	}, pg.DB, log)

	if err := catalog.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema check failed", zap.Error(err))
	}

	// --- Intent cache, optional ---
	var redisClient *redis.Client
	if cfg.Database.Redis.Enabled() {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err == nil {
			err = rc.Ping(ctx)
		}
		if err != nil {
			log.Warn("intent cache disabled", map[string]interface{}{"error": err.Error()})
			if rc != nil {
				_ = rc.Close()
			}
		} else {
			redisClient = rc.Client
			defer rc.Close()
			log.Info("Redis connected", map[string]interface{}{"address": cfg.Database.Redis.Address})
		}
	}
	cache := chatsearch.NewIntentCache(redisClient, config.GetDuration(cfg.Cache.IntentTTL), log)

	// --- Language service ---
	genaiCfg := cfg.APIs.GenAI
	var completer extractintent.Completer = extractintent.DisabledCompleter{}
	if genaiCfg.Configured() {
		httpClient := commonhttp.NewClient(0, cfg.App.Name+"/"+cfg.App.Version)
		gemini, err := extractintent.NewGeminiCompleter(ctx, extractintent.GeminiConfig{
			APIKey:     genaiCfg.APIKey,
			Model:      genaiCfg.Model,
			BaseURL:    genaiCfg.BaseURL,
			HTTPClient: httpClient.Standard(),
		})
		if err != nil {
			log.Warn("language service unavailable, searches will be unfiltered", map[string]interface{}{"error": err.Error()})
		} else {
			completer = gemini
			log.Info("language service configured", map[string]interface{}{"model": gemini.Name()})
		}
	} else {
		log.Warn("GOOGLE_API_KEY not set, searches will be unfiltered", nil)
	}

	extractor := extractintent.NewHandler(&extractintent.Config{
		Timeout:         config.GetDuration(genaiCfg.Timeout),
		MaxRetries:      1,
		Temperature:     genaiCfg.Temperature,
		MaxOutputTokens: genaiCfg.MaxOutputTokens,
	}, completer, log)

	chat := chatsearch.NewService(
		chatsearch.Config{ExposeErrorDetail: !cfg.App.IsProduction()},
		extractor,
		parseintent.NewHandler(parseintent.LoadConfig(), log),
		catalog,
		cache,
		log,
	)

	api := httpapi.NewServer(httpapi.Options{
		Production:       cfg.App.IsProduction(),
		GeminiConfigured: genaiCfg.Configured(),
		AllowedOrigin:    cfg.Server.AllowedOrigin,
		MetricsHandler:   promhttp.Handler(),
	}, chat, catalog, obs, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("search api stopped", nil)
}
