package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kdduha/chatgateway/internal/cache"
	"github.com/kdduha/chatgateway/internal/chat"
	"github.com/kdduha/chatgateway/internal/config"
	"github.com/kdduha/chatgateway/internal/generator"
	"github.com/kdduha/chatgateway/internal/handler"
	"github.com/kdduha/chatgateway/internal/intent"
	"github.com/kdduha/chatgateway/internal/logger"
	"github.com/kdduha/chatgateway/internal/metrics"
	"github.com/kdduha/chatgateway/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	_ "github.com/kdduha/chatgateway/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Chat Gateway API
// @version 1.0
// @description Streaming chat gateway that multiplexes chat tokens with search, image, video and speech generation.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}

	log := logger.New(cfg.Log.Level)
	creds := cfg.Credentials()

	router := chat.NewRouter(cfg.Chat.DefaultModel)
	router.Register(chat.NewGeminiStreamer(cfg.Gemini.APIKey), cfg.Gemini.Models...)
	router.Register(chat.NewOpenAIStreamer(cfg.OpenAI), cfg.OpenAI.Models...)

	searchClient := generator.NewSearchClient(log, cfg.Search)
	if cfg.CacheEnable {
		redisCache := cache.NewRedisCache(
			cfg.RedisConfig.Addr,
			cfg.RedisConfig.Password,
			cfg.RedisConfig.DB,
		)
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unreachable, search results will not be cached until it recovers")
		}
		searchClient.SetCacheClient(redisCache)
		log.WithField("addr", cfg.RedisConfig.Addr).Info("set redis as search cache")
	}

	orchestrator := service.NewOrchestrator(
		intent.NewResolver(cfg.Chat.BuiltinSearchModels),
		router,
		service.Generators{
			Image:  generator.NewImageClient(cfg.Generator, creds),
			Video:  generator.NewVideoClient(cfg.Generator, creds),
			Speech: generator.NewSpeechClient(cfg.Generator, creds),
			Search: searchClient,
		},
		cfg.Chat.Timeout,
	)

	chatHandler := handler.NewChatHandler(orchestrator, log, cfg.Server.MaxBodyBytes)
	healthHandler := handler.NewHealthHandler(creds, router.Models())

	r := chi.NewRouter()
	r.Use([]func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		handler.RequestLogger(log),
		middleware.Recoverer,
		middleware.Throttle(cfg.Server.ThrottleLimit),
		middleware.Timeout(cfg.Server.Timeout),
		metrics.Middleware,
	}...)

	r.Post("/api/chat", chatHandler.Chat)
	r.Get("/healthz", healthHandler.Health)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":   cfg.Server.Port,
			"models": router.Models(),
		}).Info("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server stopped")
}
