package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postboard/internal/config"
	"postboard/internal/db"
	"postboard/internal/router"
	"postboard/internal/services"
	"postboard/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := utils.InitLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Initialize Database
	if err := db.Init(cfg); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	cache, err := utils.NewCache(cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}

	tokens := utils.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	svc := router.Services{
		Auth:         services.NewAuthService(db.DB, tokens),
		Posts:        services.NewPostService(db.DB, cache),
		Interactions: services.NewInteractionService(db.DB, cache),
		Ranking:      services.NewRankingService(db.DB, cache),
	}

	gin.SetMode(cfg.GinMode)
	r := router.New(svc, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server exited")
}
