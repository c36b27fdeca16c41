package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/pageflow/internal/cache"
	"github.com/pageflow/internal/config"
	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/handler"
	"github.com/pageflow/internal/logger"
	"github.com/pageflow/internal/rbac"
	"github.com/pageflow/internal/router"
	"github.com/pageflow/internal/scheduler"
	"github.com/pageflow/internal/service"
	"github.com/pageflow/internal/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("starting pageflow server")

	// 初始化数据库
	gdb, err := db.Open(db.Options{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	previewCache, err := cache.New(cfg.RedisURL, "pageflow:", cfg.PreviewCacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize preview cache")
	}
	defer previewCache.Close()

	services := service.NewServices(service.Deps{
		Store:  store.NewGormStore(gdb),
		Cache:  previewCache,
		Logger: &log,
	}, service.Options{
		PreviewTTL:  cfg.PreviewCacheTTL,
		ExportRoot:  cfg.ExportRoot,
		SiteBaseURL: cfg.SiteBaseURL,
	})

	ctx := context.Background()
	for _, account := range cfg.BootstrapAccounts() {
		created, err := services.Users.EnsureUser(ctx, account.Username, account.Password, rbac.Normalize(account.Role))
		if err != nil {
			log.Fatal().Err(err).Str("username", account.Username).Msg("failed to seed account")
		}
		if created {
			log.Info().Str("username", account.Username).Str("role", account.Role).Msg("seeded account")
		}
	}

	exports := scheduler.New(services.Export, cfg.ExportSchedule, log)
	if err := exports.Start(); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ExportSchedule).Msg("failed to start export scheduler")
	}

	// 设置 Gin 服务器
	gin.SetMode(cfg.GinMode)
	api := handler.NewAPI(services, cfg.UploadDir, cfg.UploadURLPath, log)
	r := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		SessionName:   cfg.SessionName,
		SecureCookies: cfg.GinMode == gin.ReleaseMode,
		UploadDir:     cfg.UploadDir,
		UploadURLPath: cfg.UploadURLPath,
		Logger:        log,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           gzhttp.GzipHandler(r),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to run server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	exports.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
