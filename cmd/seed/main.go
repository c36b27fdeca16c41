package main

import (
	"context"

	"github.com/pageflow/internal/config"
	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/logger"
	"github.com/pageflow/internal/service"
	"github.com/pageflow/internal/store"
)

// 演示数据生成器
func main() {
	cfg, err := config.Load()
	log := logger.New(cfg.LogLevel, true)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	gdb, err := db.Open(db.Options{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN, Silent: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	services := service.NewServices(service.Deps{Store: store.NewGormStore(gdb), Logger: &log}, service.Options{
		ExportRoot:  cfg.ExportRoot,
		SiteBaseURL: cfg.SiteBaseURL,
	})

	report, err := seed(context.Background(), services)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().
		Int("users", report.users).
		Int("pages", report.pages).
		Int("links", report.links).
		Msg("demo data ready")
}
