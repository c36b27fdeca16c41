package main

import (
	"context"
	"flag"
	"os"

	"github.com/pageflow/internal/config"
	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/logger"
	"github.com/pageflow/internal/rbac"
	"github.com/pageflow/internal/service"
	"github.com/pageflow/internal/store"
)

func main() {
	username := flag.String("username", "admin", "account username")
	password := flag.String("password", "", "account password (at least 6 characters)")
	role := flag.String("role", string(rbac.RoleAdmin), "maker, checker or admin")
	flag.Parse()

	cfg, err := config.Load()
	log := logger.New(cfg.LogLevel, true)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	parsed, ok := rbac.Parse(*role)
	if !ok {
		log.Error().Str("role", *role).Msg("unknown role")
		os.Exit(2)
	}

	// 初始化数据库
	gdb, err := db.Open(db.Options{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN, Silent: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	users := service.NewUserService(service.Deps{Store: store.NewGormStore(gdb), Logger: &log})
	created, err := users.EnsureUser(context.Background(), *username, *password, parsed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user")
	}
	if !created {
		log.Info().Str("username", *username).Msg("user already exists, nothing to do")
		return
	}
	log.Info().Str("username", *username).Str("role", string(parsed)).Msg("user created")
}
