package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options configures Open.
type Options struct {
	Driver string
	DSN    string
	Silent bool
}

// Open connects to the configured database and migrates the schema.
// An empty sqlite DSN falls back to pageflow.db.
func Open(opts Options) (*gorm.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	dsn := strings.TrimSpace(opts.DSN)

	var dialector gorm.Dialector
	switch driver {
	case "", DriverSQLite:
		if dsn == "" {
			dsn = "pageflow.db"
		}
		if !strings.HasPrefix(dsn, "file:") && !strings.Contains(dsn, ":memory:") {
			if err := ensureParentDir(dsn); err != nil {
				return nil, err
			}
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres driver requires a DSN")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	cfg := &gorm.Config{TranslateError: true}
	if opts.Silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	if dialector.Name() == DriverSQLite {
		// sqlite allows a single writer; funnel everything through one connection
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate 自动迁移模式，为核心模型创建表。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&Page{},
		&PageVersion{},
		&Link{},
		&Component{},
		&PageComponent{},
	)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
