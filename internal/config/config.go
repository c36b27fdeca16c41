package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Account is a user seeded at startup when both fields are set.
type Account struct {
	Username string
	Password string
	Role     string
}

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr string `env:"LISTEN_ADDR"`
	Port       string `env:"PORT" envDefault:"8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"release"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN    string `env:"DATABASE_DSN" envDefault:"data/pageflow.db"`

	SessionSecret string `env:"SESSION_SECRET" envDefault:"pageflow-dev-secret"`
	SessionName   string `env:"SESSION_NAME" envDefault:"pageflow_session"`

	UploadDir     string `env:"UPLOAD_DIR" envDefault:"data/uploads"`
	UploadURLPath string `env:"UPLOAD_URL_PATH" envDefault:"/uploads"`

	ExportRoot     string `env:"EXPORT_ROOT" envDefault:"data/exports"`
	ExportSchedule string `env:"EXPORT_SCHEDULE"`
	SiteName       string `env:"SITE_NAME" envDefault:"pageflow"`
	SiteBaseURL    string `env:"SITE_BASE_URL"`

	RedisURL        string        `env:"REDIS_URL"`
	PreviewCacheTTL time.Duration `env:"PREVIEW_CACHE_TTL" envDefault:"5m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	BootstrapAdminUser       string `env:"BOOTSTRAP_ADMIN_USER"`
	BootstrapAdminPassword   string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
	BootstrapCheckerUser     string `env:"BOOTSTRAP_CHECKER_USER"`
	BootstrapCheckerPassword string `env:"BOOTSTRAP_CHECKER_PASSWORD"`
	BootstrapMakerUser       string `env:"BOOTSTRAP_MAKER_USER"`
	BootstrapMakerPassword   string `env:"BOOTSTRAP_MAKER_PASSWORD"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, err
	}
	return Parse()
}

// Parse builds the config from the current environment only.
func Parse() (AppConfig, error) {
	cfg, err := env.ParseAs[AppConfig]()
	if err != nil {
		return AppConfig{}, err
	}

	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":" + strings.TrimSpace(cfg.Port)
	}
	cfg.UploadURLPath = "/" + strings.Trim(strings.TrimSpace(cfg.UploadURLPath), "/")
	if cfg.SiteBaseURL == "" {
		cfg.SiteBaseURL = "https://" + cfg.SiteName + ".com"
	}
	cfg.SiteBaseURL = strings.TrimRight(cfg.SiteBaseURL, "/")

	return cfg, nil
}

// BootstrapAccounts returns the seed users whose credentials are complete.
func (c AppConfig) BootstrapAccounts() []Account {
	candidates := []Account{
		{Username: c.BootstrapAdminUser, Password: c.BootstrapAdminPassword, Role: "admin"},
		{Username: c.BootstrapCheckerUser, Password: c.BootstrapCheckerPassword, Role: "checker"},
		{Username: c.BootstrapMakerUser, Password: c.BootstrapMakerPassword, Role: "maker"},
	}

	accounts := make([]Account, 0, len(candidates))
	for _, account := range candidates {
		account.Username = strings.TrimSpace(account.Username)
		account.Password = strings.TrimSpace(account.Password)
		if account.Username == "" || account.Password == "" {
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts
}
