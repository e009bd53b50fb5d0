package config

import (
	"flag"
	"regexp"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	// Хранилище
	DatabaseDSN string `env:"DATABASE_URI"`
	StoreDriver string `env:"STORE_DRIVER"`

	// HTTP
	AuthSecret   string `env:"AUTH_SECRET"`
	BaseURL      string `env:"BASE_URL"`
	EnableHTTPS  bool   `env:"ENABLE_HTTPS"`
	PhotoMaxSize int    `env:"PHOTO_MAX_MB"`

	// Прогноз по городам
	DatasetPath  string `env:"DATASET_PATH"`
	RiskRequired bool   `env:"RISK_REQUIRED" envDefault:"true"`
	RiskTrees    int    `env:"RISK_TREES"`

	// Первичный администратор, создаётся при пустой таблице пользователей
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	ServerURL string `env:"-"`
	Version   bool   `env:"-"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "хранилище: memory | postgres | sqlite")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера host:port")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS")
	flag.IntVar(&cfg.PhotoMaxSize, "photo-max-mb", cfg.PhotoMaxSize, "максимальный размер фото, МиБ")
	flag.StringVar(&cfg.DatasetPath, "dataset", cfg.DatasetPath, "CSV с данными по городам")
	flag.BoolVar(&cfg.RiskRequired, "risk-required", cfg.RiskRequired, "завершаться, если набор данных не загрузился")
	flag.IntVar(&cfg.RiskTrees, "risk-trees", cfg.RiskTrees, "число деревьев в ансамбле")
	flag.BoolVar(&cfg.Version, "version", false, "показать версию и выйти")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

// Значения для локального запуска; в проде должны быть переопределены.
const (
	DefaultAuthSecret    = "dev-secret-key"
	DefaultAdminPassword = "admin123"
)

// InsecureDefaults перечисляет секреты, оставленные со значениями по умолчанию.
func (cfg *Config) InsecureDefaults() []string {
	var names []string
	if cfg.AuthSecret == DefaultAuthSecret {
		names = append(names, "AUTH_SECRET")
	}
	if cfg.AdminPassword == DefaultAdminPassword {
		names = append(names, "ADMIN_PASSWORD")
	}
	return names
}

func (cfg *Config) applyDefaults() {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = DefaultAuthSecret
	}
	// BaseURL должен быть "address:port" (без схемы и пути), иначе значение по умолчанию
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	switch cfg.StoreDriver {
	case StoreMemory, StorePostgres, StoreSQLite:
	default:
		if cfg.DatabaseDSN == "" {
			cfg.StoreDriver = StoreMemory
		} else {
			cfg.StoreDriver = StorePostgres
		}
	}

	if cfg.PhotoMaxSize <= 0 {
		cfg.PhotoMaxSize = 5
	}
	if cfg.DatasetPath == "" {
		cfg.DatasetPath = "data/city_crime.csv"
	}
	if cfg.RiskTrees <= 0 {
		cfg.RiskTrees = 25
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = DefaultAdminPassword
	}
}

// PhotoMaxBytes лимит фото в байтах.
func (cfg *Config) PhotoMaxBytes() int64 {
	return int64(cfg.PhotoMaxSize) << 20
}
