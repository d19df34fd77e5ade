package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FLEETLINE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Phone        PhoneConfig
	Classifier   ClassifierConfig
	WhatsApp     WhatsAppConfig
	Telegram     TelegramConfig
	Dispatch     DispatchConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FLEETLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"FLEETLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FLEETLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLEETLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FLEETLINE_DB_DSN"`
	Driver string `envconfig:"FLEETLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FLEETLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"FLEETLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FLEETLINE_DB_USER"`
	LegacyPassword string `envconfig:"FLEETLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"FLEETLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"FLEETLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLEETLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLEETLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLEETLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLEETLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database DSN or host/user/name required")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.LegacyUser),
		url.QueryEscape(d.LegacyPassword),
		d.LegacyHost,
		d.LegacyPort,
		d.LegacyName,
		d.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"FLEETLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FLEETLINE_REDIS_ADDR"`
	Password     string        `envconfig:"FLEETLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLEETLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLEETLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLEETLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLEETLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLEETLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLEETLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PhoneConfig describes the national numbering plan used when enumerating
// equivalent encodings of a driver's phone number.
type PhoneConfig struct {
	CountryCode    string `envconfig:"FLEETLINE_PHONE_COUNTRY_CODE" default:"55"`
	AreaCodeLength int    `envconfig:"FLEETLINE_PHONE_AREA_CODE_LENGTH" default:"2"`
}

type ClassifierConfig struct {
	BaseURL string        `envconfig:"FLEETLINE_CLASSIFIER_BASE_URL"`
	APIKey  string        `envconfig:"FLEETLINE_CLASSIFIER_API_KEY"`
	Timeout time.Duration `envconfig:"FLEETLINE_CLASSIFIER_TIMEOUT" default:"10s"`
}

type WhatsAppConfig struct {
	BaseURL       string        `envconfig:"FLEETLINE_WHATSAPP_BASE_URL" default:"https://graph.facebook.com/v19.0"`
	PhoneNumberID string        `envconfig:"FLEETLINE_WHATSAPP_PHONE_NUMBER_ID"`
	AccessToken   string        `envconfig:"FLEETLINE_WHATSAPP_ACCESS_TOKEN"`
	TokenTTL      time.Duration `envconfig:"FLEETLINE_WHATSAPP_TOKEN_TTL" default:"1h"`
	Timeout       time.Duration `envconfig:"FLEETLINE_WHATSAPP_TIMEOUT" default:"8s"`
}

type TelegramConfig struct {
	BaseURL string        `envconfig:"FLEETLINE_TELEGRAM_BASE_URL" default:"https://gatewayapi.telegram.org"`
	Token   string        `envconfig:"FLEETLINE_TELEGRAM_TOKEN"`
	Sender  string        `envconfig:"FLEETLINE_TELEGRAM_SENDER"`
	Timeout time.Duration `envconfig:"FLEETLINE_TELEGRAM_TIMEOUT" default:"8s"`
}

type DispatchConfig struct {
	ClassifyTimeout time.Duration `envconfig:"FLEETLINE_DISPATCH_CLASSIFY_TIMEOUT" default:"10s"`
	SendTimeout     time.Duration `envconfig:"FLEETLINE_DISPATCH_SEND_TIMEOUT" default:"8s"`
	DedupeTTL       time.Duration `envconfig:"FLEETLINE_DISPATCH_DEDUPE_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FLEETLINE_FEATURE_AUTO_MIGRATE" default:"false"`
}
