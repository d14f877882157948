package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatTelegramENV   = "TELEGRAM_CHAT_ID"
	databaseDSN       = "DATABASE_DSN"

	ModeLive = "live"
	ModeTest = "test"

	DriverRedis  = "redis"
	DriverNats   = "nats"
	DriverMemory = "memory"

	defaultChannel = "trailing-trade-configuration-changed"
)

// Config ...
type Config struct {
	Path string `yaml:"-"`

	Mode     string `yaml:"mode"` // live | test
	LogLevel string `yaml:"log_level"`

	// Символы по умолчанию, если в БД пусто
	Symbols []string `yaml:"symbols"`

	FeatureToggle struct {
		NotifyDebug bool `yaml:"notify_debug"`
	} `yaml:"feature_toggle"`

	Feed struct {
		Interval        string        `yaml:"interval"`
		HeartbeatPeriod time.Duration `yaml:"heartbeat_period"`
		StaleAfter      time.Duration `yaml:"stale_after"`
		PollPeriod      time.Duration `yaml:"poll_period"`
		Channel         string        `yaml:"channel"` // канал «конфигурация изменилась»
		Warmup          bool          `yaml:"warmup"`  // прогреть кэш REST-ценами при старте
	} `yaml:"feed"`

	Binance struct {
		WSURL       string `yaml:"ws_url"`
		RESTURL     string `yaml:"rest_url"`
		TestWSURL   string `yaml:"test_ws_url"`
		TestRESTURL string `yaml:"test_rest_url"`
	} `yaml:"binance"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	PubSub struct {
		Driver  string `yaml:"driver"` // redis | nats | memory
		NatsURL string `yaml:"nats_url"`
	} `yaml:"pubsub"`

	DB string `yaml:"db_dsn"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Service struct {
		Host      string `yaml:"host"`
		AdminPort int    `yaml:"admin_port"`
	} `yaml:"service"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	path := resolvePath(getenvDefault(configFilePathENV, "values_local.yaml"))
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	config := defaults()
	config.Path = path

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	config.applyEnv()

	if err = config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func defaults() Config {
	var c Config
	c.Mode = ModeLive
	c.LogLevel = "info"

	c.Feed.Interval = "1m"
	c.Feed.HeartbeatPeriod = time.Second
	c.Feed.StaleAfter = 60 * time.Second
	c.Feed.PollPeriod = time.Second
	c.Feed.Channel = defaultChannel

	c.Binance.WSURL = "wss://stream.binance.com:9443"
	c.Binance.RESTURL = "https://api.binance.com"
	c.Binance.TestWSURL = "wss://testnet.binance.vision"
	c.Binance.TestRESTURL = "https://testnet.binance.vision"

	c.Redis.Addr = "localhost:6379"
	c.PubSub.Driver = DriverRedis

	c.Service.AdminPort = 8080
	c.Tracing.Host = "localhost"
	c.Tracing.Port = 6831
	return c
}

func (c *Config) applyEnv() {
	c.Mode = getenvDefault("MODE", c.Mode)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)
	c.FeatureToggle.NotifyDebug = boolFromEnv("NOTIFY_DEBUG", c.FeatureToggle.NotifyDebug)
	c.Feed.StaleAfter = durationFromEnv("FEED_STALE_AFTER", c.Feed.StaleAfter)

	c.Redis.Addr = getenvDefault("REDIS_ADDR", c.Redis.Addr)
	c.PubSub.Driver = getenvDefault("PUBSUB_DRIVER", c.PubSub.Driver)
	c.PubSub.NatsURL = getenvDefault("NATS_URL", c.PubSub.NatsURL)

	c.DB = getenvDefault(databaseDSN, c.DB)
	c.Telegram.Token = getenvDefault(tokenTelegramENV, c.Telegram.Token)
	c.Telegram.ChatID = int64FromEnv(chatTelegramENV, c.Telegram.ChatID)
}

func (c *Config) validate() error {
	if c.Feed.HeartbeatPeriod <= 0 || c.Feed.PollPeriod <= 0 {
		return fmt.Errorf("feed periods must be positive")
	}
	if c.Feed.StaleAfter <= 0 {
		return fmt.Errorf("feed.stale_after must be positive")
	}
	if c.Feed.Channel == "" {
		return fmt.Errorf("feed.channel is required")
	}
	switch c.PubSub.Driver {
	case DriverRedis, DriverNats, DriverMemory:
	default:
		return fmt.Errorf("unknown pubsub driver %q", c.PubSub.Driver)
	}
	return nil
}

// Live — режим с websocket-стримом. Всё остальное считается тестовым.
func (c *Config) Live() bool { return c.Mode == ModeLive }

// ExchangeURLs — ws и rest эндпоинты под текущий режим.
func (c *Config) ExchangeURLs() (ws, rest string) {
	if c.Live() {
		return c.Binance.WSURL, c.Binance.RESTURL
	}
	return c.Binance.TestWSURL, c.Binance.TestRESTURL
}

func resolvePath(name string) string {
	if strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	return filepath.Join("configs", name)
}

func int64FromEnv(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
