package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"StockCast/pkg/util"
)

// Config is the full application configuration, loaded from YAML with
// environment variable overrides for deployment-specific values.
type Config struct {
	Environment string          `yaml:"environment"`
	Server      ServerConfig    `yaml:"server"`
	Logging     LoggingConfig   `yaml:"logging"`
	Polygon     PolygonConfig   `yaml:"polygon"`
	FRED        FREDConfig      `yaml:"fred"`
	Postgres    PostgresConfig  `yaml:"postgres"`
	Kafka       KafkaConfig     `yaml:"kafka"`
	Redis       RedisConfig     `yaml:"redis"`
	Engine      EngineConfig    `yaml:"engine"`
	Validator   ValidatorConfig `yaml:"validator"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORS            bool          `yaml:"cors"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type PolygonConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	LookbackYears int           `yaml:"lookback_years"`
	Timeout       time.Duration `yaml:"timeout"`
}

type FREDConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

type RedisConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	HistoryTTL time.Duration `yaml:"history_ttl"`
	MacroTTL   time.Duration `yaml:"macro_ttl"`
}

// EngineConfig tunes the forecast pipeline.
type EngineConfig struct {
	WarmUp          int     `yaml:"warm_up"`
	MinRawBars      int     `yaml:"min_raw_bars"`
	MinTrainingRows int     `yaml:"min_training_rows"`
	SplitRatio      float64 `yaml:"split_ratio"`
	TrendWindow     int     `yaml:"trend_window"`
	VolPeriod       int     `yaml:"vol_period"`
}

// ValidatorConfig tunes the accuracy validation job.
type ValidatorConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	RequestDelay  time.Duration `yaml:"request_delay"`
	Cooldown      time.Duration `yaml:"cooldown"`
	CooldownEvery int           `yaml:"cooldown_every"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	ScanInterval  time.Duration `yaml:"scan_interval"`
}

// Load reads a YAML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadWithEnv loads the config file then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORS:            true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Polygon: PolygonConfig{
			BaseURL:       "https://api.polygon.io",
			LookbackYears: 2,
			Timeout:       15 * time.Second,
		},
		FRED: FREDConfig{
			BaseURL: "https://api.stlouisfed.org",
			Timeout: 10 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic:        "stockcast.events",
			BatchSize:    100,
			BatchTimeout: time.Second,
		},
		Redis: RedisConfig{
			HistoryTTL: 15 * time.Minute,
			MacroTTL:   time.Hour,
		},
		Engine: EngineConfig{
			WarmUp:          50,
			MinRawBars:      100,
			MinTrainingRows: 30,
			SplitRatio:      0.8,
			TrendWindow:     20,
			VolPeriod:       20,
		},
		Validator: ValidatorConfig{
			BatchSize:     50,
			RequestDelay:  time.Second,
			Cooldown:      60 * time.Second,
			CooldownEvery: 5,
			FetchTimeout:  10 * time.Second,
			ScanInterval:  time.Hour,
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STOCKCAST_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Polygon.APIKey = v
	}
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.FRED.APIKey = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Polygon.APIKey == "" {
		return fmt.Errorf("polygon api key is required")
	}
	if c.Polygon.LookbackYears <= 0 {
		return fmt.Errorf("polygon lookback must be positive, got %d", c.Polygon.LookbackYears)
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres dsn is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka enabled but no brokers configured")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis enabled but no addr configured")
	}
	if c.Engine.SplitRatio <= 0 || c.Engine.SplitRatio >= 1 {
		return fmt.Errorf("split ratio must be in (0, 1), got %v", c.Engine.SplitRatio)
	}
	if c.Engine.MinTrainingRows < 2 {
		return fmt.Errorf("min training rows must be at least 2, got %d", c.Engine.MinTrainingRows)
	}
	if c.Validator.BatchSize <= 0 {
		return fmt.Errorf("validator batch size must be positive, got %d", c.Validator.BatchSize)
	}
	if c.Validator.CooldownEvery < 0 {
		return fmt.Errorf("validator cooldown interval cannot be negative, got %d", c.Validator.CooldownEvery)
	}
	return nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool { return c.Environment == "production" }
