package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Data struct {
		Backend   string `yaml:"backend"` // csv or clickhouse
		PricesCSV string `yaml:"prices_csv"`
		EventsCSV string `yaml:"events_csv"`
		Symbol    string `yaml:"symbol"`
	} `yaml:"data"`
	Analysis struct {
		Draws            int           `yaml:"draws"`
		Warmup           int           `yaml:"warmup"`
		Chains           int           `yaml:"chains"`
		Seed             int64         `yaml:"seed"`
		MinSegmentLength int           `yaml:"min_segment_length"`
		Budget           time.Duration `yaml:"budget"`
		CacheTTL         time.Duration `yaml:"cache_ttl"`
	} `yaml:"analysis"`
	Correlation struct {
		LagWindowDays   int `yaml:"lag_window_days"`
		PriceWindowDays int `yaml:"price_window_days"`
	} `yaml:"correlation"`
	Cache struct {
		MemoryMaxSize int `yaml:"memory_max_size"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Feed struct {
		Enabled        bool          `yaml:"enabled"`
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"feed"`
	Ingest struct {
		Backend      string        `yaml:"backend"` // kafka or clickhouse
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"ingest"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PRICES_CSV"); v != "" {
		c.Data.PricesCSV = v
	}
	if v := os.Getenv("EVENTS_CSV"); v != "" {
		c.Data.EventsCSV = v
	}
	if v := os.Getenv("FEED_API_KEY"); v != "" {
		c.Feed.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Data.Symbol == "" {
		c.Data.Symbol = "BRENT"
	}
	if c.Analysis.Draws == 0 {
		c.Analysis.Draws = 1000
	}
	if c.Analysis.Warmup == 0 {
		c.Analysis.Warmup = 500
	}
	if c.Analysis.Chains == 0 {
		c.Analysis.Chains = 2
	}
	if c.Analysis.Seed == 0 {
		c.Analysis.Seed = 42
	}
	if c.Analysis.MinSegmentLength == 0 {
		c.Analysis.MinSegmentLength = 2
	}
	if c.Analysis.CacheTTL == 0 {
		c.Analysis.CacheTTL = 10 * time.Minute
	}
	if c.Correlation.LagWindowDays == 0 {
		c.Correlation.LagWindowDays = 30
	}
	if c.Correlation.PriceWindowDays == 0 {
		c.Correlation.PriceWindowDays = 7
	}
	if c.Cache.MemoryMaxSize == 0 {
		c.Cache.MemoryMaxSize = 1000
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Data.Backend {
	case "csv":
		if c.Data.PricesCSV == "" {
			return fmt.Errorf("data.prices_csv is required for csv backend")
		}
		if c.Data.EventsCSV == "" {
			return fmt.Errorf("data.events_csv is required for csv backend")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for clickhouse backend")
		}
		if c.Data.EventsCSV == "" {
			return fmt.Errorf("data.events_csv is required")
		}
	default:
		return fmt.Errorf("data.backend must be 'csv' or 'clickhouse', got '%s'", c.Data.Backend)
	}
	if c.Analysis.MinSegmentLength < 2 {
		return fmt.Errorf("analysis.min_segment_length must be >= 2")
	}
	if c.Feed.Enabled {
		if c.Feed.WebSocketURL == "" {
			return fmt.Errorf("feed.websocket_url is required when feed is enabled")
		}
		if len(c.Feed.Symbols) == 0 {
			return fmt.Errorf("feed.symbols cannot be empty when feed is enabled")
		}
		if c.Ingest.Backend != "kafka" && c.Ingest.Backend != "clickhouse" {
			return fmt.Errorf("ingest.backend must be 'kafka' or 'clickhouse', got '%s'", c.Ingest.Backend)
		}
		if c.Ingest.Backend == "kafka" && len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers required for kafka ingest backend")
		}
	}
	return nil
}
