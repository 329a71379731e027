// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sitesnap/sitesnap/internal/logging"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig  `mapstructure:"crawler"`
	Browser BrowserConfig  `mapstructure:"browser"`
	Output  OutputConfig   `mapstructure:"output"`
	Server  ServerConfig   `mapstructure:"server"`
	DB      DBConfig       `mapstructure:"db"`
	Logging logging.Config `mapstructure:"logging"`
	Sites   []Site         `mapstructure:"sites"`
}

// CrawlerConfig governs frontier and page-processing behavior.
type CrawlerConfig struct {
	MaxPages          int           `mapstructure:"max_pages"`
	BatchSize         int           `mapstructure:"batch_size"`
	PoolSize          int           `mapstructure:"pool_size"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"`
	ScrollMaxAttempts int           `mapstructure:"scroll_max_attempts"`
	ScrollDelay       time.Duration `mapstructure:"scroll_delay"`
	CleanupScript     string        `mapstructure:"cleanup_script"`
	Headless          bool          `mapstructure:"headless"`
}

// BrowserConfig configures the headless Chrome layer.
type BrowserConfig struct {
	UserAgent          string        `mapstructure:"user_agent"`
	NavTimeout         time.Duration `mapstructure:"nav_timeout"`
	NetworkIdleWindow  time.Duration `mapstructure:"network_idle_window"`
	NetworkIdleTimeout time.Duration `mapstructure:"network_idle_timeout"`
}

// OutputConfig sets the root directory for page record files.
type OutputConfig struct {
	Directory string `mapstructure:"directory"`
}

// ServerConfig controls the scheduler daemon's HTTP surface. A zero port
// disables the server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig controls the optional Postgres record store. An empty DSN
// disables it.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Site describes one recurring crawl target.
type Site struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
	// Schedule is a cron expression; ignored by the run-once path.
	Schedule string `mapstructure:"schedule"`
	// MaxPages overrides the crawler default when > 0.
	MaxPages int  `mapstructure:"max_pages"`
	Enabled  bool `mapstructure:"enabled"`
}

// Load builds a Config from disk and environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITESNAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.max_pages", 100)
	v.SetDefault("crawler.batch_size", 5)
	v.SetDefault("crawler.pool_size", 5)
	v.SetDefault("crawler.settle_delay", "2s")
	v.SetDefault("crawler.scroll_max_attempts", 10)
	v.SetDefault("crawler.scroll_delay", "1s")
	v.SetDefault("crawler.headless", true)
	v.SetDefault("browser.user_agent", "sitesnap-bot/0.1")
	v.SetDefault("browser.nav_timeout", "45s")
	v.SetDefault("browser.network_idle_window", "500ms")
	v.SetDefault("browser.network_idle_timeout", "30s")
	v.SetDefault("output.directory", "outputs")
	v.SetDefault("server.port", 0)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.MaxPages < 1 {
		return fmt.Errorf("crawler.max_pages must be >= 1")
	}
	if c.Crawler.BatchSize < 1 {
		return fmt.Errorf("crawler.batch_size must be >= 1")
	}
	if c.Crawler.PoolSize < 1 {
		return fmt.Errorf("crawler.pool_size must be >= 1")
	}
	if c.Crawler.ScrollMaxAttempts < 0 {
		return fmt.Errorf("crawler.scroll_max_attempts must be >= 0")
	}
	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory must be set")
	}
	if c.Server.Port < 0 {
		return fmt.Errorf("server.port must be >= 0")
	}
	for i, site := range c.Sites {
		if site.Name == "" {
			return fmt.Errorf("sites[%d].name must be set", i)
		}
		if site.URL == "" {
			return fmt.Errorf("sites[%d].url must be set", i)
		}
		if site.Enabled && site.Schedule == "" {
			return fmt.Errorf("sites[%d].schedule must be set when enabled", i)
		}
	}
	return nil
}
