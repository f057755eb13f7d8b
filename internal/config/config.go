// Package config loads the site configuration from config.yaml, environment
// variables and defaults.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete site configuration.
type Config struct {
	Title     string         `mapstructure:"title"`
	BaseURL   string         `mapstructure:"baseURL"`
	Copyright string         `mapstructure:"copyright"`
	SourceDir string         `mapstructure:"sourceDir"`
	OutputDir string         `mapstructure:"outputDir"`
	Content   ContentConfig  `mapstructure:"content"`
	Feed      FeedConfig     `mapstructure:"feed"`
	Server    ServerConfig   `mapstructure:"server"`
	Search    SearchConfig   `mapstructure:"search"`
	Logging   LoggingConfig  `mapstructure:"logging"`
	Params    map[string]any `mapstructure:"params"`
}

// ContentConfig contains the conventional source directories and content
// presentation settings.
type ContentConfig struct {
	Dir         string `mapstructure:"dir"`
	LayoutsDir  string `mapstructure:"layoutsDir"`
	StaticDir   string `mapstructure:"staticDir"`
	BuildDrafts bool   `mapstructure:"buildDrafts"`
	DateFormat  string `mapstructure:"dateFormat"`
	SummaryLen  int    `mapstructure:"summaryLength"`
}

// FeedConfig controls the generated RSS feed.
type FeedConfig struct {
	Limit       int  `mapstructure:"limit"`
	FullContent bool `mapstructure:"fullContent"`
}

// ServerConfig contains settings for the serve command.
type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	RateLimit int    `mapstructure:"rateLimit"`
}

// SearchConfig controls the static search index.
type SearchConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the configuration for the site rooted at sourceDir. cfgFile
// overrides the conventional config.yaml lookup. A missing config file is
// fine unless it was named explicitly; defaults and ACADEMIC_* environment
// variables still apply.
func Load(cfgFile, sourceDir string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if sourceDir != "" {
			v.AddConfigPath(sourceDir)
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ACADEMIC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if cfgFile != "" {
			return nil, fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if sourceDir != "" {
		cfg.SourceDir = sourceDir
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "Academic Kickstart")
	v.SetDefault("baseURL", "")
	v.SetDefault("sourceDir", ".")
	v.SetDefault("outputDir", "public")

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.layoutsDir", "layouts")
	v.SetDefault("content.staticDir", "static")
	v.SetDefault("content.buildDrafts", false)
	v.SetDefault("content.dateFormat", "Jan 2, 2006")
	v.SetDefault("content.summaryLength", 70)

	v.SetDefault("feed.limit", 15)
	v.SetDefault("feed.fullContent", false)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 1313)
	v.SetDefault("server.rateLimit", 500)

	v.SetDefault("search.enabled", true)

	v.SetDefault("logging.level", "info")
}

func validate(cfg *Config) error {
	if cfg.OutputDir == "" {
		return fmt.Errorf("outputDir must not be empty")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Feed.Limit < 0 {
		return fmt.Errorf("feed.limit must not be negative")
	}
	if cfg.Content.SummaryLen < 0 {
		return fmt.Errorf("content.summaryLength must not be negative")
	}
	return nil
}

// ContentDir returns the content directory resolved against the source dir.
func (c *Config) ContentDir() string { return c.resolve(c.Content.Dir) }

// LayoutsDir returns the layouts directory resolved against the source dir.
func (c *Config) LayoutsDir() string { return c.resolve(c.Content.LayoutsDir) }

// StaticDir returns the static assets directory resolved against the source dir.
func (c *Config) StaticDir() string { return c.resolve(c.Content.StaticDir) }

// PublishDir returns the output directory resolved against the source dir.
func (c *Config) PublishDir() string { return c.resolve(c.OutputDir) }

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) || c.SourceDir == "" || c.SourceDir == "." {
		return dir
	}
	return filepath.Join(c.SourceDir, dir)
}
