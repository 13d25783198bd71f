package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Request  RequestConfig  `yaml:"request"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Frontend FrontendConfig `yaml:"frontend"`
	Veo      VeoConfig      `yaml:"veo"`
	Videos   VideosConfig   `yaml:"videos"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server  LogSettings `yaml:"server"`
	Prompts LogSettings `yaml:"prompts"` // empty path disables prompt history
}

// DBConfig holds database settings for the request cache.
type DBConfig struct {
	Path      string   `yaml:"path"`
	Retention Duration `yaml:"retention"` // cache entries older than this are pruned at startup
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int      `yaml:"retries"`
	Timeout Duration `yaml:"timeout"`
}

// CatalogConfig holds settings for the product catalog collaborator.
type CatalogConfig struct {
	BaseURL string `yaml:"base_url"`
}

// FrontendConfig holds settings for resolving site-relative picture references.
type FrontendConfig struct {
	BaseURL      string `yaml:"base_url"`
	StaticPrefix string `yaml:"static_prefix"`
}

// VeoConfig holds settings for the video generation model.
type VeoConfig struct {
	Key         string `yaml:"key"` // API key, falls back to GEMINI_API_KEY
	Model       string `yaml:"model"`
	AspectRatio string `yaml:"aspect_ratio"`
	Resolution  string `yaml:"resolution"`
}

// VideosConfig holds settings for the video result store.
type VideosConfig struct {
	Dir string `yaml:"dir"`
}

// WatchConfig holds settings for the websocket status stream.
type WatchConfig struct {
	Interval Duration `yaml:"interval"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Prompts: LogSettings{
				Path: "./logs/prompts.log",
			},
		},
		DB: DBConfig{
			Path:      "./data/adforge.db",
			Retention: Duration(30 * Day),
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(30 * time.Second),
		},
		Catalog: CatalogConfig{
			BaseURL: "http://productcatalogservice:3550",
		},
		Frontend: FrontendConfig{
			BaseURL:      "http://frontend:80",
			StaticPrefix: "/static/",
		},
		Veo: VeoConfig{
			Model:       "veo-3.0-fast-generate-001",
			AspectRatio: "16:9",
			Resolution:  "720p",
		},
		Videos: VideosConfig{
			Dir: "./videos",
		},
		Watch: WatchConfig{
			Interval: Duration(5 * time.Second),
		},
	}
}

// Load reads the configuration from the given path, merged over defaults.
// A missing file is not an error; defaults plus env fallbacks are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Env fallbacks for secrets and addresses. Never saved back to disk.
	if cfg.Veo.Key == "" {
		cfg.Veo.Key = os.Getenv("GEMINI_API_KEY")
	}
	if v := os.Getenv("VEO_MODEL_ID"); v != "" {
		cfg.Veo.Model = v
	}
	if v := os.Getenv("PRODUCT_CATALOG_SERVICE_ADDR"); v != "" {
		cfg.Catalog.BaseURL = ensureScheme(v)
	}
	if v := os.Getenv("FRONTEND_SERVICE_ADDR"); v != "" {
		cfg.Frontend.BaseURL = ensureScheme(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Address = ":" + v
	}

	return cfg, nil
}

// Save writes the configuration to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Save(path, DefaultConfig())
}

// ensureScheme prefixes bare host:port values from env with http://.
func ensureScheme(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}
