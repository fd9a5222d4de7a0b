package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything curator reads from config.toml.
type Config struct {
	APIURL        string
	Token         string
	PageSize      int
	MaxPageSize   int
	ReloadEvery   time.Duration
	SearchFields  []string
	SlugCacheSize int
	SlugCacheTTL  time.Duration
	LogFile       string
}

const (
	defaultConfigPath    = "~/.config/curator/config.toml"
	defaultLogFile       = "~/.local/share/curator/curator.log"
	defaultAPIURL        = "http://127.0.0.1:8080"
	defaultPageSize      = 20
	defaultMaxPageSize   = 100
	defaultReloadSeconds = 30
	defaultSlugCacheSize = 512
	defaultSlugCacheTTL  = 10 * time.Minute

	// TokenEnv overrides the token from the file when set.
	TokenEnv = "CURATOR_TOKEN"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:        defaultAPIURL,
		PageSize:      defaultPageSize,
		MaxPageSize:   defaultMaxPageSize,
		ReloadEvery:   defaultReloadSeconds * time.Second,
		SlugCacheSize: defaultSlugCacheSize,
		SlugCacheTTL:  defaultSlugCacheTTL,
		LogFile:       mustExpand(defaultLogFile),
	}
}

type rawConfig struct {
	APIURL              string   `toml:"api_url"`
	Token               string   `toml:"token"`
	PageSize            *int     `toml:"page_size"`
	MaxPageSize         *int     `toml:"max_page_size"`
	ReloadSeconds       *int     `toml:"reload_seconds"`
	SearchFields        []string `toml:"search_fields"`
	SlugCacheSize       *int     `toml:"slug_cache_size"`
	SlugCacheTTLSeconds *int     `toml:"slug_cache_ttl_seconds"`
	LogFile             string   `toml:"log_file"`
}

// Load locates and parses the curator config, falling back to defaults when
// missing. The token environment variable wins over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	cfg.Token = strings.TrimSpace(raw.Token)
	if raw.MaxPageSize != nil && *raw.MaxPageSize > 0 {
		cfg.MaxPageSize = *raw.MaxPageSize
	}
	if raw.PageSize != nil && *raw.PageSize > 0 {
		cfg.PageSize = *raw.PageSize
	}
	cfg.PageSize = min(cfg.PageSize, cfg.MaxPageSize)
	if raw.ReloadSeconds != nil && *raw.ReloadSeconds >= 0 {
		cfg.ReloadEvery = time.Duration(*raw.ReloadSeconds) * time.Second
	}
	for _, f := range raw.SearchFields {
		if f = strings.TrimSpace(f); f != "" {
			cfg.SearchFields = append(cfg.SearchFields, f)
		}
	}
	if raw.SlugCacheSize != nil && *raw.SlugCacheSize > 0 {
		cfg.SlugCacheSize = *raw.SlugCacheSize
	}
	if raw.SlugCacheTTLSeconds != nil && *raw.SlugCacheTTLSeconds >= 0 {
		cfg.SlugCacheTTL = time.Duration(*raw.SlugCacheTTLSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		c.Token = token
	}
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
