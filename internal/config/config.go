package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gosuda/taskscout/internal/domain"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	LogRoot string
	Server  ServerConfig
	Cache   CacheConfig
	Context ContextConfig
	Sync    SyncConfig
	Slack   SlackConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// CacheConfig holds session-cache access settings. Mode "cli" shells out
// to the cache's query tool; mode "redis" talks to it directly.
type CacheConfig struct {
	Mode          string
	QueryCommand  string
	QueryArgs     []string
	RedisAddr     string
	RedisPassword string //nolint:gosec // G117: cache connection config
	RedisDB       int
}

// ContextConfig holds remote content-service settings.
type ContextConfig struct {
	BaseURL         string
	APIKey          string //nolint:gosec // G117: explicit api key parameter
	CredentialsFile string
}

// SyncConfig holds session-sync run settings.
type SyncConfig struct {
	OutDir     string
	EngineerID string
	Host       string
	Source     string
	Limit      int
	Workers    int
	RawOutput  bool
	DryRun     bool
	Interval   time.Duration // 0 disables periodic sync
}

// SlackConfig holds optional sync-notification settings.
type SlackConfig struct {
	BotToken string
	Channel  string
}

// Load reads configuration from environment variables. Defaults are safe
// for local development only.
func Load() (*Config, error) {
	redisDB, err := getEnvInt("TASKSCOUT_CACHE_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	syncLimit, err := getEnvInt("TASKSCOUT_SYNC_LIMIT", 120)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	syncWorkers, err := getEnvInt("TASKSCOUT_SYNC_WORKERS", 6)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rawOutput, err := getEnvBool("TASKSCOUT_SYNC_RAW_OUTPUT", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dryRun, err := getEnvBool("TASKSCOUT_SYNC_DRY_RUN", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	syncInterval, err := getEnvDuration("TASKSCOUT_SYNC_INTERVAL", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("TASKSCOUT_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("TASKSCOUT_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	home, _ := os.UserHomeDir()

	cfg := &Config{
		LogRoot: getEnv("TASKSCOUT_LOG_ROOT", filepath.Join(home, "team-logs")),
		Server: ServerConfig{
			Addr:         getEnv("TASKSCOUT_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  getEnvList("TASKSCOUT_CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Cache: CacheConfig{
			Mode:          getEnv("TASKSCOUT_CACHE_MODE", "cli"),
			QueryCommand:  getEnv("TASKSCOUT_CACHE_QUERY_CMD", "kvctl"),
			QueryArgs:     getEnvList("TASKSCOUT_CACHE_QUERY_ARGS", nil),
			RedisAddr:     getEnv("TASKSCOUT_CACHE_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("TASKSCOUT_CACHE_REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Context: ContextConfig{
			BaseURL:         getEnv("TASKSCOUT_CONTEXT_BASE_URL", "https://api.contextd.dev/v1"),
			CredentialsFile: getEnv("TASKSCOUT_CREDENTIALS_FILE", filepath.Join(home, ".config", "taskscout", "credentials")),
		},
		Sync: SyncConfig{
			OutDir:     getEnv("TASKSCOUT_SYNC_OUT_DIR", ""),
			EngineerID: getEnv("TASKSCOUT_SYNC_ENGINEER", ""),
			Host:       getEnv("TASKSCOUT_SYNC_HOST", ""),
			Source:     getEnv("TASKSCOUT_SYNC_SOURCE", "all"),
			Limit:      syncLimit,
			Workers:    syncWorkers,
			RawOutput:  rawOutput,
			DryRun:     dryRun,
			Interval:   syncInterval,
		},
		Slack: SlackConfig{
			BotToken: getEnv("TASKSCOUT_SLACK_BOT_TOKEN", ""),
			Channel:  getEnv("TASKSCOUT_SLACK_CHANNEL", ""),
		},
	}

	if cfg.Sync.OutDir == "" {
		// Dumps land inside the scanned tree so the query side picks
		// them up on the next scan.
		cfg.Sync.OutDir = filepath.Join(cfg.LogRoot, "_synced", "log")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.LogRoot == "" {
		return fmt.Errorf("TASKSCOUT_LOG_ROOT must not be empty")
	}
	if c.Cache.Mode != "cli" && c.Cache.Mode != "redis" {
		return fmt.Errorf("TASKSCOUT_CACHE_MODE must be cli or redis, got %q", c.Cache.Mode)
	}
	if c.Sync.Limit < 1 {
		return fmt.Errorf("TASKSCOUT_SYNC_LIMIT must be >= 1, got %d", c.Sync.Limit)
	}
	if c.Sync.Workers < 1 {
		return fmt.Errorf("TASKSCOUT_SYNC_WORKERS must be >= 1, got %d", c.Sync.Workers)
	}
	if c.Sync.Interval < 0 {
		return fmt.Errorf("TASKSCOUT_SYNC_INTERVAL must not be negative, got %s", c.Sync.Interval)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("TASKSCOUT_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("TASKSCOUT_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	return nil
}

var apiKeyLineRe = regexp.MustCompile(`^\s*api_key\s*=\s*"(.*)"\s*$`)

// ResolveAPIKey returns the content-service credential, consulting the
// TASKSCOUT_CONTEXT_API_KEY environment variable, the explicit APIKey
// parameter, and the credentials file, in that precedence order. Absence
// of all three is a configuration error.
func (c ContextConfig) ResolveAPIKey() (string, error) {
	if v := os.Getenv("TASKSCOUT_CONTEXT_API_KEY"); v != "" {
		return v, nil
	}
	if c.APIKey != "" {
		return c.APIKey, nil
	}

	data, err := os.ReadFile(c.CredentialsFile)
	if err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if m := apiKeyLineRe.FindStringSubmatch(line); m != nil && m[1] != "" {
				return m[1], nil
			}
		}
	}

	return "", fmt.Errorf("config.ContextConfig.ResolveAPIKey: %w", domain.ErrMissingAPIKey)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
