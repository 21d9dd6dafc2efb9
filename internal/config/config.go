package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 8000
	defaultEnv        = "production"
	defaultDBPort     = 3306
	defaultDBCharset  = "utf8mb4"
	defaultRedisPort  = 6379

	defaultAIProvider        = ProviderGroq
	defaultAIModel           = "deepseek-r1-distill-llama-70b"
	defaultAITimeoutSeconds  = 60
	defaultAICacheTTLSeconds = 3600
	defaultRateLimitMax      = 20
	defaultRateLimitWindow   = 60
)

// Supported AI provider types.
const (
	ProviderGroq             = "groq"
	ProviderOpenAI           = "openai"
	ProviderOpenAICompatible = "openai-compatible"
	ProviderAnthropic        = "anthropic"
)

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	AllowedOrigins []string              `yaml:"allowed_origins"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	AI             AIConfig              `yaml:"ai"`
	RateLimit      RateLimitConfig       `yaml:"rate_limit"`
}

type DatabaseRuntimeConfig struct {
	Driver   string            `yaml:"driver"` // mysql | postgres | sqlite
	URL      string            `yaml:"url"`
	DSN      string            `yaml:"dsn"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Name     string            `yaml:"name"`
	Charset  string            `yaml:"charset"`
	Params   map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	Enable   bool   `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

// AIConfig describes the single chat-completion provider used by the study endpoints.
type AIConfig struct {
	Provider        string `yaml:"provider"`
	APIKey          string `yaml:"api_key"`
	Endpoint        string `yaml:"endpoint"`
	Model           string `yaml:"model"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	RepairJSON      bool   `yaml:"repair_json"`
	CacheTTLSeconds *int   `yaml:"cache_ttl_seconds"`
}

type RateLimitConfig struct {
	Max           int `yaml:"max"`
	WindowSeconds int `yaml:"window_seconds"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

// Load reads the YAML config at configPath (optional), then .env and process environment overrides.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	applyEnv(&cfg, os.LookupEnv)

	cfg.normalize()
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	if cfg.Database.Port < 0 || cfg.Database.Port > 65535 {
		return nil, fmt.Errorf("invalid database.port %d, expected 1-65535", cfg.Database.Port)
	}
	if cfg.Redis.DB < 0 {
		return nil, fmt.Errorf("invalid redis.db %d, expected >= 0", cfg.Redis.DB)
	}
	if !isKnownProvider(cfg.AI.Provider) {
		return nil, fmt.Errorf("unsupported ai.provider %q", cfg.AI.Provider)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	ttl := defaultAICacheTTLSeconds
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		AI: AIConfig{
			Provider:        defaultAIProvider,
			TimeoutSeconds:  defaultAITimeoutSeconds,
			CacheTTLSeconds: &ttl,
		},
		RateLimit: RateLimitConfig{
			Max:           defaultRateLimitMax,
			WindowSeconds: defaultRateLimitWindow,
		},
	}
}

func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	if v := get("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Port = port
		}
	}
	if v := get("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := get("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}
	if v := get("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := get("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
		cfg.Redis.Enable = true
	}
	if v := get("AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := get("AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := get("AI_ENDPOINT"); v != "" {
		cfg.AI.Endpoint = v
	}

	// Provider specific keys only apply when the provider matches.
	switch normalizeProviderType(cfg.AI.Provider) {
	case ProviderGroq:
		if v := get("GROQ_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case ProviderOpenAI, ProviderOpenAICompatible:
		if v := get("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case ProviderAnthropic:
		if v := get("ANTHROPIC_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env == "development" }

// LogDir returns the resolved log directory.
func (c *AppConfig) LogDir() string { return ResolveRuntimePath(c.Paths.Logs, "logs") }

// Timeout returns the outbound AI call timeout.
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long successful AI results stay cached. Zero disables caching.
func (c AIConfig) CacheTTL() time.Duration {
	if c.CacheTTLSeconds == nil {
		return defaultAICacheTTLSeconds * time.Second
	}
	return time.Duration(*c.CacheTTLSeconds) * time.Second
}

// Configured reports whether the provider has credentials.
func (c AIConfig) Configured() bool { return strings.TrimSpace(c.APIKey) != "" }

// Window returns the rate limit window.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}
