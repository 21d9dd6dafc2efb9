package config

import "strings"

func (c *AppConfig) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.AllowedOrigins = normalizeOrigins(c.AllowedOrigins)
	c.Paths.Logs = strings.TrimSpace(c.Paths.Logs)
	c.Database = normalizeDatabaseConfig(c.Database)
	c.Redis = normalizeRedisConfig(c.Redis)
	c.AI = normalizeAIConfig(c.AI)

	if c.RateLimit.Max <= 0 {
		c.RateLimit.Max = defaultRateLimitMax
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = defaultRateLimitWindow
	}
}

func normalizeDatabaseConfig(cfg DatabaseRuntimeConfig) DatabaseRuntimeConfig {
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Charset = strings.TrimSpace(cfg.Charset)

	switch cfg.Driver {
	case "postgresql", "pg":
		cfg.Driver = DriverPostgres
	case "sqlite3":
		cfg.Driver = DriverSQLite
	}
	if cfg.Driver == "" {
		cfg.Driver = inferDriver(cfg.URL)
	}
	if cfg.Charset == "" && cfg.Driver == DriverMySQL {
		cfg.Charset = defaultDBCharset
	}
	if cfg.Params != nil {
		cfg.Params = copyStringMap(cfg.Params)
	}
	return cfg
}

func normalizeRedisConfig(cfg RedisRuntimeConfig) RedisRuntimeConfig {
	cfg.URL = normalizeRedisRawURL(cfg.URL)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)

	if cfg.URL != "" || cfg.Host != "" {
		cfg.Enable = true
	}
	if cfg.Port == 0 {
		cfg.Port = defaultRedisPort
	}
	return cfg
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeAIConfig(cfg AIConfig) AIConfig {
	cfg.Provider = normalizeProviderType(cfg.Provider)
	if cfg.Provider == "" {
		cfg.Provider = defaultAIProvider
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaultModelFor(cfg.Provider)
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultAITimeoutSeconds
	}
	if cfg.CacheTTLSeconds != nil && *cfg.CacheTTLSeconds < 0 {
		zero := 0
		cfg.CacheTTLSeconds = &zero
	}
	return cfg
}

func defaultModelFor(provider string) string {
	switch provider {
	case ProviderOpenAI, ProviderOpenAICompatible:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-haiku-4-5-20251001"
	}
	return defaultAIModel
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	if t == "openaicompatible" {
		t = ProviderOpenAICompatible
	}
	return t
}

func isKnownProvider(t string) bool {
	switch t {
	case ProviderGroq, ProviderOpenAI, ProviderOpenAICompatible, ProviderAnthropic:
		return true
	}
	return false
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	switch trimmed {
	case "":
		return defaultEnv
	case "dev":
		return "development"
	case "prod":
		return "production"
	}
	return trimmed
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
