package app

import (
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/studyaid/core/internal/config"
)

// newCORSConfig allows every origin unless allowed_origins lists host
// patterns ("app.example.com", "*.example.com", "localhost:*").
func newCORSConfig(cfg *config.AppConfig) cors.Config {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Idempotence"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "Retry-After"},
	}

	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		return corsConfig
	}

	patterns := cfg.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowOriginFunc = func(origin string) bool {
		host := extractOriginHost(origin)
		for _, pattern := range patterns {
			if pattern == "*" || matchOriginPattern(pattern, host) {
				return true
			}
		}
		return false
	}
	return corsConfig
}

// extractOriginHost returns the "host[:port]" portion of an origin URL.
func extractOriginHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

func matchOriginPattern(pattern, host string) bool {
	if pattern == host {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(host, pattern[1:])
	}
	if strings.HasSuffix(pattern, ":*") {
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
