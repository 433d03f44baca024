package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all service configuration.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Store    StoreConfig
	Services ServicesConfig
	Chat     ChatConfig
	CORS     CORSConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	services, err := loadServicesConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Auth:     auth,
		Store:    StoreConfig{DBPath: getEnvOrDefault("DB_PATH", "./data/unixora.db")},
		Services: services,
		Chat:     chat,
		CORS:     loadCORSConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":3000" or "127.0.0.1:3000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AuthConfig describes token issuance and password hashing.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// UsingFallbackSecret reports whether the signing secret was left at its
// development default.
func (c AuthConfig) UsingFallbackSecret() bool {
	return c.JWTSecret == fallbackJWTSecret
}

const fallbackJWTSecret = "fallback_secret_key"

func loadAuthConfig() (AuthConfig, error) {
	ttl := 7 * 24 * time.Hour
	if override, err := parseOptionalIntEnv("TOKEN_TTL_HOURS"); err != nil {
		return AuthConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AuthConfig{}, fmt.Errorf("TOKEN_TTL_HOURS must be >= 1")
		}
		ttl = time.Duration(*override) * time.Hour
	}

	cost := 10
	if override, err := parseOptionalIntEnv("BCRYPT_COST"); err != nil {
		return AuthConfig{}, err
	} else if override != nil {
		cost = *override
	}

	return AuthConfig{
		JWTSecret:  getEnvOrDefault("JWT_SECRET", fallbackJWTSecret),
		TokenTTL:   ttl,
		BcryptCost: cost,
	}, nil
}

// StoreConfig describes the account database.
type StoreConfig struct {
	DBPath string
}

// ServicesConfig describes the external RAG backends.
type ServicesConfig struct {
	QueryBaseURL string
	MatchBaseURL string
	Timeout      time.Duration
	TopK         int
}

func loadServicesConfig() (ServicesConfig, error) {
	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("SERVICE_TIMEOUT_SECONDS"); err != nil {
		return ServicesConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	topK := 5
	if override, err := parseOptionalIntEnv("QUERY_TOP_K"); err != nil {
		return ServicesConfig{}, err
	} else if override != nil {
		topK = *override
	}

	ragBase := getEnvOrDefault("RAG_API_URL", "http://localhost:8000")
	return ServicesConfig{
		QueryBaseURL: getEnvOrDefault("QUERY_SERVICE_URL", ragBase),
		MatchBaseURL: getEnvOrDefault("MATCH_SERVICE_URL", ragBase),
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
		TopK:         topK,
	}, nil
}

// ChatConfig describes conversation retention.
type ChatConfig struct {
	HistoryLimit int
}

func loadChatConfig() (ChatConfig, error) {
	limit := 10
	if override, err := parseOptionalIntEnv("CHAT_HISTORY_LIMIT"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ChatConfig{}, fmt.Errorf("CHAT_HISTORY_LIMIT must be >= 1")
		}
		limit = *override
	}
	return ChatConfig{HistoryLimit: limit}, nil
}

// CORSConfig describes allowed frontend origins.
type CORSConfig struct {
	AllowedOrigins []string
}

func loadCORSConfig() CORSConfig {
	raw := getEnvOrDefault("ALLOWED_ORIGINS", "*")
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return CORSConfig{AllowedOrigins: origins}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
