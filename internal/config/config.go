package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	OpenAI  OpenAIConfig
	Prompts PromptConfig
	Geo     GeoConfig
	Redis   RedisConfig
}

type ServerConfig struct {
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestsPerMinute int
	Burst             int
}

type AuthConfig struct {
	Token string
}

type OpenAIConfig struct {
	APIKeys          []string
	NumWorkers       int
	Engine           string
	MaxContextTokens int
	CallTimeout      time.Duration
	RetryFor         time.Duration
}

type PromptConfig struct {
	AddressFile             string
	DetailedIntentFile      string
	AddressMaxTokens        int
	DetailedIntentMaxTokens int
}

type GeoConfig struct {
	Enabled bool
	APIKey  string
	BaseURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from the environment once at startup. Anything
// the pipeline cannot run without is validated here so misconfiguration
// surfaces before the server accepts traffic, never at request time.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "8080"),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Auth: AuthConfig{
			Token: getEnv("AUTH_TOKEN", ""),
		},
		OpenAI: OpenAIConfig{
			APIKeys:          getEnvAsList("OPENAI_API_KEYS"),
			NumWorkers:       getEnvAsInt("NUM_WORKERS", 0),
			Engine:           getEnv("ENGINE", "gpt-3.5-turbo-instruct"),
			MaxContextTokens: getEnvAsInt("MAX_CONTEXT_TOKENS", 0),
			CallTimeout:      getEnvAsDuration("OPENAI_CALL_TIMEOUT", 60*time.Second),
			RetryFor:         getEnvAsDuration("OPENAI_RETRY_FOR", 2*time.Minute),
		},
		Prompts: PromptConfig{
			AddressFile:             getEnv("ADDRESS_PROMPT_FILE", "prompts/address.txt"),
			DetailedIntentFile:      getEnv("DETAILED_INTENT_PROMPT_FILE", "prompts/detailed_intent.txt"),
			AddressMaxTokens:        getEnvAsInt("ADDRESS_MAX_TOKENS", 300),
			DetailedIntentMaxTokens: getEnvAsInt("DETAILED_INTENT_MAX_TOKENS", 300),
		},
		Geo: GeoConfig{
			Enabled: getEnvAsBool("GEO_LOCATION", false),
			APIKey:  getEnv("GEOCODE_API_KEY", ""),
			BaseURL: getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	if cfg.Auth.Token == "" {
		return nil, fmt.Errorf("AUTH_TOKEN is required")
	}
	if len(cfg.OpenAI.APIKeys) == 0 {
		return nil, fmt.Errorf("OPENAI_API_KEYS is required")
	}

	// The credential pool is sized to the worker count; extra keys are
	// left for sibling processes.
	if n := cfg.OpenAI.NumWorkers; n > 0 && len(cfg.OpenAI.APIKeys) > n {
		cfg.OpenAI.APIKeys = cfg.OpenAI.APIKeys[:n]
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
