package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the service reads. Values come from an optional
// YAML file (CONFIG_FILE) and are then overridden by environment variables.
type Config struct {
	Port   string `yaml:"port"`
	AppEnv string `yaml:"app_env"`

	DBURL  string `yaml:"db_url"`
	DBPath string `yaml:"db_path"`

	LLMProvider     string `yaml:"llm_provider"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	OpenAIModel     string `yaml:"openai_model"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GeminiModel     string `yaml:"gemini_model"`
	LLMTimeoutSecs  int    `yaml:"llm_timeout_seconds"`
	LLMMaxAttempts  int    `yaml:"llm_max_attempts"`
	LLMRetryDelayMS int    `yaml:"llm_retry_delay_ms"`

	CacheSize       int    `yaml:"cache_size"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
	RedisURL        string `yaml:"redis_url"`

	Auth0Domain   string   `yaml:"auth0_domain"`
	Auth0Audience string   `yaml:"auth0_audience"`
	JWTSecretKey  string   `yaml:"jwt_secret_key"`
	CORSOrigins   []string `yaml:"cors_origins"`
	MaxUploadMB   int      `yaml:"max_upload_mb"`
}

func Defaults() Config {
	return Config{
		Port:            "8080",
		AppEnv:          "development",
		DBPath:          "mindmap.db",
		LLMProvider:     "openai",
		OpenAIModel:     "gpt-3.5-turbo",
		GeminiModel:     "gemini-2.0-flash",
		LLMTimeoutSecs:  60,
		LLMMaxAttempts:  3,
		LLMRetryDelayMS: 1000,
		CacheSize:       256,
		CacheTTLMinutes: 60,
		CORSOrigins:     []string{"http://localhost:3000"},
		MaxUploadMB:     10,
	}
}

// Load builds the configuration from defaults, CONFIG_FILE and the environment.
func Load() (Config, error) {
	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str(&cfg.Port, "PORT")
	str(&cfg.AppEnv, "APP_ENV")
	str(&cfg.DBURL, "DB_URL")
	str(&cfg.DBPath, "DB_PATH")
	str(&cfg.LLMProvider, "LLM_PROVIDER")
	str(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	str(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	str(&cfg.OpenAIModel, "OPENAI_MODEL")
	str(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	str(&cfg.GeminiModel, "GEMINI_MODEL")
	num(&cfg.LLMTimeoutSecs, "LLM_TIMEOUT_SECONDS")
	num(&cfg.LLMMaxAttempts, "LLM_MAX_ATTEMPTS")
	num(&cfg.LLMRetryDelayMS, "LLM_RETRY_DELAY_MS")
	num(&cfg.CacheSize, "CACHE_SIZE")
	num(&cfg.CacheTTLMinutes, "CACHE_TTL_MINUTES")
	str(&cfg.RedisURL, "REDIS_URL")
	str(&cfg.Auth0Domain, "AUTH0_DOMAIN")
	str(&cfg.Auth0Audience, "AUTH0_AUDIENCE")
	str(&cfg.JWTSecretKey, "JWT_SECRET_KEY")
	num(&cfg.MaxUploadMB, "MAX_UPLOAD_MB")
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
}

func str(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func num(dst *int, name string) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return
	}
	if i, err := strconv.Atoi(v); err == nil {
		*dst = i
	}
}

func (c Config) validate() error {
	switch c.LLMProvider {
	case "openai", "gemini", "none":
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai, gemini or none, got %q", c.LLMProvider)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSecs) * time.Second
}

func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.LLMRetryDelayMS) * time.Millisecond
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
