package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredential is returned by Validate when the selected generation
// provider has no API key configured.
var ErrMissingCredential = errors.New("missing generation credential")

type Config struct {
	Server    ServerConfig
	App       AppConfig
	LLM       LLMConfig
	Limits    LimitsConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string

	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

type AppConfig struct {
	Name     string
	Version  string
	LogLevel string
}

type LLMConfig struct {
	Provider      string // "openai", "anthropic" or "ollama"
	Model         string
	OpenAIKey     string
	OpenAIBaseURL string
	AnthropicKey  string
	OllamaURL     string
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
}

type LimitsConfig struct {
	MaxDocuments      int
	MaxDocumentLength int
	MaxQuestionLength int
	ContextMaxChars   int
	MaxUploadBytes    int64
}

type RedisConfig struct {
	Addr     string // empty disables Redis
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string // empty disables bearer auth
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxTokens, err := getEnvInt("LLM_MAX_TOKENS", 1500)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
	}

	temperature, err := getEnvFloat("LLM_TEMPERATURE", 0.1)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	timeout, err := getEnvDuration("LLM_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}

	maxDocs, err := getEnvInt("MAX_DOCUMENTS", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_DOCUMENTS: %w", err)
	}

	maxDocLen, err := getEnvInt("MAX_DOCUMENT_LENGTH", 50000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_DOCUMENT_LENGTH: %w", err)
	}

	maxQuestionLen, err := getEnvInt("MAX_QUESTION_LENGTH", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_QUESTION_LENGTH: %w", err)
	}

	contextMax, err := getEnvInt("CONTEXT_MAX_CHARS", 15000)
	if err != nil {
		return nil, fmt.Errorf("invalid CONTEXT_MAX_CHARS: %w", err)
	}

	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	trustProxy, err := getEnvBool("TRUST_PROXY_HEADERS", false)
	if err != nil {
		return nil, fmt.Errorf("invalid TRUST_PROXY_HEADERS: %w", err)
	}

	rps, err := getEnvFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := getEnvInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:              getEnv("SERVER_HOST", "0.0.0.0"),
			Port:              port,
			AllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			TrustProxyHeaders: trustProxy,
		},
		App: AppConfig{
			Name:     getEnv("APP_NAME", "Document Q&A API"),
			Version:  getEnv("APP_VERSION", "1.0.0"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		LLM: LLMConfig{
			Provider:      strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			Model:         getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey:  getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:     getEnv("OLLAMA_URL", "http://localhost:11434"),
			MaxTokens:     maxTokens,
			Temperature:   temperature,
			Timeout:       timeout,
		},
		Limits: LimitsConfig{
			MaxDocuments:      maxDocs,
			MaxDocumentLength: maxDocLen,
			MaxQuestionLength: maxQuestionLen,
			ContextMaxChars:   contextMax,
			MaxUploadBytes:    int64(maxUpload),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks that the selected generation provider can be reached with
// the configured credentials. A missing key wraps ErrMissingCredential so the
// caller can tell it apart from malformed settings.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for provider openai", ErrMissingCredential)
		}
	case "anthropic":
		if c.LLM.AnthropicKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY is required for provider anthropic", ErrMissingCredential)
		}
	case "ollama":
		if c.LLM.OllamaURL == "" {
			return fmt.Errorf("%w: OLLAMA_URL is required for provider ollama", ErrMissingCredential)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}

	var invalid []string
	if c.Limits.MaxDocuments <= 0 {
		invalid = append(invalid, "MAX_DOCUMENTS")
	}
	if c.Limits.MaxDocumentLength <= 0 {
		invalid = append(invalid, "MAX_DOCUMENT_LENGTH")
	}
	if c.Limits.MaxQuestionLength <= 0 {
		invalid = append(invalid, "MAX_QUESTION_LENGTH")
	}
	if c.Limits.ContextMaxChars <= 0 {
		invalid = append(invalid, "CONTEXT_MAX_CHARS")
	}
	if c.LLM.Timeout <= 0 {
		invalid = append(invalid, "LLM_TIMEOUT")
	}
	if len(invalid) > 0 {
		return fmt.Errorf("non-positive values for: %s", strings.Join(invalid, ", "))
	}

	// The OpenAI and Ollama request encoders omit a zero temperature, which
	// leaves the provider default of 1.0 in effect.
	maxTemp := 2.0
	if c.LLM.Provider == "anthropic" {
		maxTemp = 1.0
	}
	if c.LLM.Temperature <= 0 || c.LLM.Temperature > maxTemp {
		return fmt.Errorf("LLM_TEMPERATURE must be in (0, %g] for provider %s, got %g", maxTemp, c.LLM.Provider, c.LLM.Temperature)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

// getEnvDuration accepts Go duration strings ("45s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
