package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the local development address of the chat backend.
const DefaultAPIURL = "http://localhost:8000"

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Chat provider: "groq" or "gemini"
	ChatProvider string

	// Groq (OpenAI-compatible)
	GroqAPIKey string
	GroqAPIURL string
	GroqModel  string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	UpstreamConcurrency int
	UpstreamTimeout     time.Duration
	VisionMaxUploadMB   int

	// Redis (optional, rate limiting)
	RedisURL string

	// Rate limits per client IP and minute
	HealthRatePerMin int
	ChatRatePerMin   int

	// CORS
	FrontendURL string
	VercelURL   string
}

// ClientConfig configures the terminal chat client.
type ClientConfig struct {
	APIURL          string
	Timeout         time.Duration
	ScrollThreshold int
	LogLevel        string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "8000"),
		Env:                 getEnvOrDefault("ENV", "development"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		ChatProvider:        strings.ToLower(getEnvOrDefault("CHAT_PROVIDER", "groq")),
		GroqAPIKey:          getEnvOrDefault("GROQ_API_KEY", ""),
		GroqAPIURL:          getEnvOrDefault("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
		GroqModel:           getEnvOrDefault("GROQ_MODEL", "llama3-8b-8192"),
		GeminiAPIKey:        getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:         getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		UpstreamConcurrency: getEnvAsIntOrDefault("UPSTREAM_CONCURRENCY", 5),
		UpstreamTimeout:     getEnvAsDurationOrDefault("UPSTREAM_TIMEOUT", 30*time.Second),
		VisionMaxUploadMB:   getEnvAsIntOrDefault("VISION_MAX_UPLOAD_MB", 10),
		RedisURL:            getEnvOrDefault("REDIS_URL", ""),
		HealthRatePerMin:    getEnvAsIntOrDefault("HEALTH_RATE_PER_MINUTE", 10),
		ChatRatePerMin:      getEnvAsIntOrDefault("CHAT_RATE_PER_MINUTE", 20),
		FrontendURL:         getEnvOrDefault("FRONTEND_URL", ""),
		VercelURL:           getEnvOrDefault("VERCEL_URL", ""),
	}

	return cfg
}

func LoadClient() *ClientConfig {
	godotenv.Load()

	apiURL := getEnvOrDefault("PORTFOLIO_API_URL", "")
	if apiURL == "" {
		apiURL = getEnvOrDefault("NEXT_PUBLIC_API_URL", DefaultAPIURL)
	}

	return &ClientConfig{
		APIURL:          apiURL,
		Timeout:         getEnvAsDurationOrDefault("CHAT_TIMEOUT", 0),
		ScrollThreshold: getEnvAsIntOrDefault("CHAT_SCROLL_THRESHOLD", 150),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// AllowedOrigins lists the browser origins permitted by CORS.
func (c *Config) AllowedOrigins() []string {
	origins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if c.FrontendURL != "" {
		origins = append(origins, strings.TrimRight(c.FrontendURL, "/"))
	}
	if c.VercelURL != "" {
		host := strings.TrimPrefix(c.VercelURL, "https://")
		host = strings.TrimPrefix(host, "http://")
		host = strings.TrimRight(host, "/")
		origins = append(origins, "https://"+host)
	}
	return origins
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
