package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvAsIntOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	t.Setenv("TEST_DUR_1", "1500ms")
	t.Setenv("TEST_DUR_2", "soon")

	assert.Equal(t, 1500*time.Millisecond, getEnvAsDurationOrDefault("TEST_DUR_1", time.Second))
	assert.Equal(t, time.Second, getEnvAsDurationOrDefault("TEST_DUR_2", time.Second))
	assert.Equal(t, time.Second, getEnvAsDurationOrDefault("TEST_DUR_UNSET", time.Second))
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "CHAT_PROVIDER", "GROQ_MODEL", "REDIS_URL", "VERCEL_URL", "FRONTEND_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "groq", cfg.ChatProvider)
	assert.Equal(t, "llama3-8b-8192", cfg.GroqModel)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.AllowedOrigins())
}

func TestAllowedOrigins_NormalizesVercelURL(t *testing.T) {
	tests := []struct {
		name   string
		vercel string
	}{
		{"bare host", "portfolio.vercel.app"},
		{"https prefix", "https://portfolio.vercel.app/"},
		{"http prefix", "http://portfolio.vercel.app"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{VercelURL: tc.vercel}
			origins := cfg.AllowedOrigins()
			assert.Equal(t, "https://portfolio.vercel.app", origins[len(origins)-1])
		})
	}
}

func TestLoadClient_APIURLPrecedence(t *testing.T) {
	t.Setenv("PORTFOLIO_API_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "")
	assert.Equal(t, DefaultAPIURL, LoadClient().APIURL)

	t.Setenv("NEXT_PUBLIC_API_URL", "https://api.example.com")
	assert.Equal(t, "https://api.example.com", LoadClient().APIURL)

	t.Setenv("PORTFOLIO_API_URL", "http://127.0.0.1:9000")
	cfg := LoadClient()
	assert.Equal(t, "http://127.0.0.1:9000", cfg.APIURL)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.Equal(t, 150, cfg.ScrollThreshold)
}
