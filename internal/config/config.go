// Package config reads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvModel    = "ESSAY_FEEDBACK_MODEL"
	EnvEndpoint = "ESSAY_FEEDBACK_ENDPOINT"
	EnvAPIKey   = "ESSAY_FEEDBACK_API_KEY"
	EnvPrompts  = "ESSAY_FEEDBACK_PROMPTS"
	EnvRetries  = "ESSAY_FEEDBACK_RETRIES"

	// EnvOllamaHost is honored when no endpoint is set, as the Ollama CLI does.
	EnvOllamaHost = "OLLAMA_HOST"
	// EnvOpenAIKey is honored when no API key is set.
	EnvOpenAIKey = "OPENAI_API_KEY"
)

// Config holds settings taken from the environment. Empty fields mean
// "not configured"; callers apply their own defaults.
type Config struct {
	Model       string
	Endpoint    string
	APIKey      string
	PromptsFile string
	Retries     int
}

// Load reads .env files (if present) and then the environment.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{
		Model:       os.Getenv(EnvModel),
		Endpoint:    os.Getenv(EnvEndpoint),
		APIKey:      firstNonEmpty(os.Getenv(EnvAPIKey), os.Getenv(EnvOpenAIKey)),
		PromptsFile: os.Getenv(EnvPrompts),
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = ollamaEndpoint(os.Getenv(EnvOllamaHost))
	}

	if v := os.Getenv(EnvRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Retries = n
		}
	}

	return cfg, nil
}

// ollamaEndpoint turns an OLLAMA_HOST value ("host:port" or a URL) into
// the OpenAI-compatible base URL.
func ollamaEndpoint(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	host = strings.TrimSuffix(host, "/")
	if strings.HasSuffix(host, "/v1") {
		return host
	}
	return host + "/v1"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
