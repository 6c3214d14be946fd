package cmd

import (
	"github.com/giantswarm/essay-feedback/internal/config"
	"github.com/giantswarm/essay-feedback/internal/llm"
)

// newLLMClientFromFlags creates an LLM client from common CLI flags.
// Flags win over the environment; anything left unset falls back to
// the llm package defaults (local Ollama).
func newLLMClientFromFlags(env *config.Config, endpoint, apiKey string, retries int) llm.Client {
	var opts []llm.Option
	if endpoint == "" {
		endpoint = env.Endpoint
	}
	if endpoint != "" {
		opts = append(opts, llm.WithBaseURL(endpoint))
	}
	if apiKey == "" {
		apiKey = env.APIKey
	}
	if apiKey != "" {
		opts = append(opts, llm.WithAPIKey(apiKey))
	}
	if retries > 0 {
		opts = append(opts, llm.WithRetries(retries))
	}
	return llm.NewOpenAIClient(opts...)
}
