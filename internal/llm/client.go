package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"github.com/giantswarm/essay-feedback/internal/apperror"
)

// DefaultBaseURL is Ollama's OpenAI-compatible endpoint.
const DefaultBaseURL = "http://localhost:11434/v1"

// DefaultModel is the model evaluations are sent to unless configured otherwise.
const DefaultModel = "gemma:7b"

// Client abstracts an OpenAI-compatible LLM API.
type Client interface {
	// ChatCompletion sends a chat completion request and returns the response.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a two-turn exchange: the system message, then the user message.
type ChatRequest struct {
	Model         string
	SystemMessage string
	UserMessage   string
	Temperature   *float64 // nil leaves the choice to the server
}

// ChatResponse holds the result of a chat completion.
type ChatResponse struct {
	Content string
	Model   string
}

// OpenAIClient implements Client using the OpenAI-compatible API.
type OpenAIClient struct {
	client     *openai.Client
	retries    int
	retryDelay time.Duration
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(opts ...Option) *OpenAIClient {
	cfg := &clientConfig{
		baseURL:    DefaultBaseURL,
		apiKey:     "ollama",
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	config := openai.DefaultConfig(cfg.apiKey)
	config.BaseURL = cfg.baseURL

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(config),
		retries:    cfg.retries,
		retryDelay: cfg.retryDelay,
	}
}

// ChatCompletion sends a non-streaming chat completion request and returns
// the reply text unmodified. Without WithRetries it makes exactly one call.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = DefaultModel
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.SystemMessage},
		{Role: openai.ChatMessageRoleUser, Content: req.UserMessage},
	}

	creq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	}
	if req.Temperature != nil {
		creq.Temperature = float32(*req.Temperature)
		if creq.Temperature == 0 {
			// The field is omitempty; a zero would leave the server default in place.
			creq.Temperature = math.SmallestNonzeroFloat32
		}
	}

	var (
		resp    openai.ChatCompletionResponse
		attempt int
	)
	backoff := retry.WithMaxRetries(uint64(c.retries), retry.NewExponential(c.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		start := time.Now()

		var err error
		resp, err = c.client.CreateChatCompletion(ctx, creq)
		if err != nil {
			if attempt <= c.retries && isRetryable(err) {
				slog.Warn("chat completion failed, retrying",
					"model", req.Model,
					"attempt", attempt,
					"error", err,
				)
				return retry.RetryableError(err)
			}
			return err
		}

		slog.Debug("chat completion done",
			"model", req.Model,
			"attempt", attempt,
			"duration", time.Since(start),
		)
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindBackend, err, "chat completion failed")
	}

	if len(resp.Choices) == 0 {
		return nil, apperror.New(apperror.KindBackend, "no choices returned")
	}

	return &ChatResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
	}, nil
}

// isRetryable reports whether err is worth another attempt: rate limiting,
// server errors and transport failures. Context errors never are.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

