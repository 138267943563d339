// ABOUTME: OpenAI chat completion and embedding backends built on go-openai
// ABOUTME: Adds per-call timeouts, request pacing and retry with backoff on transient failures
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/harper/shopassist/internal/models"
	"github.com/harper/shopassist/internal/util"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
	// DefaultEmbeddingDimensions matches the vector store dimension
	DefaultEmbeddingDimensions = 100

	backendName = "openai"
)

// ClientConfig holds configuration for the OpenAI backends
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	// Dimensions asks the embedding model to shorten its vectors; 0 keeps the model default
	Dimensions int
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	// RequestsPerSecond paces outgoing calls; 0 disables pacing
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Dimensions:     DefaultEmbeddingDimensions,
		MaxRetries:     3,
		RetryDelay:     time.Second * 2,
		Timeout:        30 * time.Second,
	}
}

// caller holds what both backends share: the client, retry policy and pacing
type caller struct {
	client     *openai.Client
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	limiter    *rate.Limiter
	tokenizer  Tokenizer
}

func newCaller(config *ClientConfig, tok Tokenizer) (*caller, error) {
	if config == nil {
		return nil, fmt.Errorf("OpenAI client config is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		burst := int(config.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	if tok == nil {
		tok = WordTokenizer{}
	}

	return &caller{
		client:     openai.NewClientWithConfig(clientConfig),
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		timeout:    config.Timeout,
		limiter:    limiter,
		tokenizer:  tok,
	}, nil
}

// do runs call under the retry policy with pacing and a per-attempt timeout
func (c *caller) do(ctx context.Context, call func(ctx context.Context) error) error {
	return util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return util.Permanent(err)
			}
		}

		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		return classify(call(callCtx))
	})
}

// classify marks client errors as permanent so they are not retried
func classify(err error) error {
	if err == nil {
		return nil
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusUnprocessableEntity:
		return util.Permanent(err)
	}
	return err
}

// OpenAIChat is a Chat backend for OpenAI chat completion models
type OpenAIChat struct {
	*caller
	model string
}

// NewOpenAIChat creates a chat backend. A nil tokenizer falls back to word counting.
func NewOpenAIChat(config *ClientConfig, tok Tokenizer) (*OpenAIChat, error) {
	c, err := newCaller(config, tok)
	if err != nil {
		return nil, err
	}
	model := config.ChatModel
	if model == "" {
		model = DefaultChatModel
	}
	return &OpenAIChat{caller: c, model: model}, nil
}

// Model returns the chat model name
func (c *OpenAIChat) Model() string {
	return c.model
}

// Chat sends the conversation and returns the first choice as an assistant message
func (c *OpenAIChat) Chat(ctx context.Context, messages []models.ChatMessage) (models.ChatMessage, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	var reply models.ChatMessage
	err := c.do(ctx, func(ctx context.Context) error {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errEmptyResponse
		}
		reply = models.NewAssistantMessage(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return models.ChatMessage{}, &BackendError{Backend: backendName, Op: "chat", Err: err}
	}
	return reply, nil
}

func (c *OpenAIChat) CountTokens(messages []models.ChatMessage) int {
	return countMessages(c.tokenizer, messages)
}

// OpenAIEmbedding is an Embedding backend for OpenAI embedding models
type OpenAIEmbedding struct {
	*caller
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIEmbedding creates an embedding backend. A nil tokenizer falls back to word counting.
func NewOpenAIEmbedding(config *ClientConfig, tok Tokenizer) (*OpenAIEmbedding, error) {
	c, err := newCaller(config, tok)
	if err != nil {
		return nil, err
	}
	model := config.EmbeddingModel
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &OpenAIEmbedding{caller: c, model: openai.EmbeddingModel(model), dimensions: config.Dimensions}, nil
}

// Embed returns the embedding of text as float64
func (e *OpenAIEmbedding) Embed(ctx context.Context, text string) ([]float64, error) {
	req := openai.EmbeddingRequestStrings{
		Input:      []string{text},
		Model:      e.model,
		Dimensions: e.dimensions,
	}

	var vector []float64
	err := e.do(ctx, func(ctx context.Context) error {
		resp, err := e.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return errEmptyResponse
		}

		vector = make([]float64, len(resp.Data[0].Embedding))
		for i, v := range resp.Data[0].Embedding {
			vector[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, &BackendError{Backend: backendName, Op: "embed", Err: err}
	}
	return vector, nil
}

func (e *OpenAIEmbedding) CountTokens(text string) int {
	return e.tokenizer.Count(text)
}
