// Package genai wraps the OpenAI API for chat completions, intent
// classification and text embeddings.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
)

var (
	// ErrAPIKeyRequired is returned when no API key is configured.
	ErrAPIKeyRequired = errors.New("OpenAI API key required")
	// ErrNoChoicesReturned is returned when the API responds with no choices.
	ErrNoChoicesReturned = errors.New("no choices returned from OpenAI")
	// ErrNoEmbeddingReturned is returned when the API responds with no embedding data.
	ErrNoEmbeddingReturned = errors.New("no embedding returned from OpenAI")
	// ErrMalformedResponse is returned when the model reply cannot be decoded.
	ErrMalformedResponse = errors.New("malformed model response")
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.ChatModelGPT4oMini

// DefaultEmbeddingModel is the embedding model used for retrieval.
const DefaultEmbeddingModel = openai.EmbeddingModelTextEmbeddingAda002

// chatService abstracts the chat completion API for testing.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// embeddingService abstracts the embedding API for testing.
type embeddingService interface {
	Create(ctx context.Context, params openai.EmbeddingNewParams) (openai.CreateEmbeddingResponse, error)
}

type openaiChatService struct {
	client openai.Client
}

func (s *openaiChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

type openaiEmbeddingService struct {
	client openai.Client
}

func (s *openaiEmbeddingService) Create(ctx context.Context, params openai.EmbeddingNewParams) (openai.CreateEmbeddingResponse, error) {
	resp, err := s.client.Embeddings.New(ctx, params)
	if err != nil {
		return openai.CreateEmbeddingResponse{}, err
	}
	return *resp, nil
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey string
	Model  string
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the default chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// ClientInterface is the surface the conversation flow depends on.
type ClientInterface interface {
	GeneratePrompt(ctx context.Context, system, user string) (string, error)
	GenerateIntent(ctx context.Context, system, user string) (models.Intent, error)
	Embedding(ctx context.Context, text string) ([]float64, error)
}

// Client calls the OpenAI API.
type Client struct {
	chat       chatService
	embeddings embeddingService
	model      string
}

// NewClient creates a GenAI client. The API key comes from options or
// the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	api := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("GenAI client created", "model", cfg.Model)
	return &Client{
		chat:       &openaiChatService{client: api},
		embeddings: &openaiEmbeddingService{client: api},
		model:      cfg.Model,
	}, nil
}

// GeneratePrompt sends a system and user prompt and returns the first
// completion text.
func (c *Client) GeneratePrompt(ctx context.Context, system, user string) (string, error) {
	slog.Debug("GenAI GeneratePrompt", "systemLen", len(system), "userLen", len(user))
	resp, err := c.chat.Create(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.4),
	})
	if err != nil {
		slog.Error("GenAI GeneratePrompt API error", "error", err)
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateIntent asks the model for a JSON object with an action label
// and a reply, and decodes it into a models.Intent. Unknown action
// labels are normalized rather than rejected.
func (c *Client) GenerateIntent(ctx context.Context, system, user string) (models.Intent, error) {
	slog.Debug("GenAI GenerateIntent", "userLen", len(user))
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.4),
	}
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Error("GenAI GenerateIntent API error", "error", err)
		return models.Intent{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Intent{}, ErrNoChoicesReturned
	}
	var intent models.Intent
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &intent); err != nil {
		slog.Error("GenAI GenerateIntent decode error", "error", err, "content", resp.Choices[0].Message.Content)
		return models.Intent{}, fmt.Errorf("failed to decode intent response: %w", ErrMalformedResponse)
	}
	intent.Normalize()
	return intent, nil
}

// Embedding returns the embedding vector for a piece of text.
func (c *Client) Embedding(ctx context.Context, text string) ([]float64, error) {
	slog.Debug("GenAI Embedding", "textLen", len(text))
	resp, err := c.embeddings.Create(ctx, openai.EmbeddingNewParams{
		Model: DefaultEmbeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		slog.Error("GenAI Embedding API error", "error", err)
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingReturned
	}
	return resp.Data[0].Embedding, nil
}
