package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp openai.ChatCompletion
	err  error
}

func (m *mockChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	return m.resp, m.err
}

// mockEmbeddingService implements embeddingService for testing.
type mockEmbeddingService struct {
	resp openai.CreateEmbeddingResponse
	err  error
}

func (m *mockEmbeddingService) Create(ctx context.Context, params openai.EmbeddingNewParams) (openai.CreateEmbeddingResponse, error) {
	return m.resp, m.err
}

func chatResponse(content string) openai.ChatCompletion {
	return openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestGeneratePrompt_Success(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: chatResponse("Olá!")}, model: DefaultModel}
	out, err := client.GeneratePrompt(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Olá!" {
		t.Errorf("expected 'Olá!', got '%s'", out)
	}
}

func TestGeneratePrompt_ServiceError(t *testing.T) {
	client := &Client{chat: &mockChatService{err: errors.New("service failure")}, model: DefaultModel}
	_, err := client.GeneratePrompt(context.Background(), "sys", "usr")
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestGeneratePrompt_NoChoices(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: openai.ChatCompletion{}}, model: DefaultModel}
	_, err := client.GeneratePrompt(context.Background(), "sys", "usr")
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected no choices returned error, got %v", err)
	}
}

func TestGenerateIntent_Success(t *testing.T) {
	client := &Client{
		chat:  &mockChatService{resp: chatResponse(`{"action":"greeting","reply":"Bom dia!"}`)},
		model: DefaultModel,
	}
	intent, err := client.GenerateIntent(context.Background(), "sys", "oi")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if intent.Action != models.ActionGreeting || intent.Reply != "Bom dia!" {
		t.Errorf("unexpected intent: %+v", intent)
	}
}

func TestGenerateIntent_UnknownActionNormalized(t *testing.T) {
	client := &Client{
		chat:  &mockChatService{resp: chatResponse(`{"action":"made_up_label","reply":"..."}`)},
		model: DefaultModel,
	}
	intent, err := client.GenerateIntent(context.Background(), "sys", "msg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if intent.Action != models.ActionOther {
		t.Errorf("expected unknown action to normalize to other, got %q", intent.Action)
	}
}

func TestGenerateIntent_InvalidJSON(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: chatResponse("not json")}, model: DefaultModel}
	_, err := client.GenerateIntent(context.Background(), "sys", "msg")
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestEmbedding_Success(t *testing.T) {
	client := &Client{
		embeddings: &mockEmbeddingService{resp: openai.CreateEmbeddingResponse{
			Data: []openai.Embedding{{Embedding: []float64{0.1, 0.2, 0.3}}},
		}},
		model: DefaultModel,
	}
	vec, err := client.Embedding(context.Background(), "benefícios")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("unexpected embedding: %v", vec)
	}
}

func TestEmbedding_Empty(t *testing.T) {
	client := &Client{embeddings: &mockEmbeddingService{}, model: DefaultModel}
	_, err := client.Embedding(context.Background(), "texto")
	if !errors.Is(err, ErrNoEmbeddingReturned) {
		t.Errorf("expected no embedding error, got %v", err)
	}
}

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if !errors.Is(err, ErrAPIKeyRequired) {
		t.Errorf("expected ErrAPIKeyRequired, got %v", err)
	}
}

func TestNewClient_WithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"), WithModel("gpt-4o"))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli == nil || cli.model != "gpt-4o" {
		t.Errorf("unexpected client: %+v", cli)
	}
}
