// Package rag answers free-form questions grounded on the knowledge
// base documents stored alongside their embeddings. When the retrieved
// context does not contain the answer the model is instructed to emit a
// sentinel token, which is surfaced as ErrNoAnswer so the caller can
// escalate to a support ticket.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/JcKser/Iniciacao-Cientifica/internal/genai"
	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
)

// ErrNoAnswer indicates the knowledge base does not cover the question.
var ErrNoAnswer = errors.New("knowledge base does not cover the question")

// noAnswerToken is the sentinel the model emits when the retrieved
// context does not contain the answer.
const noAnswerToken = "NAO_SEI_A_RESPOSTA"

// defaultTopK is how many documents are passed to the model as context.
const defaultTopK = 3

const answerSystemPrompt = `Você é um assistente de suporte. Responda à pergunta do usuário usando SOMENTE o contexto fornecido abaixo. Seja direto e cordial, em português. Se o contexto não contiver a informação necessária para responder, responda exatamente com ` + noAnswerToken + ` e nada mais.

Contexto:
%s`

// documentSource lists the knowledge base documents.
type documentSource interface {
	ListDocuments(ctx context.Context) ([]models.Document, error)
}

// Retriever answers questions against the knowledge base.
type Retriever struct {
	store documentSource
	genai genai.ClientInterface
	topK  int
}

// NewRetriever creates a Retriever over the given document source.
func NewRetriever(store documentSource, client genai.ClientInterface) *Retriever {
	return &Retriever{store: store, genai: client, topK: defaultTopK}
}

// Answer embeds the question, retrieves the most similar documents and
// asks the model for a grounded reply. Returns ErrNoAnswer when the
// knowledge base cannot answer.
func (r *Retriever) Answer(ctx context.Context, question string) (string, error) {
	docs, err := r.store.ListDocuments(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load knowledge base: %w", err)
	}
	if len(docs) == 0 {
		slog.Debug("RAG Answer no documents in knowledge base")
		return "", ErrNoAnswer
	}

	queryVec, err := r.genai.Embedding(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	ranked := rankDocuments(docs, queryVec)
	top := ranked
	if len(top) > r.topK {
		top = top[:r.topK]
	}
	slog.Debug("RAG Answer retrieved documents", "question", question, "count", len(top))

	var sb strings.Builder
	for _, d := range top {
		fmt.Fprintf(&sb, "## %s\n%s\n\n", d.Title, d.Content)
	}

	reply, err := r.genai.GeneratePrompt(ctx, fmt.Sprintf(answerSystemPrompt, sb.String()), question)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	if strings.Contains(reply, noAnswerToken) {
		slog.Info("RAG Answer outside knowledge base", "question", question)
		return "", ErrNoAnswer
	}
	return strings.TrimSpace(reply), nil
}

// rankDocuments orders documents by cosine similarity to the query
// vector, most similar first. Documents without embeddings rank last.
func rankDocuments(docs []models.Document, query []float64) []models.Document {
	type scored struct {
		doc   models.Document
		score float64
	}
	ranked := make([]scored, 0, len(docs))
	for _, d := range docs {
		ranked = append(ranked, scored{doc: d, score: cosineSimilarity(d.Embedding, query)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	out := make([]models.Document, len(ranked))
	for i, s := range ranked {
		out[i] = s.doc
	}
	return out
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
