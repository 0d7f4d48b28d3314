// Package flow implements the conversational state machine behind the
// HR assistant: per-user pending steps, rule-based shortcuts for
// well-structured inputs (CPF, menu digits, registration lines) and an
// LLM fallback for open-ended natural language.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/JcKser/Iniciacao-Cientifica/internal/fuzzy"
	"github.com/JcKser/Iniciacao-Cientifica/internal/genai"
	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
	"github.com/JcKser/Iniciacao-Cientifica/internal/store"
)

// Extraction patterns for well-structured inputs.
var (
	cpfPattern      = regexp.MustCompile(`\d{3}\.?\d{3}\.?\d{3}-?\d{2}`)
	emailPattern    = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	cpfExactPattern = regexp.MustCompile(`^\d{11}$`)
	nonDigits       = regexp.MustCompile(`\D`)
)

// Canned degraded-service replies.
const (
	msgTryLater      = "Desculpe, estou com dificuldades técnicas no momento. Por favor, tente novamente mais tarde."
	msgApology       = "Desculpe, tive um problema ao processar sua solicitação. Por favor, tente novamente."
	msgStoreDown     = "Não foi possível consultar seu cadastro no momento. Por favor, tente novamente mais tarde."
	msgTicketFailure = "No momento não consegui registrar sua solicitação. Por favor, entre em contato pelo telefone (31) 4000-1234."
)

// Answerer resolves free-form questions against the knowledge base.
// It fails with rag.ErrNoAnswer when no grounded answer exists.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Reporter builds the PDF metrics report for a job and returns the
// generated file name.
type Reporter interface {
	Generate(ctx context.Context, jobName string) (string, error)
}

// TicketMailer delivers an escalation ticket to the support inbox.
type TicketMailer interface {
	Send(ctx context.Context, t models.Ticket) error
}

// Opts holds the optional collaborators of the conversation flow.
type Opts struct {
	Answerer Answerer
	Reporter Reporter
	Mailer   TicketMailer
	BaseURL  string
	Now      func() time.Time
}

// Option configures the conversation flow.
type Option func(*Opts)

// WithAnswerer wires the knowledge base answerer.
func WithAnswerer(a Answerer) Option {
	return func(o *Opts) { o.Answerer = a }
}

// WithReporter wires the PDF report generator.
func WithReporter(r Reporter) Option {
	return func(o *Opts) { o.Reporter = r }
}

// WithTicketMailer wires the support ticket mailer.
func WithTicketMailer(m TicketMailer) Option {
	return func(o *Opts) { o.Mailer = m }
}

// WithBaseURL sets the public base URL used in report download links.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Flow is the conversation engine. One instance serves all users;
// per-user state lives in the store.
type Flow struct {
	store    store.Store
	ai       genai.ClientInterface
	matcher  *fuzzy.Matcher
	answerer Answerer
	reporter Reporter
	mailer   TicketMailer
	baseURL  string
	now      func() time.Time
}

// NewFlow creates the conversation flow over a store and a GenAI client.
func NewFlow(st store.Store, ai genai.ClientInterface, opts ...Option) *Flow {
	cfg := Opts{BaseURL: "http://localhost:8080/", Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	return &Flow{
		store:    st,
		ai:       ai,
		matcher:  fuzzy.NewMatcher(),
		answerer: cfg.Answerer,
		reporter: cfg.Reporter,
		mailer:   cfg.Mailer,
		baseURL:  cfg.BaseURL,
		now:      cfg.Now,
	}
}

// HandleMessage resolves one inbound message into a reply, loading the
// sender's conversation state before and persisting it after.
func (f *Flow) HandleMessage(ctx context.Context, from, body string) (string, error) {
	text := strings.TrimSpace(body)
	if text == "" {
		return "Não recebi nenhuma mensagem. Pode reenviar?", nil
	}
	if from == "" {
		return "", models.ErrEmptyRecipient
	}

	st, err := f.store.GetConversationState(ctx, from)
	if err != nil {
		slog.Error("Flow HandleMessage failed to load state", "from", from, "error", err)
		return msgTryLater, nil
	}
	if st == nil {
		st = &models.ConversationState{UserID: from, CreatedAt: f.now()}
		slog.Info("Flow HandleMessage new conversation", "from", from)
	}

	reply := f.resolve(ctx, st, text)

	if err := f.store.SaveConversationState(ctx, *st); err != nil {
		slog.Error("Flow HandleMessage failed to save state", "from", from, "error", err)
	}
	slog.Debug("Flow HandleMessage resolved", "from", from, "pending", st.Pending, "reply_length", len(reply))
	return reply, nil
}

// timeOfDayGreeting picks the greeting by local hour.
func (f *Flow) timeOfDayGreeting() string {
	hour := f.now().Hour()
	var period string
	switch {
	case hour < 12:
		period = "Bom dia"
	case hour < 18:
		period = "Boa tarde"
	default:
		period = "Boa noite"
	}
	return fmt.Sprintf("%s! Como posso ajudar com suas questões de RH hoje?", period)
}

// foundCandidateMessage formats a matched record for confirmation.
func foundCandidateMessage(c *models.Candidate) string {
	return fmt.Sprintf("Encontramos seu cadastro: 😊\n\n*Nome:* %s\n*Email:* %s\n*Telefone:* %s\n\nEsses dados estão corretos?",
		c.Name, c.Email, c.Phone)
}

// digitsOf strips everything that is not a digit.
func digitsOf(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}
