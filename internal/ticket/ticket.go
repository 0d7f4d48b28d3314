// Package ticket opens support tickets for questions the knowledge base
// cannot answer, notifying the support inbox over SMTP.
package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mail "github.com/wneessen/go-mail"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
	"github.com/JcKser/Iniciacao-Cientifica/internal/util"
)

// New assembles a ticket for a candidate whose question escaped the
// knowledge base.
func New(c models.Candidate, lastQuery string, now time.Time) models.Ticket {
	return models.Ticket{
		Protocol:  util.GenerateProtocolID(now),
		Subject:   "Atendimento não resolvido pelo assistente virtual",
		Name:      c.Name,
		Email:     c.Email,
		Phone:     FormatPhone(c.Phone),
		CPF:       c.CPF,
		LastQuery: lastQuery,
		OpenedAt:  now,
	}
}

// FormatPhone renders a bare digit string as (DD) NNNNN-NNNN. Numbers
// with a country code keep only the last 11 digits; anything that does
// not look like a Brazilian number is returned unchanged.
func FormatPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) > 11 {
		digits = digits[len(digits)-11:]
	}
	switch len(digits) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:7], digits[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:6], digits[6:])
	default:
		return phone
	}
}

// Body renders the email body for a ticket.
func Body(t models.Ticket) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Protocolo: %s\n", t.Protocol)
	fmt.Fprintf(&sb, "Assunto: %s\n\n", t.Subject)
	fmt.Fprintf(&sb, "Nome: %s\n", t.Name)
	fmt.Fprintf(&sb, "Email: %s\n", t.Email)
	fmt.Fprintf(&sb, "Telefone: %s\n", t.Phone)
	fmt.Fprintf(&sb, "CPF: %s\n\n", t.CPF)
	fmt.Fprintf(&sb, "Última pergunta: %s\n", t.LastQuery)
	fmt.Fprintf(&sb, "Aberto em: %s\n", t.OpenedAt.Format("02/01/2006 15:04:05"))
	return sb.String()
}

// smtpSender abstracts the go-mail client for testing.
type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Opts holds SMTP configuration for the mailer.
type Opts struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Option configures the mailer.
type Option func(*Opts)

// WithSMTP sets the SMTP server address and credentials.
func WithSMTP(host string, port int, username, password string) Option {
	return func(o *Opts) {
		o.Host = host
		o.Port = port
		o.Username = username
		o.Password = password
	}
}

// WithAddresses sets the sender and support inbox addresses.
func WithAddresses(from, to string) Option {
	return func(o *Opts) {
		o.From = from
		o.To = to
	}
}

// Mailer sends ticket notifications to the support inbox.
type Mailer struct {
	sender smtpSender
	from   string
	to     string
}

// NewMailer creates a Mailer using STARTTLS and plain authentication.
func NewMailer(opts ...Option) (*Mailer, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Host == "" || cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("SMTP host, sender and support addresses required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &Mailer{sender: client, from: cfg.From, to: cfg.To}, nil
}

// Send emails the ticket to the support inbox.
func (m *Mailer) Send(ctx context.Context, t models.Ticket) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(m.to); err != nil {
		return fmt.Errorf("invalid support address: %w", err)
	}
	msg.Subject(fmt.Sprintf("[%s] %s", t.Protocol, t.Subject))
	msg.SetBodyString(mail.TypeTextPlain, Body(t))

	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		slog.Error("Ticket Send failed", "protocol", t.Protocol, "error", err)
		return fmt.Errorf("failed to send ticket email: %w", err)
	}
	slog.Info("Ticket Send delivered", "protocol", t.Protocol, "to", m.to)
	return nil
}
