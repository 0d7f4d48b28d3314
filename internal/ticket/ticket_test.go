package ticket

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	mail "github.com/wneessen/go-mail"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
	"github.com/JcKser/Iniciacao-Cientifica/internal/util"
)

type mockSender struct {
	msgs []*mail.Msg
	err  error
}

func (m *mockSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	m.msgs = append(m.msgs, msgs...)
	return m.err
}

func TestFormatPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"11987654321", "(11) 98765-4321"},
		{"5511987654321", "(11) 98765-4321"},
		{"1134567890", "(11) 3456-7890"},
		{"+55 11 98765-4321", "(11) 98765-4321"},
		{"123", "123"},
	}
	for _, tc := range cases {
		if got := FormatPhone(tc.in); got != tc.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNew_FillsTicket(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	c := models.Candidate{Name: "Maria", CPF: "12345678901", Email: "maria@example.com", Phone: "5511987654321"}

	tk := New(c, "como trocar minha senha?", now)

	if !strings.HasPrefix(tk.Protocol, util.TicketProtocolPrefix+"-") {
		t.Errorf("unexpected protocol %q", tk.Protocol)
	}
	if tk.Phone != "(11) 98765-4321" {
		t.Errorf("unexpected phone %q", tk.Phone)
	}
	if tk.LastQuery != "como trocar minha senha?" || tk.Name != "Maria" {
		t.Errorf("unexpected ticket %+v", tk)
	}
}

func TestBody_ContainsAllFields(t *testing.T) {
	tk := models.Ticket{
		Protocol:  "TICKET-20250310143000-abcd1234",
		Subject:   "Atendimento não resolvido pelo assistente virtual",
		Name:      "Maria",
		Email:     "maria@example.com",
		Phone:     "(11) 98765-4321",
		CPF:       "12345678901",
		LastQuery: "como trocar minha senha?",
		OpenedAt:  time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
	}
	body := Body(tk)
	for _, want := range []string{
		"TICKET-20250310143000-abcd1234",
		"Maria",
		"maria@example.com",
		"(11) 98765-4321",
		"12345678901",
		"como trocar minha senha?",
		"10/03/2025 14:30:00",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestMailerSend(t *testing.T) {
	sender := &mockSender{}
	m := &Mailer{sender: sender, from: "bot@example.com", to: "suporte@example.com"}

	tk := New(models.Candidate{Name: "Maria", Email: "maria@example.com", Phone: "11987654321"}, "dúvida", time.Now())
	if err := m.Send(context.Background(), tk); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(sender.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.msgs))
	}
}

func TestMailerSend_Error(t *testing.T) {
	m := &Mailer{sender: &mockSender{err: errors.New("connection refused")}, from: "bot@example.com", to: "suporte@example.com"}

	err := m.Send(context.Background(), models.Ticket{Protocol: "TICKET-1"})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected send error, got %v", err)
	}
}

func TestNewMailer_Validation(t *testing.T) {
	if _, err := NewMailer(); err == nil {
		t.Error("expected error without SMTP configuration")
	}
	if _, err := NewMailer(WithSMTP("smtp.example.com", 587, "user", "pass"), WithAddresses("bot@example.com", "suporte@example.com")); err != nil {
		t.Errorf("expected mailer to be created, got %v", err)
	}
}
