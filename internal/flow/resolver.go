package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JcKser/Iniciacao-Cientifica/internal/fuzzy"
	"github.com/JcKser/Iniciacao-Cientifica/internal/genai"
	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
	"github.com/JcKser/Iniciacao-Cientifica/internal/rag"
	"github.com/JcKser/Iniciacao-Cientifica/internal/report"
	"github.com/JcKser/Iniciacao-Cientifica/internal/store"
	"github.com/JcKser/Iniciacao-Cientifica/internal/ticket"
)

// stepHandler tries to resolve the message. It reports handled=false to
// pass the message on to the next handler in the table.
type stepHandler func(ctx context.Context, st *models.ConversationState, text string) (reply string, handled bool)

// steps returns the resolution table. Handlers run in priority order
// until one claims the message; the LLM fallback always claims it.
func (f *Flow) steps() []stepHandler {
	return []stepHandler{
		f.handleGreeting,
		f.handleMenuChoice,
		f.handleRegistration,
		f.handleCPFProbe,
		f.handleAlternativeLookup,
		f.handleReportOffer,
		f.handleListJobs,
		f.handleJobDetail,
		f.handleLLMFallback,
	}
}

func (f *Flow) resolve(ctx context.Context, st *models.ConversationState, text string) string {
	for _, step := range f.steps() {
		if reply, handled := step(ctx, st, text); handled {
			return reply
		}
	}
	return msgApology
}

// handleGreeting answers pure greetings deterministically. The first
// greeting of a conversation gets a time-of-day salutation; repeats get
// a short "how else can I help". Detection goes through the fuzzy
// matcher so accented salutations and small typos still register.
func (f *Flow) handleGreeting(_ context.Context, st *models.ConversationState, text string) (string, bool) {
	if !f.matcher.IsGreeting(text) {
		return "", false
	}
	if st.Greeted {
		return "Em que mais posso ajudar você?", true
	}
	st.Greeted = true
	return f.timeOfDayGreeting(), true
}

// handleMenuChoice resolves input while the user is at the help menu.
// Digits 1-4 return the canned answer; 5 keeps the menu step active and
// asks for the question; anything else is routed to the knowledge base
// and the step is cleared regardless of the outcome.
func (f *Flow) handleMenuChoice(ctx context.Context, st *models.ConversationState, text string) (string, bool) {
	if st.Pending != models.StepMenuChoice {
		return "", false
	}
	if opt, ok := faqMenu[text]; ok {
		if text == "5" {
			// Keep the step active to capture the upcoming question.
			return opt.Answer, true
		}
		st.Pending = models.StepNone
		return opt.Answer, true
	}

	st.Pending = models.StepNone
	st.LastQuery = text
	return f.answerAdvancedQuestion(ctx, st, text), true
}

// answerAdvancedQuestion queries the knowledge base, escalating to a
// support ticket when no grounded answer exists.
func (f *Flow) answerAdvancedQuestion(ctx context.Context, st *models.ConversationState, question string) string {
	if f.answerer == nil {
		slog.Warn("Flow advanced question without answerer configured")
		return msgTryLater
	}
	answer, err := f.answerer.Answer(ctx, question)
	if err == nil {
		return answer
	}
	if errors.Is(err, rag.ErrNoAnswer) {
		return f.escalateToTicket(ctx, st, question)
	}
	slog.Error("Flow advanced question failed", "error", err)
	return msgApology
}

// escalateToTicket opens a support ticket with the user's known contact
// fields and emails it to the support queue.
func (f *Flow) escalateToTicket(ctx context.Context, st *models.ConversationState, question string) string {
	if f.mailer == nil {
		slog.Warn("Flow escalation without mailer configured")
		return msgTicketFailure
	}
	c := models.Candidate{Name: st.LastName, CPF: st.LastCPF, Email: st.LastEmail, Phone: st.LastPhone}
	tk := ticket.New(c, question, f.now())
	if err := f.mailer.Send(ctx, tk); err != nil {
		slog.Error("Flow escalation failed to send ticket", "protocol", tk.Protocol, "error", err)
		return msgTicketFailure
	}
	return fmt.Sprintf("Não encontrei a resposta na nossa base de conhecimento, mas abri um chamado para nossa equipe. Seu protocolo é %s. Entraremos em contato em breve pelo seu e-mail.", tk.Protocol)
}

// handleRegistration parses the four registration lines (name, CPF,
// email, phone). Validation failures keep the step active with a
// corrective prompt; fewer than four lines falls through to the LLM.
func (f *Flow) handleRegistration(ctx context.Context, st *models.ConversationState, text string) (string, bool) {
	if st.Pending != models.StepRegistration {
		return "", false
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 4 {
		return "", false
	}
	for i := 0; i < 4; i++ {
		if strings.TrimSpace(lines[i]) == "" {
			return "", false
		}
	}
	name := strings.TrimSpace(lines[0])
	cpf := digitsOf(strings.TrimSpace(lines[1]))
	email := strings.ToLower(strings.TrimSpace(lines[2]))
	phone := digitsOf(strings.TrimSpace(lines[3]))

	if !cpfExactPattern.MatchString(cpf) {
		return "CPF inválido no cadastro. Por favor, verifique e tente novamente.", true
	}
	if !emailPattern.MatchString(email) {
		return "Email inválido no cadastro. Por favor, verifique e tente novamente.", true
	}
	if len(phone) < 10 || len(phone) > 11 {
		return "Telefone inválido. Verifique o DDD e o número.", true
	}

	c := models.Candidate{Name: name, CPF: cpf, Email: email, Phone: phone}
	err := f.store.CreateCandidate(ctx, c)
	st.Pending = models.StepNone
	switch {
	case errors.Is(err, store.ErrDuplicateCPF):
		return "Este CPF já está cadastrado em nosso sistema.", true
	case errors.Is(err, store.ErrDuplicateEmail):
		return "Este email já está cadastrado em nosso sistema.", true
	case err != nil:
		slog.Error("Flow registration failed", "error", err)
		return "Houve um problema ao realizar o cadastro. Tente mais tarde.", true
	}

	st.RememberCandidate(c)
	st.Pending = models.StepMenuChoice
	return "Cadastro realizado com sucesso!\n\n" + Menu(), true
}

// handleCPFProbe looks up any message carrying a CPF, unless the user
// is mid-registration or providing alternative contact data. A hit asks
// for confirmation; a miss asks for an email or phone instead.
func (f *Flow) handleCPFProbe(ctx context.Context, st *models.ConversationState, text string) (string, bool) {
	if st.Pending == models.StepRegistration || st.Pending == models.StepAlternativeLookup {
		return "", false
	}
	match := cpfPattern.FindString(text)
	if match == "" {
		return "", false
	}
	cpf := digitsOf(match)
	st.LastCPF = cpf

	c, err := f.store.FindCandidateByCPF(ctx, cpf)
	if err != nil {
		slog.Error("Flow CPF lookup failed", "error", err)
		return msgStoreDown, true
	}
	if c == nil {
		st.Pending = models.StepAlternativeLookup
		return "Não encontrei seu cadastro com esse CPF. Por favor, informe seu melhor e-mail ou número de telefone para tentarmos localizar seu cadastro.", true
	}
	st.RememberCandidate(*c)
	st.Pending = models.StepConfirmation
	return foundCandidateMessage(c), true
}

// handleAlternativeLookup classifies the input as email or phone and
// retries the candidate lookup. A miss moves the user to registration.
func (f *Flow) handleAlternativeLookup(ctx context.Context, st *models.ConversationState, text string) (string, bool) {
	if st.Pending != models.StepAlternativeLookup {
		return "", false
	}

	var c *models.Candidate
	var err error
	digits := digitsOf(text)
	switch {
	case emailPattern.MatchString(text):
		c, err = f.store.FindCandidateByEmail(ctx, strings.ToLower(text))
	case len(digits) >= 10 && len(digits) <= 13:
		if len(digits) > 11 {
			digits = digits[len(digits)-11:]
		}
		c, err = f.store.FindCandidateByPhone(ctx, digits)
	default:
		return "Não consegui identificar um e-mail ou telefone válido. Por favor, digite um e-mail ou um número de telefone para continuar a busca.", true
	}

	if err != nil {
		slog.Error("Flow alternative lookup failed", "error", err)
		return msgStoreDown, true
	}
	if c == nil {
		st.Pending = models.StepRegistration
		return "Desculpe, não encontrei seu cadastro. Você gostaria de se cadastrar? Envie em linhas separadas: Nome, CPF, Email e Telefone.", true
	}
	st.RememberCandidate(*c)
	st.Pending = models.StepConfirmation
	return foundCandidateMessage(c), true
}

// handleReportOffer reacts to yes/no after a PDF report was offered.
// Ambiguous replies fall through while keeping the offer open.
func (f *Flow) handleReportOffer(ctx context.Context, st *models.ConversationState, text string) (string, bool) {
	if st.Pending != models.StepReportOffer || st.LastJob == "" {
		return "", false
	}
	switch {
	case f.matcher.IsAffirmative(text):
		st.Pending = models.StepNone
		return f.generateReportLink(ctx, st.LastJob), true
	case f.matcher.IsNegative(text):
		st.Pending = models.StepNone
		return "Tudo bem. Se precisar de mais informações sobre as métricas ou desejar gerar um relatório PDF, me avise.", true
	}
	return "", false
}

func (f *Flow) generateReportLink(ctx context.Context, jobName string) string {
	if f.reporter == nil {
		slog.Warn("Flow report requested without reporter configured")
		return "Erro ao gerar o relatório. Tente novamente mais tarde."
	}
	fileName, err := f.reporter.Generate(ctx, jobName)
	if errors.Is(err, report.ErrNoMetrics) {
		return "Ainda não há dados de métricas registrados para esta vaga, então não consegui gerar o relatório."
	}
	if err != nil {
		slog.Error("Flow report generation failed", "job", jobName, "error", err)
		return "Erro ao gerar o relatório. Tente novamente mais tarde."
	}
	link := fmt.Sprintf("%sstatic/%s?v=%d", f.baseURL, fileName, f.now().Unix())
	return "O relatório foi gerado com sucesso!\nAcesse o relatório clicando no link abaixo:\n" + link
}

// handleListJobs answers requests for the list of open postings.
func (f *Flow) handleListJobs(ctx context.Context, st *models.ConversationState, text string) (string, bool) {
	if !f.matcher.IsListJobsRequest(text) {
		return "", false
	}
	jobs, err := f.store.ListJobs(ctx, models.JobStatusOpen)
	if err != nil {
		slog.Error("Flow job listing failed", "error", err)
		return msgTryLater, true
	}
	if len(jobs) == 0 {
		return "No momento, não temos vagas disponíveis. Mas fique de olho que sempre abrimos novas oportunidades!", true
	}
	var sb strings.Builder
	sb.WriteString(fuzzy.ListJobsIntros[0])
	for _, j := range jobs {
		sb.WriteString("\n")
		sb.WriteString(j.Name)
	}
	return sb.String(), true
}

// handleJobDetail matches the message against job names and, on a hit,
// returns the posting details plus accumulated metrics, offering a PDF
// report when metrics exist.
func (f *Flow) handleJobDetail(ctx context.Context, st *models.ConversationState, text string) (string, bool) {
	jobs, err := f.store.ListJobs(ctx, "")
	if err != nil {
		slog.Error("Flow job detail listing failed", "error", err)
		return "", false
	}
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name
	}
	name, _, ok := f.matcher.BestMatch(text, names, fuzzy.ThresholdJobName)
	if !ok {
		return "", false
	}

	job, err := f.store.GetJobByName(ctx, name)
	if err != nil || job == nil {
		slog.Error("Flow job detail lookup failed", "job", name, "error", err)
		return msgTryLater, true
	}

	status := "Fechada"
	if job.Status == models.JobStatusOpen {
		status = "Aberta"
	}
	detail := fmt.Sprintf(
		"%s\n\n🔎 *Vaga:* %s\n\n📄 *Descrição:* %s\n\n🛠️ *Requisitos:* %s\n\n💼 *Salário:* R$ %.2f\n\n👥 *Número de Vagas:* %d\n\n📅 *Data de Abertura:* %s\n\n📌 *Status:* %s",
		fuzzy.JobDetailIntros[0], job.Name, job.Description, job.Requirements, job.Salary,
		job.Openings, job.CreatedAt.Format("02/01/2006"), status)

	metrics, err := f.store.MetricsByJobName(ctx, name)
	if err != nil {
		slog.Error("Flow job metrics lookup failed", "job", name, "error", err)
		return detail, true
	}
	if len(metrics) == 0 {
		return detail, true
	}

	var sb strings.Builder
	sb.WriteString(detail)
	sb.WriteString("\n\n📊 Métricas Adicionais:\n")
	for _, m := range metrics {
		fmt.Fprintf(&sb, "Visualizações: %d\nInscrições Iniciadas: %d\nInscrições Concluídas: %d\nDesistências: %d\n\n",
			m.Views, m.ApplicationsStarted, m.ApplicationsCompleted, m.Dropouts)
	}
	sb.WriteString("Deseja um relatório PDF com mais detalhes sobre essas métricas?")
	st.LastJob = job.Name
	st.Pending = models.StepReportOffer
	return sb.String(), true
}

// handleLLMFallback delegates open-ended input to the model and reacts
// to the returned action label. It always claims the message.
func (f *Flow) handleLLMFallback(ctx context.Context, st *models.ConversationState, text string) (string, bool) {
	intent, err := f.ai.GenerateIntent(ctx, systemPrompt(st), text)
	if errors.Is(err, genai.ErrMalformedResponse) {
		return msgApology, true
	}
	if err != nil {
		slog.Error("Flow LLM fallback failed", "error", err)
		return msgTryLater, true
	}
	slog.Debug("Flow LLM fallback", "action", intent.Action, "pending", st.Pending)

	switch intent.Action {
	case models.ActionConfirmID:
		st.Pending = models.StepMenuChoice
		return "Ótimo! Seus dados foram validados. Como posso te ajudar hoje?\n\n" + Menu(), true

	case models.ActionRejectID:
		st.ForgetCandidate()
		st.Pending = models.StepAlternativeLookup
		return "Entendo. Por favor, informe seu melhor e-mail ou número de telefone para tentarmos localizar seu cadastro.", true

	case models.ActionNewCustomer:
		st.Pending = models.StepRegistration
		if intent.Reply == "" {
			return "Sem problemas! Para o cadastro, envie em linhas separadas: Nome, CPF, Email e Telefone.", true
		}
		return intent.Reply, true

	case models.ActionChooseMenuOption:
		if opt, ok := faqMenu[text]; ok {
			if text == "5" {
				st.Pending = models.StepMenuChoice
			} else {
				st.Pending = models.StepNone
			}
			return opt.Answer, true
		}
		st.Pending = models.StepNone
		return f.withMenuOffer(st, intent.Reply), true

	case models.ActionAlternativeContact:
		st.Pending = models.StepNone
		return intent.Reply, true
	}

	reply := intent.Reply
	if reply == "" {
		reply = "Desculpe, não entendi. Pode reformular, por favor?"
	}
	return f.withMenuOffer(st, reply), true
}

// withMenuOffer appends the help menu when the model's reply points the
// user at it, arming the menu step for the next turn.
func (f *Flow) withMenuOffer(st *models.ConversationState, reply string) string {
	lower := strings.ToLower(reply)
	if strings.Contains(lower, "central de ajuda") || strings.Contains(lower, "menu") || strings.Contains(lower, "sac") {
		st.Pending = models.StepMenuChoice
		return reply + "\n\n" + Menu()
	}
	return reply
}
