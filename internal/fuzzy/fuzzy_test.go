package fuzzy

import "testing"

func TestBestMatchThreshold(t *testing.T) {
	m := NewMatcher()

	match, score, ok := m.BestMatch("sim", AffirmativeReplies, ThresholdYesNo)
	if !ok || match != "sim" {
		t.Errorf("exact affirmative should match, got %q (score %.1f, ok=%v)", match, score, ok)
	}

	_, _, ok = m.BestMatch("quero falar de outra coisa totalmente diferente", AffirmativeReplies, ThresholdYesNo)
	if ok {
		t.Error("unrelated input must not reach the affirmative threshold")
	}
}

func TestBestMatchEmptyInput(t *testing.T) {
	m := NewMatcher()
	if _, _, ok := m.BestMatch("   ", AffirmativeReplies, ThresholdYesNo); ok {
		t.Error("blank input must never match")
	}
	if _, _, ok := m.BestMatch("sim", nil, ThresholdYesNo); ok {
		t.Error("empty candidate list must never match")
	}
}

func TestAffirmativeNegativeClassification(t *testing.T) {
	m := NewMatcher()

	affirmatives := []string{"sim", "Sim, quero", "quero sim", "com certeza", "claro"}
	for _, in := range affirmatives {
		if !m.IsAffirmative(in) {
			t.Errorf("expected %q to classify as affirmative", in)
		}
	}

	negatives := []string{"não", "nao", "não, obrigado", "não quero", "agora não, obrigado"}
	for _, in := range negatives {
		if !m.IsNegative(in) {
			t.Errorf("expected %q to classify as negative", in)
		}
	}

	if m.IsAffirmative("minha senha não funciona") {
		t.Error("support question must not classify as affirmative")
	}
}

func TestIsGreeting(t *testing.T) {
	m := NewMatcher()

	greetings := []string{"oi", "olá", "ola", "Olá!", "Bom dia!", "boa noite"}
	for _, in := range greetings {
		if !m.IsGreeting(in) {
			t.Errorf("expected %q to classify as a greeting", in)
		}
	}

	others := []string{"quais vagas estão abertas", "12345678901", "meu cpf é 123.456.789-01", "não, obrigado"}
	for _, in := range others {
		if m.IsGreeting(in) {
			t.Errorf("expected %q not to classify as a greeting", in)
		}
	}
}

func TestJobNameLookup(t *testing.T) {
	m := NewMatcher()
	jobs := []string{"Analista de Dados", "Desenvolvedor Front-End", "Engenheiro de Software"}

	match, _, ok := m.BestMatch("analista de dados", jobs, ThresholdJobName)
	if !ok || match != "Analista de Dados" {
		t.Errorf("case-insensitive job match failed, got %q ok=%v", match, ok)
	}

	// Small typo should still clear the 85 cutoff.
	match, _, ok = m.BestMatch("analista de dado", jobs, ThresholdJobName)
	if !ok || match != "Analista de Dados" {
		t.Errorf("near-miss job match failed, got %q ok=%v", match, ok)
	}

	if _, _, ok = m.BestMatch("quero ver as métricas", jobs, ThresholdJobName); ok {
		t.Error("unrelated text must not match a job name")
	}
}

func TestIsListJobsRequest(t *testing.T) {
	m := NewMatcher()
	if !m.IsListJobsRequest("lista de vagas") {
		t.Error("exact keyword should trigger the list-jobs probe")
	}
	if !m.IsListJobsRequest("Mostrar vagas") {
		t.Error("case-insensitive keyword should trigger the list-jobs probe")
	}
	if m.IsListJobsRequest("bom dia") {
		t.Error("greeting must not trigger the list-jobs probe")
	}
	if m.IsListJobsRequest("12345678901") {
		t.Error("CPF must not trigger the list-jobs probe")
	}
}
