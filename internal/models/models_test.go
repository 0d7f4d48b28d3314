package models

import "testing"

func TestIsValidPendingStep(t *testing.T) {
	valid := []PendingStep{StepNone, StepConfirmation, StepRegistration, StepMenuChoice, StepAlternativeLookup, StepReportOffer}
	for _, s := range valid {
		if !IsValidPendingStep(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if IsValidPendingStep("awaiting_everything") {
		t.Error("unknown step should not be valid")
	}
}

func TestIntentNormalize(t *testing.T) {
	i := Intent{Action: "escolher_sac", Reply: "ok"}
	i.Normalize()
	if i.Action != ActionOther {
		t.Errorf("unrecognized action should degrade to other, got %q", i.Action)
	}
	if i.Reply != "ok" {
		t.Error("normalize must not touch the reply text")
	}

	j := Intent{Action: ActionConfirmID}
	j.Normalize()
	if j.Action != ActionConfirmID {
		t.Errorf("valid action must be preserved, got %q", j.Action)
	}
}

func TestRememberAndForgetCandidate(t *testing.T) {
	var s ConversationState
	s.RememberCandidate(Candidate{Name: "Ana", CPF: "12345678901", Email: "ana@example.com", Phone: "31987654321"})
	if s.LastCPF != "12345678901" || s.LastName != "Ana" || s.LastEmail != "ana@example.com" || s.LastPhone != "31987654321" {
		t.Errorf("candidate fields not copied: %+v", s)
	}
	s.ForgetCandidate()
	if s.LastCPF != "" || s.LastName != "" || s.LastEmail != "" || s.LastPhone != "" {
		t.Errorf("candidate fields not cleared: %+v", s)
	}
}
