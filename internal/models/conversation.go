// Package models defines conversation state structures for the HR assistant.
package models

import "time"

// PendingStep identifies what the conversation is waiting for from the user.
// A single enumerated field replaces independent awaiting flags so that the
// pending states are mutually exclusive by construction.
type PendingStep string

const (
	// StepNone means no pending step; free-form input goes to the resolver chain.
	StepNone PendingStep = ""
	// StepConfirmation means the bot asked the user to confirm a matched record.
	StepConfirmation PendingStep = "confirmation"
	// StepRegistration means the bot asked for name, CPF, email and phone.
	StepRegistration PendingStep = "registration"
	// StepMenuChoice means the bot displayed the help menu and awaits a choice
	// or, after option 5, a free-text advanced question.
	StepMenuChoice PendingStep = "menu_choice"
	// StepAlternativeLookup means the bot asked for an email or phone number
	// to retry the candidate lookup after a CPF miss.
	StepAlternativeLookup PendingStep = "alternative_lookup"
	// StepReportOffer means the bot showed job details or metrics and asked
	// whether the user wants a PDF report.
	StepReportOffer PendingStep = "report_offer"
)

// IsValidPendingStep checks if the given pending step is supported.
func IsValidPendingStep(s PendingStep) bool {
	switch s {
	case StepNone, StepConfirmation, StepRegistration, StepMenuChoice,
		StepAlternativeLookup, StepReportOffer:
		return true
	default:
		return false
	}
}

// ConversationState is the per-user conversation record. One instance exists
// per canonicalized sender identifier; it is created on first contact and
// mutated by the dispatcher after each turn.
type ConversationState struct {
	UserID    string      `json:"user_id"`
	Greeted   bool        `json:"greeted"`
	Pending   PendingStep `json:"pending"`
	LastCPF   string      `json:"last_cpf,omitempty"`
	LastName  string      `json:"last_name,omitempty"`
	LastEmail string      `json:"last_email,omitempty"`
	LastPhone string      `json:"last_phone,omitempty"`
	LastJob   string      `json:"last_job,omitempty"`
	LastQuery string      `json:"last_query,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RememberCandidate copies the contact fields of a matched candidate into the
// state so later turns (ticket escalation) can use them without a re-lookup.
func (s *ConversationState) RememberCandidate(c Candidate) {
	s.LastCPF = c.CPF
	s.LastName = c.Name
	s.LastEmail = c.Email
	s.LastPhone = c.Phone
}

// ForgetCandidate clears the remembered contact fields.
func (s *ConversationState) ForgetCandidate() {
	s.LastCPF = ""
	s.LastName = ""
	s.LastEmail = ""
	s.LastPhone = ""
}

// IntentAction is the tagged action label returned by the language model when
// rule-based resolution does not apply.
type IntentAction string

const (
	// ActionGreeting is a salutation with no other request.
	ActionGreeting IntentAction = "greeting"
	// ActionProblem is a support problem report.
	ActionProblem IntentAction = "problem"
	// ActionQuestion is a general question.
	ActionQuestion IntentAction = "question"
	// ActionExistingCustomer means the user said they are already a customer.
	ActionExistingCustomer IntentAction = "existing_customer"
	// ActionNewCustomer means the user said they are not a customer yet.
	ActionNewCustomer IntentAction = "new_customer"
	// ActionConfirmID means the user confirmed the matched record is theirs.
	ActionConfirmID IntentAction = "confirm_id"
	// ActionRejectID means the user denied the matched record is theirs.
	ActionRejectID IntentAction = "reject_id"
	// ActionProvideRegistration means the user is sending registration data.
	ActionProvideRegistration IntentAction = "provide_registration"
	// ActionChooseMenuOption means the user picked a help-menu number.
	ActionChooseMenuOption IntentAction = "choose_menu_option"
	// ActionAdvancedQuestion means the user is describing an advanced question.
	ActionAdvancedQuestion IntentAction = "advanced_question"
	// ActionAlternativeContact means the user asked for another contact channel.
	ActionAlternativeContact IntentAction = "alternative_contact"
	// ActionOther is anything that does not fit the labels above.
	ActionOther IntentAction = "other"
)

// IsValidIntentAction checks if the given action label is recognized.
func IsValidIntentAction(a IntentAction) bool {
	switch a {
	case ActionGreeting, ActionProblem, ActionQuestion, ActionExistingCustomer,
		ActionNewCustomer, ActionConfirmID, ActionRejectID,
		ActionProvideRegistration, ActionChooseMenuOption,
		ActionAdvancedQuestion, ActionAlternativeContact, ActionOther:
		return true
	default:
		return false
	}
}

// Intent is the structured payload the language model must return: an action
// label plus the natural-language reply shown to the user.
type Intent struct {
	Action IntentAction `json:"action"`
	Reply  string       `json:"reply"`
}

// Normalize degrades an unrecognized action label to ActionOther instead of
// propagating it untyped.
func (i *Intent) Normalize() {
	if !IsValidIntentAction(i.Action) {
		i.Action = ActionOther
	}
}
