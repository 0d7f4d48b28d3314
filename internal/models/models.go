// Package models defines the core data structures for the HR assistant.
//
// It includes types for candidates, job postings, support tickets and
// message envelopes, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// Error variables for better error handling and testability
var (
	ErrEmptyRecipient = errors.New("recipient cannot be empty")
	ErrEmptyBody      = errors.New("message body cannot be empty")
)

// Candidate represents a registered candidate record owned by the database.
type Candidate struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// JobStatus represents the open/closed status of a job posting.
type JobStatus string

const (
	// JobStatusOpen indicates the posting is accepting applications.
	JobStatusOpen JobStatus = "open"
	// JobStatusClosed indicates the posting is closed.
	JobStatusClosed JobStatus = "closed"
)

// Job represents a job posting. Read-only from the bot's perspective.
type Job struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Salary       float64   `json:"salary"`
	Openings     int       `json:"openings"`
	Status       JobStatus `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// JobMetric holds one measurement row for a job posting.
type JobMetric struct {
	Views                 int       `json:"views"`
	ApplicationsStarted   int       `json:"applications_started"`
	ApplicationsCompleted int       `json:"applications_completed"`
	Dropouts              int       `json:"dropouts"`
	CreatedAt             time.Time `json:"created_at"`
}

// Document is one retrievable article for the RAG answering pipeline.
// Embeddings are produced offline and stored alongside the content.
type Document struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Embedding []float64 `json:"embedding,omitempty"`
}

// Ticket is a support-escalation record emailed to a human queue when
// automated answering fails.
type Ticket struct {
	Protocol  string    `json:"protocol"`
	Subject   string    `json:"subject"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CPF       string    `json:"cpf"`
	LastQuery string    `json:"last_query"`
	OpenedAt  time.Time `json:"opened_at"`
}

// MessageStatus represents the delivery status of a message.
type MessageStatus string

const (
	// MessageStatusSent indicates the message was sent.
	MessageStatusSent MessageStatus = "sent"
	// MessageStatusDelivered indicates the message was delivered.
	MessageStatusDelivered MessageStatus = "delivered"
	// MessageStatusRead indicates the message was read.
	MessageStatusRead MessageStatus = "read"
	// MessageStatusFailed indicates the message failed to send.
	MessageStatusFailed MessageStatus = "failed"
)

// Receipt records the delivery status of an outbound message.
type Receipt struct {
	To     string        `json:"to"`
	Status MessageStatus `json:"status"`
	Time   int64         `json:"time"`
}

// Response represents an incoming message from a participant.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
