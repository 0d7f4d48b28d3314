// Package store defines the persistence interface used by the HR
// assistant along with in-memory, SQLite and PostgreSQL backends.
//
// All lookup methods return (nil, nil) on a miss so callers can branch
// on existence without unwrapping errors. Duplicate candidate inserts
// are classified into ErrDuplicateCPF and ErrDuplicateEmail.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
)

// Duplicate-key classification for candidate inserts.
var (
	ErrDuplicateCPF   = errors.New("candidate with this CPF already exists")
	ErrDuplicateEmail = errors.New("candidate with this email already exists")
)

// Store is the persistence interface for candidates, jobs, knowledge
// base documents and per-user conversation state.
type Store interface {
	FindCandidateByCPF(ctx context.Context, cpf string) (*models.Candidate, error)
	FindCandidateByEmail(ctx context.Context, email string) (*models.Candidate, error)
	FindCandidateByPhone(ctx context.Context, phone string) (*models.Candidate, error)
	CreateCandidate(ctx context.Context, c models.Candidate) error

	ListJobs(ctx context.Context, status models.JobStatus) ([]models.Job, error)
	GetJobByName(ctx context.Context, name string) (*models.Job, error)
	MetricsByJobName(ctx context.Context, name string) ([]models.JobMetric, error)

	ListDocuments(ctx context.Context) ([]models.Document, error)

	GetConversationState(ctx context.Context, userID string) (*models.ConversationState, error)
	SaveConversationState(ctx context.Context, st models.ConversationState) error
	DeleteConversationState(ctx context.Context, userID string) error
	DeleteConversationStatesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

// Opts holds configuration for store construction.
type Opts struct {
	PostgresDSN string
	SQLiteDSN   string
}

// Option configures store construction.
type Option func(*Opts)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.PostgresDSN = dsn }
}

// WithSQLiteDSN sets the SQLite database path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.SQLiteDSN = dsn }
}

// DetectDSNType reports "postgres" for URL-style or key=value DSNs and
// "sqlite" for plain file paths.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore keeps everything in process memory. Used in tests and
// as a fallback when no DSN is configured.
type InMemoryStore struct {
	mu         sync.RWMutex
	candidates []models.Candidate
	jobs       []models.Job
	metrics    map[int64][]models.JobMetric
	documents  []models.Document
	states     map[string]models.ConversationState
	nextID     int64
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		metrics: make(map[int64][]models.JobMetric),
		states:  make(map[string]models.ConversationState),
		nextID:  1,
	}
}

func (s *InMemoryStore) FindCandidateByCPF(_ context.Context, cpf string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.candidates {
		if s.candidates[i].CPF == cpf {
			c := s.candidates[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) FindCandidateByEmail(_ context.Context, email string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.candidates {
		if strings.EqualFold(s.candidates[i].Email, email) {
			c := s.candidates[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) FindCandidateByPhone(_ context.Context, phone string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.candidates {
		if strings.HasSuffix(s.candidates[i].Phone, phone) {
			c := s.candidates[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) CreateCandidate(_ context.Context, c models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.candidates {
		if s.candidates[i].CPF == c.CPF {
			return ErrDuplicateCPF
		}
		if strings.EqualFold(s.candidates[i].Email, c.Email) {
			return ErrDuplicateEmail
		}
	}
	c.ID = s.nextID
	s.nextID++
	s.candidates = append(s.candidates, c)
	return nil
}

func (s *InMemoryStore) ListJobs(_ context.Context, status models.JobStatus) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Job
	for _, j := range s.jobs {
		if status == "" || j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetJobByName(_ context.Context, name string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.jobs {
		if strings.EqualFold(s.jobs[i].Name, name) {
			j := s.jobs[i]
			return &j, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) MetricsByJobName(_ context.Context, name string) ([]models.JobMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.jobs {
		if strings.EqualFold(s.jobs[i].Name, name) {
			return append([]models.JobMetric(nil), s.metrics[s.jobs[i].ID]...), nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) ListDocuments(_ context.Context) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Document(nil), s.documents...), nil
}

func (s *InMemoryStore) GetConversationState(_ context.Context, userID string) (*models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *InMemoryStore) SaveConversationState(_ context.Context, st models.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.UpdatedAt = time.Now()
	if prev, ok := s.states[st.UserID]; ok {
		st.CreatedAt = prev.CreatedAt
	} else if st.CreatedAt.IsZero() {
		st.CreatedAt = st.UpdatedAt
	}
	s.states[st.UserID] = st
	return nil
}

func (s *InMemoryStore) DeleteConversationState(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}

func (s *InMemoryStore) DeleteConversationStatesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, st := range s.states {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.states, id)
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) Close() error { return nil }

// AddJob seeds a job and returns its assigned ID.
func (s *InMemoryStore) AddJob(j models.Job) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID = s.nextID
	s.nextID++
	s.jobs = append(s.jobs, j)
	return j.ID
}

// AddJobMetric seeds a metric row for a job.
func (s *InMemoryStore) AddJobMetric(jobID int64, m models.JobMetric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics[jobID] = append(s.metrics[jobID], m)
}

// AddDocument seeds a knowledge base document.
func (s *InMemoryStore) AddDocument(d models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.nextID
	s.nextID++
	s.documents = append(s.documents, d)
}
