package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"

	_ "embed"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL using the DSN given via
// WithPostgresDSN and applies the schema migrations.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres DSN required")
	}
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		slog.Error("PostgresStore failed to open database", "error", err)
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		slog.Error("PostgresStore failed to connect", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		db.Close()
		slog.Error("PostgresStore failed to apply migrations", "error", err)
		return nil, fmt.Errorf("failed to apply postgres migrations: %w", err)
	}
	slog.Info("PostgresStore connected")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) scanCandidate(row *sql.Row) (*models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.Name, &c.CPF, &c.Email, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidate: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) FindCandidateByCPF(ctx context.Context, cpf string) (*models.Candidate, error) {
	slog.Debug("PostgresStore FindCandidateByCPF", "cpf", cpf)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, cpf, email, phone FROM candidates WHERE cpf = $1`, cpf)
	return s.scanCandidate(row)
}

func (s *PostgresStore) FindCandidateByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	slog.Debug("PostgresStore FindCandidateByEmail", "email", email)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, cpf, email, phone FROM candidates WHERE LOWER(email) = LOWER($1)`, email)
	return s.scanCandidate(row)
}

func (s *PostgresStore) FindCandidateByPhone(ctx context.Context, phone string) (*models.Candidate, error) {
	slog.Debug("PostgresStore FindCandidateByPhone", "phone", phone)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, cpf, email, phone FROM candidates WHERE phone LIKE '%' || $1`, phone)
	return s.scanCandidate(row)
}

func (s *PostgresStore) CreateCandidate(ctx context.Context, c models.Candidate) error {
	slog.Debug("PostgresStore CreateCandidate", "cpf", c.CPF, "email", c.Email)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO candidates (name, cpf, email, phone) VALUES ($1, $2, $3, $4)`,
		c.Name, c.CPF, c.Email, c.Phone)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if strings.Contains(pqErr.Constraint, "email") {
				return ErrDuplicateEmail
			}
			return ErrDuplicateCPF
		}
		slog.Error("PostgresStore failed to insert candidate", "error", err)
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	slog.Debug("PostgresStore ListJobs", "status", status)
	query := `SELECT id, name, description, requirements, salary, openings, status, created_at FROM jobs`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()
	var jobs []models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.Name, &j.Description, &j.Requirements, &j.Salary, &j.Openings, &j.Status, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) GetJobByName(ctx context.Context, name string) (*models.Job, error) {
	slog.Debug("PostgresStore GetJobByName", "name", name)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, requirements, salary, openings, status, created_at
		 FROM jobs WHERE LOWER(name) = LOWER($1)`, name)
	var j models.Job
	err := row.Scan(&j.ID, &j.Name, &j.Description, &j.Requirements, &j.Salary, &j.Openings, &j.Status, &j.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	return &j, nil
}

func (s *PostgresStore) MetricsByJobName(ctx context.Context, name string) ([]models.JobMetric, error) {
	slog.Debug("PostgresStore MetricsByJobName", "name", name)
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.views, m.applications_started, m.applications_completed, m.dropouts, m.created_at
		 FROM job_metrics m JOIN jobs j ON j.id = m.job_id
		 WHERE LOWER(j.name) = LOWER($1) ORDER BY m.created_at`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query job metrics: %w", err)
	}
	defer rows.Close()
	var metrics []models.JobMetric
	for rows.Next() {
		var m models.JobMetric
		if err := rows.Scan(&m.Views, &m.ApplicationsStarted, &m.ApplicationsCompleted, &m.Dropouts, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

func (s *PostgresStore) ListDocuments(ctx context.Context) ([]models.Document, error) {
	slog.Debug("PostgresStore ListDocuments")
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, content, embedding FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()
	var docs []models.Document
	for rows.Next() {
		var d models.Document
		var raw string
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &d.Embedding); err != nil {
				return nil, fmt.Errorf("failed to decode document embedding: %w", err)
			}
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) GetConversationState(ctx context.Context, userID string) (*models.ConversationState, error) {
	slog.Debug("PostgresStore GetConversationState", "userID", userID)
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, greeted, pending, last_cpf, last_name, last_email, last_phone, last_job, last_query, created_at, updated_at
		 FROM conversation_states WHERE user_id = $1`, userID)
	var st models.ConversationState
	var pending string
	err := row.Scan(&st.UserID, &st.Greeted, &pending, &st.LastCPF, &st.LastName, &st.LastEmail, &st.LastPhone, &st.LastJob, &st.LastQuery, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversation state: %w", err)
	}
	st.Pending = models.PendingStep(pending)
	return &st, nil
}

func (s *PostgresStore) SaveConversationState(ctx context.Context, st models.ConversationState) error {
	slog.Debug("PostgresStore SaveConversationState", "userID", st.UserID, "pending", st.Pending)
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_states
		   (user_id, greeted, pending, last_cpf, last_name, last_email, last_phone, last_job, last_query, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (user_id) DO UPDATE SET
		   greeted = EXCLUDED.greeted,
		   pending = EXCLUDED.pending,
		   last_cpf = EXCLUDED.last_cpf,
		   last_name = EXCLUDED.last_name,
		   last_email = EXCLUDED.last_email,
		   last_phone = EXCLUDED.last_phone,
		   last_job = EXCLUDED.last_job,
		   last_query = EXCLUDED.last_query,
		   updated_at = EXCLUDED.updated_at`,
		st.UserID, st.Greeted, string(st.Pending), st.LastCPF, st.LastName, st.LastEmail, st.LastPhone, st.LastJob, st.LastQuery, now, now)
	if err != nil {
		slog.Error("PostgresStore failed to save conversation state", "userID", st.UserID, "error", err)
		return fmt.Errorf("failed to save conversation state: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteConversationState(ctx context.Context, userID string) error {
	slog.Debug("PostgresStore DeleteConversationState", "userID", userID)
	_, err := s.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation state: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteConversationStatesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire conversation states: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired conversation states: %w", err)
	}
	if n > 0 {
		slog.Info("PostgresStore expired conversation states", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
