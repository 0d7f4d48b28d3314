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

	_ "github.com/mattn/go-sqlite3"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"

	_ "embed"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore implements Store backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at the DSN
// given via WithSQLiteDSN and applies the schema migrations.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.SQLiteDSN == "" {
		return nil, fmt.Errorf("sqlite DSN required")
	}
	db, err := sql.Open("sqlite3", cfg.SQLiteDSN+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		slog.Error("SQLiteStore failed to open database", "dsn", cfg.SQLiteDSN, "error", err)
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		db.Close()
		slog.Error("SQLiteStore failed to apply migrations", "error", err)
		return nil, fmt.Errorf("failed to apply sqlite migrations: %w", err)
	}
	slog.Info("SQLiteStore opened", "dsn", cfg.SQLiteDSN)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) scanCandidate(row *sql.Row) (*models.Candidate, error) {
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

func (s *SQLiteStore) FindCandidateByCPF(ctx context.Context, cpf string) (*models.Candidate, error) {
	slog.Debug("SQLiteStore FindCandidateByCPF", "cpf", cpf)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, cpf, email, phone FROM candidates WHERE cpf = ?`, cpf)
	return s.scanCandidate(row)
}

func (s *SQLiteStore) FindCandidateByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	slog.Debug("SQLiteStore FindCandidateByEmail", "email", email)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, cpf, email, phone FROM candidates WHERE LOWER(email) = LOWER(?)`, email)
	return s.scanCandidate(row)
}

func (s *SQLiteStore) FindCandidateByPhone(ctx context.Context, phone string) (*models.Candidate, error) {
	slog.Debug("SQLiteStore FindCandidateByPhone", "phone", phone)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, cpf, email, phone FROM candidates WHERE phone LIKE '%' || ?`, phone)
	return s.scanCandidate(row)
}

func (s *SQLiteStore) CreateCandidate(ctx context.Context, c models.Candidate) error {
	slog.Debug("SQLiteStore CreateCandidate", "cpf", c.CPF, "email", c.Email)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO candidates (name, cpf, email, phone) VALUES (?, ?, ?, ?)`,
		c.Name, c.CPF, c.Email, c.Phone)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "candidates.cpf"):
			return ErrDuplicateCPF
		case strings.Contains(msg, "candidates.email"):
			return ErrDuplicateEmail
		}
		slog.Error("SQLiteStore failed to insert candidate", "error", err)
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListJobs(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	slog.Debug("SQLiteStore ListJobs", "status", status)
	query := `SELECT id, name, description, requirements, salary, openings, status, created_at FROM jobs`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
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

func (s *SQLiteStore) GetJobByName(ctx context.Context, name string) (*models.Job, error) {
	slog.Debug("SQLiteStore GetJobByName", "name", name)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, requirements, salary, openings, status, created_at
		 FROM jobs WHERE LOWER(name) = LOWER(?)`, name)
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

func (s *SQLiteStore) MetricsByJobName(ctx context.Context, name string) ([]models.JobMetric, error) {
	slog.Debug("SQLiteStore MetricsByJobName", "name", name)
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.views, m.applications_started, m.applications_completed, m.dropouts, m.created_at
		 FROM job_metrics m JOIN jobs j ON j.id = m.job_id
		 WHERE LOWER(j.name) = LOWER(?) ORDER BY m.created_at`, name)
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

func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]models.Document, error) {
	slog.Debug("SQLiteStore ListDocuments")
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

func (s *SQLiteStore) GetConversationState(ctx context.Context, userID string) (*models.ConversationState, error) {
	slog.Debug("SQLiteStore GetConversationState", "userID", userID)
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, greeted, pending, last_cpf, last_name, last_email, last_phone, last_job, last_query, created_at, updated_at
		 FROM conversation_states WHERE user_id = ?`, userID)
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

func (s *SQLiteStore) SaveConversationState(ctx context.Context, st models.ConversationState) error {
	slog.Debug("SQLiteStore SaveConversationState", "userID", st.UserID, "pending", st.Pending)
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_states
		   (user_id, greeted, pending, last_cpf, last_name, last_email, last_phone, last_job, last_query, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   greeted = excluded.greeted,
		   pending = excluded.pending,
		   last_cpf = excluded.last_cpf,
		   last_name = excluded.last_name,
		   last_email = excluded.last_email,
		   last_phone = excluded.last_phone,
		   last_job = excluded.last_job,
		   last_query = excluded.last_query,
		   updated_at = excluded.updated_at`,
		st.UserID, st.Greeted, string(st.Pending), st.LastCPF, st.LastName, st.LastEmail, st.LastPhone, st.LastJob, st.LastQuery, now, now)
	if err != nil {
		slog.Error("SQLiteStore failed to save conversation state", "userID", st.UserID, "error", err)
		return fmt.Errorf("failed to save conversation state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteConversationState(ctx context.Context, userID string) error {
	slog.Debug("SQLiteStore DeleteConversationState", "userID", userID)
	_, err := s.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteConversationStatesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire conversation states: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired conversation states: %w", err)
	}
	if n > 0 {
		slog.Info("SQLiteStore expired conversation states", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
