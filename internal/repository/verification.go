// Package repository provides persistence implementations for the dev
// verification backend.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/VeriFlow/internal/models"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a verification job does not exist.
var ErrNotFound = errors.New("verification job not found")

// ErrDuplicateEmail is returned when an account email is already taken.
var ErrDuplicateEmail = errors.New("email already exists")

// PostgresVerificationRepository implements job persistence against a
// PostgreSQL database.
type PostgresVerificationRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresVerificationRepository creates a repository using the given
// database connection.
func NewPostgresVerificationRepository(db *sql.DB) *PostgresVerificationRepository {
	return &PostgresVerificationRepository{DB: db}
}

// CreateJob inserts a new verification job.
func (r *PostgresVerificationRepository) CreateJob(ctx context.Context, job models.JobRecord) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO verification_jobs (id, status, outcome, document_front, document_back, selfie_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, job.ID, job.Status, job.Outcome, job.DocumentFront, job.DocumentBack, job.SelfieSize, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreateJob: %w", err)
	}
	return nil
}

// JobStatus returns the status of one job, or ErrNotFound.
func (r *PostgresVerificationRepository) JobStatus(ctx context.Context, id string) (models.Status, error) {
	var status models.Status
	err := r.DB.QueryRowContext(ctx,
		`SELECT status FROM verification_jobs WHERE id = $1`, id,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("JobStatus: %w", err)
	}
	return status, nil
}

// UpdateStatus moves a job to a new status.
func (r *PostgresVerificationRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE verification_jobs SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveJobs returns all jobs that have not reached a terminal status.
func (r *PostgresVerificationRepository) ActiveJobs(ctx context.Context) ([]models.JobRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, status, outcome, document_front, document_back, selfie_size, created_at
		  FROM verification_jobs
		 WHERE status IN ('PENDING', 'PROCESSING')
	`)
	if err != nil {
		return nil, fmt.Errorf("ActiveJobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.JobRecord
	for rows.Next() {
		var j models.JobRecord
		if err := rows.Scan(&j.ID, &j.Status, &j.Outcome, &j.DocumentFront, &j.DocumentBack, &j.SelfieSize, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CreateAccount stores a new account with a hashed password. Returns
// ErrDuplicateEmail when the email is already registered.
func (r *PostgresVerificationRepository) CreateAccount(ctx context.Context, email string, passwordHash []byte) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO accounts (email, password_hash) VALUES ($1, $2)`, email, passwordHash)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("CreateAccount: %w", err)
	}
	return nil
}
