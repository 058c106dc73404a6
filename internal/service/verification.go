// Package service implements the dev backend's verification business
// logic: job creation, simulated status progression, and account
// creation. Outcomes are simulated; no biometric matching happens here.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/atinyakov/VeriFlow/internal/metrics"
	"github.com/atinyakov/VeriFlow/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// VerificationRepository defines the persistence operations required by
// the verification service.
type VerificationRepository interface {
	// CreateJob stores a newly submitted job.
	CreateJob(ctx context.Context, job models.JobRecord) error
	// JobStatus returns a job's current status.
	JobStatus(ctx context.Context, id string) (models.Status, error)
	// UpdateStatus moves a job to a new status.
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	// ActiveJobs lists jobs that have not reached a terminal status.
	ActiveJobs(ctx context.Context) ([]models.JobRecord, error)
	// CreateAccount stores account credentials.
	CreateAccount(ctx context.Context, email string, passwordHash []byte) error
}

// Upload describes one submitted file. The dev backend keeps names and
// sizes, never the image payloads.
type Upload struct {
	Name string
	MIME string
	Size int64
}

// VerificationService owns job and account operations.
type VerificationService struct {
	// PendingFor is how long a job stays PENDING before processing.
	PendingFor time.Duration
	// ProcessingFor is how long PROCESSING lasts before the outcome.
	ProcessingFor time.Duration

	repo    VerificationRepository
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

// NewVerificationService constructs a VerificationService with default
// simulation timings.
func NewVerificationService(repo VerificationRepository, m *metrics.Metrics, log *zap.Logger) *VerificationService {
	return &VerificationService{
		PendingFor:    5 * time.Second,
		ProcessingFor: 10 * time.Second,
		repo:          repo,
		metrics:       m,
		log:           log,
		now:           time.Now,
	}
}

// Initiate creates a PENDING job and returns its id. A front document
// whose filename contains "reject" yields a REJECTED outcome once
// processing finishes, a dev hook for exercising failure paths.
func (s *VerificationService) Initiate(ctx context.Context, front Upload, back *Upload, selfieSize int64) (string, error) {
	outcome := models.StatusApproved
	if strings.Contains(strings.ToLower(front.Name), "reject") {
		outcome = models.StatusRejected
	}

	job := models.JobRecord{
		ID:            uuid.NewString(),
		Status:        models.StatusPending,
		Outcome:       outcome,
		DocumentFront: front.Name,
		SelfieSize:    selfieSize,
		CreatedAt:     s.now(),
	}
	if back != nil {
		job.DocumentBack = back.Name
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return "", err
	}

	s.metrics.IncrementSubmissions()
	s.log.Info("verification job created",
		zap.String("verification_id", job.ID),
		zap.String("document_front", front.Name),
		zap.Bool("has_back", back != nil))
	return job.ID, nil
}

// JobStatus returns a job's current status.
func (s *VerificationService) JobStatus(ctx context.Context, id string) (models.Status, error) {
	return s.repo.JobStatus(ctx, id)
}

// CreateAccount hashes the password and stores the account, returning
// the created record.
func (s *VerificationService) CreateAccount(ctx context.Context, email, password string) (models.AccountRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.AccountRecord{}, err
	}
	if err := s.repo.CreateAccount(ctx, email, hash); err != nil {
		return models.AccountRecord{}, err
	}
	s.log.Info("account created", zap.String("email", email))
	return models.AccountRecord{Email: email}, nil
}

// StartProcessor advances active jobs on an interval until ctx is
// cancelled.
func (s *VerificationService) StartProcessor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.ProcessOnce(ctx); err != nil {
					s.log.Error("job processing pass failed", zap.Error(err))
				}
			}
		}
	}()
}

// ProcessOnce runs one progression pass: jobs older than PendingFor
// move to PROCESSING, jobs older than PendingFor+ProcessingFor reach
// their simulated outcome.
func (s *VerificationService) ProcessOnce(ctx context.Context) error {
	jobs, err := s.repo.ActiveJobs(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	for _, job := range jobs {
		age := now.Sub(job.CreatedAt)
		switch {
		case age >= s.PendingFor+s.ProcessingFor:
			if err := s.repo.UpdateStatus(ctx, job.ID, job.Outcome); err != nil {
				return err
			}
			s.metrics.IncrementOutcome(string(job.Outcome))
			s.metrics.ObserveProcessing(age)
			s.log.Info("verification finished",
				zap.String("verification_id", job.ID), zap.String("outcome", string(job.Outcome)))
		case job.Status == models.StatusPending && age >= s.PendingFor:
			if err := s.repo.UpdateStatus(ctx, job.ID, models.StatusProcessing); err != nil {
				return err
			}
			s.log.Debug("verification processing", zap.String("verification_id", job.ID))
		}
	}
	return nil
}
