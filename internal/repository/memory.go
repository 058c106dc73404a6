package repository

import (
	"context"
	"sync"

	"github.com/atinyakov/VeriFlow/internal/models"
)

// MemoryVerificationRepository keeps jobs and accounts in process
// memory. It backs the dev server when no database is configured and
// keeps the service layer testable.
type MemoryVerificationRepository struct {
	mu       sync.RWMutex
	jobs     map[string]models.JobRecord
	accounts map[string][]byte
}

// NewMemoryVerificationRepository creates an empty in-memory repository.
func NewMemoryVerificationRepository() *MemoryVerificationRepository {
	return &MemoryVerificationRepository{
		jobs:     make(map[string]models.JobRecord),
		accounts: make(map[string][]byte),
	}
}

func (r *MemoryVerificationRepository) CreateJob(_ context.Context, job models.JobRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryVerificationRepository) JobStatus(_ context.Context, id string) (models.Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return "", ErrNotFound
	}
	return job.Status, nil
}

func (r *MemoryVerificationRepository) UpdateStatus(_ context.Context, id string, status models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.Status = status
	r.jobs[id] = job
	return nil
}

func (r *MemoryVerificationRepository) ActiveJobs(_ context.Context) ([]models.JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var jobs []models.JobRecord
	for _, job := range r.jobs {
		if !job.Status.Terminal() {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (r *MemoryVerificationRepository) CreateAccount(_ context.Context, email string, passwordHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[email]; exists {
		return ErrDuplicateEmail
	}
	r.accounts[email] = passwordHash
	return nil
}
