package service

import (
	"context"
	"testing"
	"time"

	"github.com/atinyakov/VeriFlow/internal/models"
	"github.com/atinyakov/VeriFlow/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() (*VerificationService, *repository.MemoryVerificationRepository) {
	repo := repository.NewMemoryVerificationRepository()
	s := NewVerificationService(repo, nil, zap.NewNop())
	return s, repo
}

func TestInitiateCreatesPendingJob(t *testing.T) {
	s, repo := newTestService()

	id, err := s.Initiate(context.Background(), Upload{Name: "front.jpg", MIME: "image/jpeg", Size: 100}, nil, 2048)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	status, err := repo.JobStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status)
}

func TestInitiateRejectHook(t *testing.T) {
	s, repo := newTestService()

	id, err := s.Initiate(context.Background(), Upload{Name: "REJECT-me.png", MIME: "image/png", Size: 100}, nil, 10)
	require.NoError(t, err)

	jobs, err := repo.ActiveJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, id, jobs[0].ID)
	assert.Equal(t, models.StatusRejected, jobs[0].Outcome)
}

func TestProcessOnceProgression(t *testing.T) {
	s, repo := newTestService()
	s.PendingFor = 5 * time.Second
	s.ProcessingFor = 10 * time.Second

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	id, err := s.Initiate(context.Background(), Upload{Name: "front.jpg"}, nil, 1)
	require.NoError(t, err)
	ctx := context.Background()

	// Too early: still pending.
	current = base.Add(2 * time.Second)
	require.NoError(t, s.ProcessOnce(ctx))
	status, _ := repo.JobStatus(ctx, id)
	assert.Equal(t, models.StatusPending, status)

	// Past the pending window: processing.
	current = base.Add(6 * time.Second)
	require.NoError(t, s.ProcessOnce(ctx))
	status, _ = repo.JobStatus(ctx, id)
	assert.Equal(t, models.StatusProcessing, status)

	// Past both windows: terminal outcome.
	current = base.Add(16 * time.Second)
	require.NoError(t, s.ProcessOnce(ctx))
	status, _ = repo.JobStatus(ctx, id)
	assert.Equal(t, models.StatusApproved, status)

	// Terminal jobs are never touched again.
	require.NoError(t, s.ProcessOnce(ctx))
	status, _ = repo.JobStatus(ctx, id)
	assert.Equal(t, models.StatusApproved, status)
}

func TestCreateAccountHashesPassword(t *testing.T) {
	s, _ := newTestService()

	record, err := s.CreateAccount(context.Background(), "a@b.co", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", record.Email)

	// Duplicate emails surface the repository error.
	_, err = s.CreateAccount(context.Background(), "a@b.co", "longenough")
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestCreateAccountPasswordNotStoredPlain(t *testing.T) {
	repo := &capturingRepo{MemoryVerificationRepository: repository.NewMemoryVerificationRepository()}
	s := NewVerificationService(repo, nil, zap.NewNop())

	_, err := s.CreateAccount(context.Background(), "a@b.co", "longenough")
	require.NoError(t, err)
	require.NotEmpty(t, repo.lastHash)
	assert.NotEqual(t, []byte("longenough"), repo.lastHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(repo.lastHash, []byte("longenough")))
}

type capturingRepo struct {
	*repository.MemoryVerificationRepository
	lastHash []byte
}

func (r *capturingRepo) CreateAccount(ctx context.Context, email string, hash []byte) error {
	r.lastHash = hash
	return r.MemoryVerificationRepository.CreateAccount(ctx, email, hash)
}
