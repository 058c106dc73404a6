// Package wizard drives the identity-verification flow: six steps from
// document upload to a created account, with status polling against the
// backend in between.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atinyakov/VeriFlow/internal/client/api"
	"github.com/atinyakov/VeriFlow/internal/models"
	"go.uber.org/zap"
)

// Step is the currently active wizard step. Transitions are
// unidirectional except for explicit failure resets.
type Step string

const (
	StepDocument   Step = "document"
	StepSelfie     Step = "selfie"
	StepSubmitting Step = "submitting"
	StepStatus     Step = "status"
	StepAccount    Step = "account"
	StepFinished   Step = "finished"
)

// ErrMissingDocuments is returned when a selfie is submitted before any
// documents were selected.
var ErrMissingDocuments = errors.New("document files are missing")

// ErrWrongStep is returned when an operation is invoked outside the
// step it belongs to.
var ErrWrongStep = errors.New("operation not valid for current step")

// Config carries the options the wizard recognizes.
type Config struct {
	// APIBaseURL is the verification backend base URL.
	APIBaseURL string
}

// Backend is the remote verification API the wizard talks to.
type Backend interface {
	Initiate(ctx context.Context, docs models.DocumentBundle, selfie []byte) (string, error)
	Status(ctx context.Context, verificationID string) (models.Status, error)
	CreateAccount(ctx context.Context, email, password string) (models.AccountRecord, error)
}

// Wizard owns the step machine and all cross-step data: the selected
// documents, the verification job, the last user-facing error, and the
// created account. Poller callbacks and direct calls serialize on one
// mutex.
type Wizard struct {
	mu      sync.Mutex
	cfg     Config
	backend Backend
	log     *zap.Logger

	step    Step
	docs    *models.DocumentBundle
	job     *models.VerificationJob
	account *models.AccountRecord
	errMsg  string
	poller  *StatusPoller
}

// New creates a Wizard at the document step.
func New(cfg Config, backend Backend, log *zap.Logger) *Wizard {
	return &Wizard{cfg: cfg, backend: backend, log: log, step: StepDocument}
}

// Step returns the active step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// ErrMessage returns the last user-facing error message, if any.
func (w *Wizard) ErrMessage() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// Job returns the current verification job and whether one exists.
func (w *Wizard) Job() (models.VerificationJob, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.job == nil {
		return models.VerificationJob{}, false
	}
	return *w.job, true
}

// Account returns the created account record and whether one exists.
func (w *Wizard) Account() (models.AccountRecord, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.account == nil {
		return models.AccountRecord{}, false
	}
	return *w.account, true
}

// SelectDocuments validates and stores the document bundle and advances
// document → selfie.
func (w *Wizard) SelectDocuments(bundle models.DocumentBundle) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepDocument {
		return ErrWrongStep
	}
	if msg := ValidateBundle(bundle); msg != "" {
		w.errMsg = msg
		return fmt.Errorf("invalid documents: %s", msg)
	}

	w.docs = &bundle
	w.errMsg = ""
	w.step = StepSelfie
	w.log.Info("documents selected",
		zap.String("front", bundle.Front.Name), zap.Bool("has_back", bundle.Back != nil))
	return nil
}

// SubmitSelfie performs the one-shot submission of documents plus
// selfie. Requires documents; without them it fails with
// ErrMissingDocuments and forces the step back to document. On backend
// failure the wizard returns to the selfie step (documents stay valid).
func (w *Wizard) SubmitSelfie(ctx context.Context, selfie []byte) error {
	w.mu.Lock()
	if w.docs == nil {
		w.errMsg = "Document files are missing. Please go back and upload them."
		w.step = StepDocument
		w.mu.Unlock()
		return ErrMissingDocuments
	}
	docs := *w.docs
	w.errMsg = ""
	w.step = StepSubmitting
	w.mu.Unlock()

	id, err := w.backend.Initiate(ctx, docs, selfie)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.errMsg = submissionErrorMessage(err)
		w.step = StepSelfie
		w.log.Warn("submission failed", zap.Error(err))
		return err
	}

	w.job = &models.VerificationJob{ID: id, Status: models.StatusPending}
	w.step = StepStatus
	w.log.Info("verification initiated", zap.String("verification_id", id))
	return nil
}

// Resume restores a previously submitted job into a fresh wizard and
// jumps straight to the status step. Terminal jobs cannot be resumed.
func (w *Wizard) Resume(job models.VerificationJob) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepDocument {
		return ErrWrongStep
	}
	if job.ID == "" || job.Status.Terminal() {
		return fmt.Errorf("job %q is not resumable", job.ID)
	}

	w.job = &job
	w.errMsg = ""
	w.step = StepStatus
	w.log.Info("resumed verification", zap.String("verification_id", job.ID))
	return nil
}

// StartPolling creates and starts the status poller for the current
// job, wired to OnVerified and OnFailed. Only valid on the status step.
func (w *Wizard) StartPolling(ctx context.Context) (*StatusPoller, error) {
	w.mu.Lock()
	if w.step != StepStatus || w.job == nil {
		w.mu.Unlock()
		return nil, ErrWrongStep
	}
	id, initial := w.job.ID, w.job.Status
	w.mu.Unlock()

	p := NewStatusPoller(w.backend, id, initial, w.OnVerified, w.OnFailed, w.log)

	w.mu.Lock()
	w.poller = p
	w.mu.Unlock()

	p.Start(ctx)
	return p, nil
}

// OnVerified advances status → account after an APPROVED status.
func (w *Wizard) OnVerified() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.errMsg = ""
	if w.step == StepStatus {
		if w.job != nil {
			w.job.Status = models.StatusApproved
		}
		w.step = StepAccount
		w.log.Info("verification approved")
	}
}

// OnFailed handles a terminal non-approved status: records a
// reason-specific message and performs a full reset back to the
// document step, discarding documents and job state.
func (w *Wizard) OnFailed(reason models.Status) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.errMsg = failureMessage(reason)
	w.resetLocked()
	w.log.Warn("verification failed", zap.String("reason", string(reason)))
}

// CompleteAccount validates the account form, creates the account, and
// advances account → finished.
func (w *Wizard) CompleteAccount(ctx context.Context, form AccountForm) error {
	w.mu.Lock()
	if w.step != StepAccount {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if msg := form.Validate(); msg != "" {
		w.errMsg = msg
		w.mu.Unlock()
		return fmt.Errorf("invalid account form: %s", msg)
	}
	w.mu.Unlock()

	record, err := w.backend.CreateAccount(ctx, form.Email, form.Password)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.errMsg = accountErrorMessage(err)
		w.log.Warn("account creation failed", zap.Error(err))
		return err
	}

	w.account = &record
	w.errMsg = ""
	w.step = StepFinished
	w.log.Info("account created", zap.String("email", record.Email))
	return nil
}

// Reset discards all wizard state and returns to the document step.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errMsg = ""
	w.resetLocked()
}

func (w *Wizard) resetLocked() {
	if w.poller != nil {
		// Safe while holding w.mu: the poller releases its own lock
		// before invoking callbacks.
		w.poller.Stop()
		w.poller = nil
	}
	w.docs = nil
	w.job = nil
	w.account = nil
	w.step = StepDocument
}

func submissionErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind == api.KindTimeout {
			return "Submission timed out. Please check your connection and try again."
		}
		return "Submission failed: " + apiErr.Reason()
	}
	return "Submission failed. Please check your connection and try again."
}

func failureMessage(reason models.Status) string {
	switch reason {
	case models.StatusRejected:
		return "Verification Rejected. The document or selfie could not be accepted. Please contact support for more details."
	case models.StatusExpired:
		return "This verification attempt has expired. Please start over."
	case models.StatusError, models.StatusFailed:
		return "A technical error occurred during verification. Please try again later or contact support."
	default:
		return fmt.Sprintf("Verification Failed (%s). Please ensure your document and selfie are clear and try again. If the problem persists, contact support.", reason)
	}
}

func accountErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind == api.KindBackendMessage &&
			strings.Contains(strings.ToLower(apiErr.Message), "email already exists") {
			return "This email address is already registered. Please use a different email."
		}
		return "Account setup failed: " + apiErr.Reason()
	}
	return "Account setup failed. Please try again later."
}

// StatusMessage renders the status-step progress line for a given job
// status.
func StatusMessage(s models.Status) string {
	switch s {
	case models.StatusPending:
		return "Verification submitted. We are checking your documents..."
	case models.StatusProcessing:
		return "Processing your verification, please wait..."
	case models.StatusApproved:
		return "Verification Successful! Proceeding to account setup..."
	case models.StatusRejected:
		return "Verification Rejected. The provided document or selfie could not be accepted. Please contact support if you believe this is an error."
	case models.StatusFailed:
		return "Verification Failed due to a technical issue or invalid data. Please try again or contact support."
	case models.StatusExpired:
		return "This verification attempt has expired. Please start the process again."
	case models.StatusError:
		return "An unexpected error occurred during verification. Please contact support."
	default:
		return "Checking verification status..."
	}
}
