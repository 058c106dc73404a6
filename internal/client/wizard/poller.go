package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/atinyakov/VeriFlow/internal/client/api"
	"github.com/atinyakov/VeriFlow/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultPollInterval is the delay between status queries.
	DefaultPollInterval = 5 * time.Second
	// DefaultMaxAttempts caps polling at 24 queries (a two-minute window).
	DefaultMaxAttempts = 24
)

const exhaustedMessage = "Verification is taking longer than expected. Please check back later or contact support."

// StatusQuerier fetches the current status of a verification job.
type StatusQuerier interface {
	Status(ctx context.Context, verificationID string) (models.Status, error)
}

type pollState int

const (
	pollIdle pollState = iota
	pollPolling
	pollStopped
)

// StatusPoller repeatedly queries one verification job until a terminal
// status is observed, the attempt cap is reached, or it is stopped.
//
// Exactly one query is in flight at a time: the first query fires
// immediately on Start, subsequent ones on interval ticks, all from a
// single goroutine. Transient query failures are recorded but do not
// stop polling. When the attempt cap is reached the poller stops
// without invoking either callback, leaving the job nominally pending.
type StatusPoller struct {
	// Interval and MaxAttempts may be overridden before Start.
	Interval    time.Duration
	MaxAttempts int

	querier    StatusQuerier
	id         string
	onVerified func()
	onFailed   func(models.Status)
	log        *zap.Logger

	mu       sync.Mutex
	state    pollState
	status   models.Status
	attempts int
	lastErr  string
	cancel   context.CancelFunc

	done chan struct{}
}

// NewStatusPoller builds a poller for the given job. initial is the
// last known status; a terminal initial status keeps the poller from
// ever starting.
func NewStatusPoller(querier StatusQuerier, verificationID string, initial models.Status, onVerified func(), onFailed func(models.Status), log *zap.Logger) *StatusPoller {
	return &StatusPoller{
		Interval:    DefaultPollInterval,
		MaxAttempts: DefaultMaxAttempts,
		querier:     querier,
		id:          verificationID,
		status:      initial,
		onVerified:  onVerified,
		onFailed:    onFailed,
		log:         log,
		done:        make(chan struct{}),
	}
}

// Start begins polling. It is a no-op if the poller already ran or the
// initial status is terminal.
func (p *StatusPoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.state != pollIdle || p.status.Terminal() {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = pollPolling
	p.mu.Unlock()

	p.log.Info("starting status polling", zap.String("verification_id", p.id))

	go func() {
		defer close(p.done)
		defer cancel()
		if !p.query(ctx) {
			return
		}
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				p.markStopped()
				return
			case <-ticker.C:
				if !p.query(ctx) {
					return
				}
			}
		}
	}()
}

// query performs one polling attempt and reports whether polling should
// continue.
func (p *StatusPoller) query(ctx context.Context) bool {
	p.mu.Lock()
	if p.state != pollPolling {
		p.mu.Unlock()
		return false
	}
	if p.attempts >= p.MaxAttempts {
		p.state = pollStopped
		p.lastErr = exhaustedMessage
		p.mu.Unlock()
		p.log.Warn("polling stopped after reaching max attempts",
			zap.String("verification_id", p.id), zap.Int("attempts", p.MaxAttempts))
		return false
	}
	p.attempts++
	attempt := p.attempts
	p.mu.Unlock()

	p.log.Debug("checking verification status",
		zap.String("verification_id", p.id), zap.Int("attempt", attempt))

	status, err := p.querier.Status(ctx, p.id)

	p.mu.Lock()
	if p.state != pollPolling {
		// Stopped while the query was in flight: discard the response.
		p.mu.Unlock()
		return false
	}
	if err != nil {
		p.lastErr = pollErrorMessage(err)
		p.mu.Unlock()
		p.log.Warn("status query failed", zap.String("verification_id", p.id), zap.Error(err))
		return true
	}
	p.lastErr = ""
	if status != p.status {
		p.status = status
	}

	switch {
	case status == models.StatusApproved:
		p.state = pollStopped
		cb := p.onVerified
		p.mu.Unlock()
		cb()
		return false
	case status.Terminal():
		p.state = pollStopped
		cb := p.onFailed
		p.mu.Unlock()
		cb(status)
		return false
	default:
		p.mu.Unlock()
		return true
	}
}

// Stop cancels polling. Idempotent; any response that arrives after
// Stop is discarded without invoking callbacks.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	if p.state == pollStopped {
		p.mu.Unlock()
		return
	}
	started := p.state == pollPolling
	p.state = pollStopped
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if !started {
		// Never started: nothing will close done.
		close(p.done)
	}
}

func (p *StatusPoller) markStopped() {
	p.mu.Lock()
	p.state = pollStopped
	p.mu.Unlock()
}

// Status returns the last known job status.
func (p *StatusPoller) Status() models.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Attempts returns how many queries have been issued.
func (p *StatusPoller) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

// Message returns the current advisory message: a transient query
// failure or the attempt-exhaustion notice. Empty when all is well.
func (p *StatusPoller) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Done is closed once polling has fully finished.
func (p *StatusPoller) Done() <-chan struct{} { return p.done }

func pollErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return "Failed to fetch status: " + apiErr.Reason()
	}
	return "Failed to fetch status. Please check your connection."
}
