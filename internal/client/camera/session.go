package camera

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Session owns at most one live Stream bound to a Surface. Stop is the
// single release point and is safe to call from every exit path:
// successful capture, explicit cancel, and teardown.
type Session struct {
	mu       sync.Mutex
	device   Device
	surface  Surface
	stream   Stream
	active   bool
	advisory string
	log      *zap.Logger
}

// NewSession creates a Session for the given device and preview surface.
func NewSession(device Device, surface Surface, log *zap.Logger) *Session {
	return &Session{device: device, surface: surface, log: log}
}

// Start acquires a front-facing, video-only stream and binds it to the
// surface. It is a no-op when a stream is already held or no surface is
// attached. Acquisition failures are returned wrapping one of the
// sentinel errors; a playback (Bind) failure is recorded as an advisory
// and does not fail the start.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.advisory = ""
	if s.stream != nil || s.surface == nil {
		s.log.Debug("camera already active or no surface attached")
		return nil
	}

	stream, err := s.device.Open(ctx, Constraints{FacingFront: true, Audio: false})
	if err != nil {
		// Release anything partially acquired.
		if stream != nil {
			_ = stream.Close()
		}
		s.active = false
		s.log.Warn("camera acquisition failed", zap.Error(err))
		return err
	}

	s.stream = stream
	if err := s.surface.Bind(stream); err != nil {
		s.advisory = "Could not automatically start the preview. User interaction might be required."
		s.log.Warn("preview playback failed", zap.Error(err))
	}
	s.active = true
	s.log.Info("camera stream acquired")
	return nil
}

// Stop releases the stream if one is held: tracks stopped, surface
// reset, handle cleared. Idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return
	}
	if err := s.stream.Close(); err != nil {
		s.log.Warn("closing camera stream", zap.Error(err))
	}
	s.stream = nil
	if s.surface != nil {
		s.surface.Reset()
	}
	s.active = false
	s.log.Info("camera stream released")
}

// Active reports whether a stream is held and playing.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Advisory returns the non-fatal playback warning from the last Start,
// if any.
func (s *Session) Advisory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advisory
}

// Stream returns the held stream, or nil when inactive.
func (s *Session) Stream() Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}
