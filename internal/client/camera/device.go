// Package camera manages the lifecycle of a live camera stream for the
// selfie step: acquisition, preview binding, frame capture, and
// guaranteed release on every exit path.
package camera

import (
	"context"
	"errors"
	"image"
)

// Acquisition failures, classified so each gets a distinct user-facing
// message. Device implementations wrap these sentinels.
var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrNoDevice         = errors.New("no camera device found")
	ErrDeviceBusy       = errors.New("camera device busy")
)

// Capture failures.
var (
	ErrEmptyCapture        = errors.New("captured image is empty")
	ErrEncodingUnavailable = errors.New("capture encoding unavailable")
	ErrInactive            = errors.New("camera is not active")
)

// Constraints selects the kind of stream to acquire.
type Constraints struct {
	// FacingFront requests the user-facing camera.
	FacingFront bool
	// Audio requests an audio track; the wizard never does.
	Audio bool
}

// Stream is a live media stream handle. It is exclusively owned by the
// Session that acquired it and must be closed exactly once.
type Stream interface {
	// Frame returns the current video frame.
	Frame() (image.Image, error)
	// Close stops all underlying tracks. Implementations must tolerate
	// double Close.
	Close() error
}

// Device abstracts platform media acquisition.
type Device interface {
	// Open acquires a stream matching the constraints, or fails with an
	// error wrapping one of the acquisition sentinels.
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Surface is the preview display a stream is bound to.
type Surface interface {
	// Bind attaches the stream and starts playback. A Bind failure is
	// advisory, not fatal: the stream stays acquired.
	Bind(s Stream) error
	// Reset detaches any bound stream and returns the surface to its
	// empty state.
	Reset()
}

// Describe maps an acquisition failure to its user-facing message.
func Describe(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Camera permission denied. Please grant permission in your settings and try again."
	case errors.Is(err, ErrNoDevice):
		return "No camera found on this device."
	case errors.Is(err, ErrDeviceBusy):
		return "Camera might be already in use by another application."
	default:
		return "Could not access camera."
	}
}
