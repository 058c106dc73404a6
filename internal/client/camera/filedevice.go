package camera

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
)

// FileDevice is a Device backed by a still image on disk. It stands in
// for real camera hardware when the wizard runs in a terminal.
type FileDevice struct {
	// Path is the image file served as the live frame.
	Path string
}

// Open loads the image and returns a single-frame stream. Filesystem
// failures are classified with the acquisition sentinels so callers see
// the same taxonomy as with real hardware.
func (d *FileDevice) Open(ctx context.Context, _ Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(d.Path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, fmt.Errorf("%w: %s", ErrNoDevice, d.Path)
		case os.IsPermission(err):
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, d.Path)
		default:
			return nil, fmt.Errorf("open camera image: %w", err)
		}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrDeviceBusy, d.Path, err)
	}
	return &stillStream{frame: img}, nil
}

// stillStream serves one decoded image as every frame.
type stillStream struct {
	mu     sync.Mutex
	frame  image.Image
	closed bool
}

func (s *stillStream) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrInactive
	}
	return s.frame, nil
}

func (s *stillStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.frame = nil
	return nil
}

// NopSurface is a Surface with no visual output, used by the terminal
// client and in tests.
type NopSurface struct {
	mu    sync.Mutex
	bound Stream
}

func (s *NopSurface) Bind(stream Stream) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound = stream
	return nil
}

func (s *NopSurface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound = nil
}

// Bound returns the currently attached stream, for tests.
func (s *NopSurface) Bound() Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}
