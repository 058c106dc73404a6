package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// gradientFrame has a bright left edge and a dark right edge so
// mirroring is observable after JPEG round-tripping.
func gradientFrame() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(255 - x*15)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func startedSession(t *testing.T, stream Stream) *Session {
	t.Helper()
	s := NewSession(&injectDevice{stream: stream}, &NopSurface{}, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	return s
}

type injectDevice struct{ stream Stream }

func (d *injectDevice) Open(context.Context, Constraints) (Stream, error) { return d.stream, nil }

func TestCaptureProducesMirroredJPEG(t *testing.T) {
	s := startedSession(t, &fakeStream{frame: gradientFrame()})

	payload, err := Capture(s)
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	decoded, err := jpeg.Decode(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 16, decoded.Bounds().Dx())
	assert.Equal(t, 8, decoded.Bounds().Dy())

	// The source is bright on the left; the mirrored capture must be
	// bright on the right.
	left, _, _, _ := decoded.At(0, 4).RGBA()
	right, _, _, _ := decoded.At(15, 4).RGBA()
	assert.Greater(t, right, left)

	// Capture must not release the camera.
	assert.True(t, s.Active())
}

func TestCaptureRequiresActiveSession(t *testing.T) {
	s := NewSession(&injectDevice{stream: &fakeStream{frame: gradientFrame()}}, &NopSurface{}, zap.NewNop())

	_, err := Capture(s)
	assert.ErrorIs(t, err, ErrInactive)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	_, err = Capture(s)
	assert.ErrorIs(t, err, ErrInactive)
}

func TestCaptureFrameFailure(t *testing.T) {
	s := startedSession(t, &fakeStream{frameErr: errors.New("sensor fault")})
	_, err := Capture(s)
	assert.ErrorContains(t, err, "sensor fault")
}

func TestCaptureEmptyFrame(t *testing.T) {
	s := startedSession(t, &fakeStream{frame: image.NewRGBA(image.Rect(0, 0, 0, 0))})
	_, err := Capture(s)
	assert.ErrorIs(t, err, ErrEncodingUnavailable)
}

func TestMirror(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 0, color.RGBA{B: 255, A: 255})

	m := mirror(src)
	r0, _, b0, _ := m.At(0, 0).RGBA()
	r1, _, b1, _ := m.At(1, 0).RGBA()
	assert.Zero(t, r0)
	assert.NotZero(t, b0)
	assert.NotZero(t, r1)
	assert.Zero(t, b1)
}
