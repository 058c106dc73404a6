package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// jpegQuality matches the preview capture quality of the web client.
const jpegQuality = 90

// Capture freezes the current frame of the session's stream into a
// JPEG payload. The frame is mirrored horizontally so the result
// matches the user-facing preview. The session stays active; the
// caller decides when to release the camera.
func Capture(s *Session) ([]byte, error) {
	stream := s.Stream()
	if stream == nil || !s.Active() {
		return nil, ErrInactive
	}

	frame, err := stream.Frame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	if frame == nil || frame.Bounds().Empty() {
		return nil, ErrEncodingUnavailable
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, mirror(frame), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingUnavailable, err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyCapture
	}
	return buf.Bytes(), nil
}

// mirror flips the frame around its vertical axis.
func mirror(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Set(x, y, src.At(b.Max.X-1-x, b.Min.Y+y))
		}
	}
	return dst
}
