// Package imagetrack implements the image-track video supplier: a single
// static bitmap (cover art, folder.jpg) presented as an infinite, looped
// 25 Hz video stream, for the video-track slots a media-file track
// supplier appends past its real video tracks (§4.6).
package imagetrack

import (
	"time"

	"github.com/zsiec/playcore/format"
)

const frameRate = 25.0

// Supplier presents one static bitmap as a looped video track. Every
// frame is a keyframe and the bitmap never changes; only the frame
// counter and derived timestamp advance.
type Supplier struct {
	bitmap      []byte
	width       int
	height      int
	colorSpace  format.ColorSpace
	bytesPerRow int
	current     int64
}

// New wraps a decoded bitmap (already in colorSpace/bytesPerRow layout) as
// a looped video track.
func New(bitmap []byte, width, height int, colorSpace format.ColorSpace, bytesPerRow int) *Supplier {
	return &Supplier{
		bitmap:      bitmap,
		width:       width,
		height:      height,
		colorSpace:  colorSpace,
		bytesPerRow: bytesPerRow,
	}
}

func (s *Supplier) Bounds() (int, int) { return s.width, s.height }

func (s *Supplier) ColorSpace() format.ColorSpace { return s.colorSpace }

func (s *Supplier) BytesPerRow() int { return s.bytesPerRow }

func (s *Supplier) CurrentFrame() int64 { return s.current }

// Duration returns 0: an infinite/looped source has no fixed duration.
func (s *Supplier) Duration() time.Duration { return 0 }

// FrameRate returns 0: a looped still image has no inherent rate, so a
// controller falls back to its own default.
func (s *Supplier) FrameRate() float64 { return 0 }

func (s *Supplier) ReadFrame(buffer []byte, _ format.RawVideoFormat) (time.Duration, bool, error) {
	copy(buffer, s.bitmap)
	pts := time.Duration(float64(s.current) * float64(time.Second) / frameRate)
	s.current++
	return pts, false, nil
}

// FindKeyFrameForFrame: every frame of a static bitmap is a keyframe.
func (s *Supplier) FindKeyFrameForFrame(f int64) (int64, error) { return f, nil }

func (s *Supplier) SeekToFrame(f int64) (int64, error) {
	s.current = f
	return f, nil
}

func (s *Supplier) SeekToTime(pts time.Duration) error {
	s.current = int64(pts.Seconds() * frameRate)
	return nil
}

func (s *Supplier) Close() error { return nil }
