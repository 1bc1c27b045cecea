// Package videotrack implements the video track supplier: keyframe-aware
// decode negotiation, a single-frame cache for cover-art style media, and
// embedded closed-caption extraction from H.264/H.265 SEI NALUs (§4.4).
package videotrack

import (
	"time"

	"github.com/zsiec/playcore/format"
)

// Decoder is the external codec collaborator a Supplier wraps — the
// container's per-track decode handle. It is out of scope to implement
// (no new codec implementations, per spec.md Non-goals); real suppliers
// are built by adapting a concrete container/codec binding to this
// interface.
type Decoder interface {
	// NegotiateFormat asks the decoder to deliver frames in preferred (or
	// its closest equivalent), returning what it will actually produce.
	NegotiateFormat(preferred format.RawVideoFormat) (format.RawVideoFormat, error)

	// DecodeNextFrame decodes exactly one frame into buffer and returns
	// its presentation timestamp. err is errs.EndOfStream at the end of
	// the track.
	DecodeNextFrame(buffer []byte) (pts time.Duration, err error)

	// FindKeyFrameForFrame returns the closest keyframe at or before f,
	// without moving the decode cursor.
	FindKeyFrameForFrame(f int64) (int64, error)

	// SeekToFrame moves the decode cursor so the next DecodeNextFrame
	// yields frame f, returning the frame and performance time actually
	// reached.
	SeekToFrame(f int64) (reached int64, pts time.Duration, err error)

	CurrentFrame() int64
	FrameCount() int64
	Duration() time.Duration
	Bounds() (width, height int)
	EncodedColorSpace() format.ColorSpace

	// CaptionSEI returns any raw SEI NALU payloads attached to the frame
	// just decoded by DecodeNextFrame, or nil if the codec is not
	// H.264/H.265 or the frame carried none.
	CaptionSEI() [][]byte

	Close() error
}
