package audio

import (
	"time"

	"github.com/zsiec/playcore/format"
)

// Reader is the common interface for every stage of the audio chain:
// format converter, channel converter, resampler, volume converter, and
// the raw track source they wrap. pos is in output frames; frames is the
// exact count the call must produce (§4.1).
type Reader interface {
	Format() format.RawAudioFormat
	InitialLatency() time.Duration
	Read(buffer []byte, pos int64, frames int) error
}

// OutOffset shifts the effective read position of a wrapped reader without
// copying — embedders add it to pos before delegating downstream.
type OutOffset struct {
	Frames int64
}

// Apply returns pos shifted by the offset.
func (o OutOffset) Apply(pos int64) int64 {
	return pos + o.Frames
}

// ReadSilence fills n frames of buffer with the format's mid-value: 0.0 for
// signed/float kinds, the re-centered midpoint for uint8.
func ReadSilence(f format.RawAudioFormat, buffer []byte, n int) {
	frameSize := f.FrameSize()
	sampleSize := f.SampleKind.BytesPerSample()
	if frameSize == 0 {
		return
	}
	need := n * frameSize
	if need > len(buffer) {
		need = len(buffer)
	}
	for off := 0; off+sampleSize <= need; off += sampleSize {
		MidValue(f.SampleKind, f.ByteOrder, buffer[off:off+sampleSize])
	}
}

// ReverseFrames swaps frames end-for-end in place, used when a playing
// interval's speed is negative (§4.1).
func ReverseFrames(f format.RawAudioFormat, buffer []byte, n int) {
	frameSize := f.FrameSize()
	if frameSize == 0 || n < 2 {
		return
	}
	tmp := make([]byte, frameSize)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		a := buffer[i*frameSize : i*frameSize+frameSize]
		b := buffer[j*frameSize : j*frameSize+frameSize]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// SkipFrames advances a byte slice by n frames, returning the remainder.
func SkipFrames(f format.RawAudioFormat, buffer []byte, n int) []byte {
	frameSize := f.FrameSize()
	skip := n * frameSize
	if skip > len(buffer) {
		skip = len(buffer)
	}
	return buffer[skip:]
}
