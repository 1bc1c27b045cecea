package audio

import (
	"math"
	"time"

	"github.com/zsiec/playcore/format"
)

// Resampler converts a source reader at fIn Hz to an output rate fOut Hz
// under a signed time scale (§4.1). InOffset is the source-frame base the
// audio proxy sets per playing interval (frame-for-time(xStart)); TimeScale
// is the interval's |speed|. For each output frame it reads the two
// adjacent source frames and linearly interpolates per channel; a negative
// TimeScale reverses the output buffer after reading, since source frames
// are always read forward regardless of playback direction.
type Resampler struct {
	OutOffset
	InOffset   int64
	TimeScale  float64 // signed; 0 behaves as 1
	source     Reader
	outputRate float64
}

// NewResampler wraps source, resampling to outputRate Hz.
func NewResampler(source Reader, outputRate float64) *Resampler {
	return &Resampler{source: source, outputRate: outputRate, TimeScale: 1}
}

func (r *Resampler) Format() format.RawAudioFormat {
	f := r.source.Format()
	f.FrameRate = r.outputRate
	return f
}

func (r *Resampler) InitialLatency() time.Duration { return r.source.InitialLatency() }

// ConvertToSource maps an output frame index to the corresponding source
// frame index, per §4.1: floor(p * fIn / (fOut * |s|)).
func (r *Resampler) ConvertToSource(p int64) int64 {
	s := r.TimeScale
	if s == 0 {
		s = 1
	}
	absS := math.Abs(s)
	fIn := r.source.Format().FrameRate
	return int64(math.Floor(float64(p) * fIn / (r.outputRate * absS)))
}

func (r *Resampler) srcPosF(p int64) float64 {
	s := r.TimeScale
	if s == 0 {
		s = 1
	}
	absS := math.Abs(s)
	fIn := r.source.Format().FrameRate
	return float64(p) * fIn / (r.outputRate * absS)
}

func (r *Resampler) Read(buffer []byte, pos int64, frames int) error {
	if frames == 0 {
		return nil
	}
	srcFmt := r.source.Format()
	s := r.TimeScale
	if s == 0 {
		s = 1
	}
	absS := math.Abs(s)

	p0 := r.Apply(pos)

	// Identity fast path: same rate, forward, no interpolation error can
	// creep in — delegate straight through (§8 resampler-identity property).
	if srcFmt.FrameRate == r.outputRate && absS == 1 {
		if err := r.source.Read(buffer, r.InOffset+p0, frames); err != nil {
			return err
		}
		if s < 0 {
			ReverseFrames(r.Format(), buffer, frames)
		}
		return nil
	}

	firstSrcFrame := int64(math.Floor(r.srcPosF(p0)))
	lastSrcFrame := int64(math.Floor(r.srcPosF(p0 + int64(frames) - 1)))
	neededSourceFrames := int(lastSrcFrame-firstSrcFrame) + 2

	srcFrameSize := srcFmt.FrameSize()
	tmp := make([]byte, neededSourceFrames*srcFrameSize)
	if err := r.source.Read(tmp, r.InOffset+firstSrcFrame, neededSourceFrames); err != nil {
		ReadSilence(srcFmt, tmp, neededSourceFrames)
	}

	channels := srcFmt.Channels
	sampleSize := srcFmt.SampleKind.BytesPerSample()
	dstFrameSize := r.Format().FrameSize()

	for i := 0; i < frames; i++ {
		p := p0 + int64(i)
		sf := r.srcPosF(p)
		base := int64(math.Floor(sf))
		frac := sf - float64(base)
		idx0 := base - firstSrcFrame
		idx1 := idx0 + 1
		dstOff := i * dstFrameSize

		for ch := 0; ch < channels; ch++ {
			o0 := int(idx0)*srcFrameSize + ch*sampleSize
			o1 := int(idx1)*srcFrameSize + ch*sampleSize

			var v0, v1 float64
			if o0 >= 0 && o0+sampleSize <= len(tmp) {
				v0 = ReadNormalized(srcFmt.SampleKind, srcFmt.ByteOrder, tmp[o0:o0+sampleSize])
			}
			if o1 >= 0 && o1+sampleSize <= len(tmp) {
				v1 = ReadNormalized(srcFmt.SampleKind, srcFmt.ByteOrder, tmp[o1:o1+sampleSize])
			} else {
				v1 = v0 // end-hold: repeat the last available sample
			}

			v := v0*(1-frac) + v1*frac
			off := dstOff + ch*sampleSize
			WriteNormalized(srcFmt.SampleKind, srcFmt.ByteOrder, v, buffer[off:off+sampleSize])
		}
	}

	if s < 0 {
		ReverseFrames(r.Format(), buffer, frames)
	}
	return nil
}
