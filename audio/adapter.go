package audio

import (
	"time"

	"github.com/zsiec/playcore/format"
)

// Adapter bridges any source format to any target format by composing,
// in order, a format converter, a resampler (only when the source rate
// differs from the target rate), and a channel converter (last, so
// resampling runs on the narrower stream when downmixing). A stage is
// skipped entirely when the source already matches the target for that
// stage, avoiding a needless copy (§4.1).
type Adapter struct {
	chain     Reader
	resampler *Resampler
}

// NewAdapter composes the reader chain bridging source to target.
func NewAdapter(source Reader, target format.RawAudioFormat) *Adapter {
	cur := source
	src := source.Format()

	if src.SampleKind != target.SampleKind || src.ByteOrder != target.ByteOrder {
		cur = NewFormatConverter(cur, target.SampleKind, target.ByteOrder)
	}

	var rs *Resampler
	if cur.Format().FrameRate != target.FrameRate {
		rs = NewResampler(cur, target.FrameRate)
		cur = rs
	}

	if cur.Format().Channels != target.Channels {
		cur = NewChannelConverter(cur, target.Channels)
	}

	return &Adapter{chain: cur, resampler: rs}
}

func (a *Adapter) Format() format.RawAudioFormat { return a.chain.Format() }

func (a *Adapter) InitialLatency() time.Duration { return a.chain.InitialLatency() }

func (a *Adapter) Read(buffer []byte, pos int64, frames int) error {
	return a.chain.Read(buffer, pos, frames)
}

// Resampler returns the adapter's internal rate-conversion stage, or nil
// if source and target rates matched and the stage was skipped.
func (a *Adapter) Resampler() *Resampler { return a.resampler }
