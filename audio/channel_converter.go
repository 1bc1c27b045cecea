package audio

import (
	"time"

	"github.com/zsiec/playcore/format"
)

// ChannelConverter preserves sample kind and frame rate while changing
// channel count: 1→2 duplicates, 2→1 averages (widening through float64 to
// avoid overflow), otherwise the first min(src,dst) channels are copied and
// any extra output channels are zeroed (§4.1). Source read failures pad
// the remainder of the request with silence rather than propagating, since
// this stage sits directly above a track source that may run past its end.
type ChannelConverter struct {
	OutOffset
	source   Reader
	target   format.RawAudioFormat
	srcChans int
}

// NewChannelConverter wraps source, changing its channel count to
// targetChannels. Sample kind, byte order, and frame rate are unchanged.
func NewChannelConverter(source Reader, targetChannels int) *ChannelConverter {
	src := source.Format()
	tgt := src
	tgt.Channels = targetChannels
	return &ChannelConverter{
		source:   source,
		target:   tgt,
		srcChans: src.Channels,
	}
}

func (c *ChannelConverter) Format() format.RawAudioFormat { return c.target }

func (c *ChannelConverter) InitialLatency() time.Duration { return c.source.InitialLatency() }

func (c *ChannelConverter) Read(buffer []byte, pos int64, frames int) error {
	dst := c.target
	if c.srcChans == dst.Channels {
		return c.source.Read(buffer, c.Apply(pos), frames)
	}

	src := c.source.Format()
	srcFrameSize := src.FrameSize()
	tmp := make([]byte, frames*srcFrameSize)
	if err := c.source.Read(tmp, c.Apply(pos), frames); err != nil {
		ReadSilence(dst, buffer, frames)
		return nil
	}

	sampleSize := src.SampleKind.BytesPerSample()
	dstFrameSize := dst.FrameSize()

	for frame := 0; frame < frames; frame++ {
		srcBase := frame * srcFrameSize
		dstBase := frame * dstFrameSize

		switch {
		case c.srcChans == 1 && dst.Channels == 2:
			copy(buffer[dstBase:dstBase+sampleSize], tmp[srcBase:srcBase+sampleSize])
			copy(buffer[dstBase+sampleSize:dstBase+2*sampleSize], tmp[srcBase:srcBase+sampleSize])

		case c.srcChans == 2 && dst.Channels == 1:
			l := ReadNormalized(src.SampleKind, src.ByteOrder, tmp[srcBase:srcBase+sampleSize])
			r := ReadNormalized(src.SampleKind, src.ByteOrder, tmp[srcBase+sampleSize:srcBase+2*sampleSize])
			avg := (l + r) / 2
			WriteNormalized(dst.SampleKind, dst.ByteOrder, avg, buffer[dstBase:dstBase+sampleSize])

		default:
			copyChans := c.srcChans
			if dst.Channels < copyChans {
				copyChans = dst.Channels
			}
			for ch := 0; ch < copyChans; ch++ {
				so := srcBase + ch*sampleSize
				do := dstBase + ch*sampleSize
				copy(buffer[do:do+sampleSize], tmp[so:so+sampleSize])
			}
			for ch := copyChans; ch < dst.Channels; ch++ {
				do := dstBase + ch*sampleSize
				MidValue(dst.SampleKind, dst.ByteOrder, buffer[do:do+sampleSize])
			}
		}
	}
	return nil
}
