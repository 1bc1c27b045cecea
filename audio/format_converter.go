package audio

import (
	"time"

	"github.com/zsiec/playcore/format"
)

// FormatConverter accepts any sample kind and byte order from its source
// and produces a requested sample kind/byte order, preserving channel
// count and frame rate (§4.1). Every sample is normalized through the
// canonical signed-integer full-scale representation (audio.ReadNormalized
// / audio.WriteNormalized) so kind/endian branches never leak to callers.
type FormatConverter struct {
	OutOffset
	source Reader
	target format.RawAudioFormat
}

// NewFormatConverter wraps source, converting its sample kind/byte order to
// targetKind/targetOrder. Channel count and frame rate are copied from the
// source's format.
func NewFormatConverter(source Reader, targetKind format.SampleKind, targetOrder format.ByteOrder) *FormatConverter {
	src := source.Format()
	return &FormatConverter{
		source: source,
		target: format.RawAudioFormat{
			SampleKind: targetKind,
			ByteOrder:  targetOrder,
			FrameRate:  src.FrameRate,
			Channels:   src.Channels,
			BufferSize: src.BufferSize,
		},
	}
}

func (c *FormatConverter) Format() format.RawAudioFormat { return c.target }

func (c *FormatConverter) InitialLatency() time.Duration { return c.source.InitialLatency() }

func (c *FormatConverter) Read(buffer []byte, pos int64, frames int) error {
	src := c.source.Format()
	dst := c.target

	if src.SampleKind == dst.SampleKind && src.ByteOrder == dst.ByteOrder {
		return c.source.Read(buffer, c.Apply(pos), frames)
	}

	srcFrameSize := src.FrameSize()
	tmp := make([]byte, frames*srcFrameSize)
	if err := c.source.Read(tmp, c.Apply(pos), frames); err != nil {
		return err
	}

	srcSampleSize := src.SampleKind.BytesPerSample()
	dstSampleSize := dst.SampleKind.BytesPerSample()
	channels := src.Channels

	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			srcOff := frame*srcFrameSize + ch*srcSampleSize
			dstOff := frame*dst.FrameSize() + ch*dstSampleSize
			v := ReadNormalized(src.SampleKind, src.ByteOrder, tmp[srcOff:srcOff+srcSampleSize])
			WriteNormalized(dst.SampleKind, dst.ByteOrder, v, buffer[dstOff:dstOff+dstSampleSize])
		}
	}
	return nil
}
