package audio

import (
	"sync"
	"time"

	"github.com/zsiec/playcore/format"
)

// VolumeConverter multiplies each sample by a scalar gain in [0, 2]. When
// the gain changes between calls, the new Read ramps linearly from the
// previous gain to the current one across the block to avoid zipper noise
// (§4.1). Integer rounding and uint8 re-centering fall out of routing the
// samples through the canonical normalized representation.
type VolumeConverter struct {
	OutOffset
	source Reader

	mu         sync.Mutex
	volume     float64
	prevVolume float64
}

// NewVolumeConverter wraps source with an initial gain of 1.0 (unity).
func NewVolumeConverter(source Reader) *VolumeConverter {
	return &VolumeConverter{source: source, volume: 1, prevVolume: 1}
}

func (c *VolumeConverter) Format() format.RawAudioFormat { return c.source.Format() }

func (c *VolumeConverter) InitialLatency() time.Duration { return c.source.InitialLatency() }

// SetVolume sets the target gain, clamped to [0, 2]. The next Read ramps
// from the previously-in-effect gain to this one.
func (c *VolumeConverter) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 2 {
		v = 2
	}
	c.mu.Lock()
	c.volume = v
	c.mu.Unlock()
}

// Volume returns the current target gain.
func (c *VolumeConverter) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

func (c *VolumeConverter) Read(buffer []byte, pos int64, frames int) error {
	c.mu.Lock()
	startV := c.prevVolume
	endV := c.volume
	c.mu.Unlock()

	f := c.Format()
	if err := c.source.Read(buffer, c.Apply(pos), frames); err != nil {
		return err
	}

	if startV == 1 && endV == 1 {
		c.mu.Lock()
		c.prevVolume = endV
		c.mu.Unlock()
		return nil
	}

	frameSize := f.FrameSize()
	sampleSize := f.SampleKind.BytesPerSample()
	channels := f.Channels

	for frame := 0; frame < frames; frame++ {
		gain := endV
		if frames > 1 {
			gain = startV + (endV-startV)*float64(frame)/float64(frames-1)
		}
		base := frame * frameSize
		for ch := 0; ch < channels; ch++ {
			off := base + ch*sampleSize
			v := ReadNormalized(f.SampleKind, f.ByteOrder, buffer[off:off+sampleSize])
			WriteNormalized(f.SampleKind, f.ByteOrder, v*gain, buffer[off:off+sampleSize])
		}
	}

	c.mu.Lock()
	c.prevVolume = endV
	c.mu.Unlock()
	return nil
}
