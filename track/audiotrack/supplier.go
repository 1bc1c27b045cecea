// Package audiotrack implements the audio track supplier: a container
// decoder wrapped by the ten-slot cache from package audio/cache,
// exposing the audio.Reader contract plus duration and encoded-format
// metadata (§3 "Audio track supplier", §4.3).
package audiotrack

import (
	"time"

	"github.com/zsiec/playcore/audio"
	"github.com/zsiec/playcore/audio/cache"
	"github.com/zsiec/playcore/format"
)

// Decoder is the container collaborator a Supplier wraps: sequential PCM
// decode plus keyframe-aware backward seek. Out of scope to implement (no
// new codec implementations) — concrete suppliers adapt a container
// binding to this interface.
type Decoder interface {
	audio.Reader
	EncodedFormat() format.EncodedAudioFormat
	Duration() time.Duration
	SeekToKeyframeBefore(pos int64) (int64, error)
}

// Supplier implements track.AudioTrackSupplier.
type Supplier struct {
	decoder Decoder
	cache   *cache.Cache
	dur     time.Duration
	frameRate float64
}

// defaultBufferSize is the cache slot size in bytes (16 KiB, per §4.3), used
// unless the container reports a larger minimum.
const defaultBufferSize = 16 * 1024

// New wraps decoder with the audio track cache. countFrames is the track's
// total length in frames (frames past it always read as silence).
func New(decoder Decoder, countFrames int64) *Supplier {
	f := decoder.Format()
	bufferSize := defaultBufferSize
	if minSize := f.BufferSize; minSize > bufferSize {
		bufferSize = minSize
	}
	return &Supplier{
		decoder:   decoder,
		cache:     cache.New(decoder, f, bufferSize, countFrames),
		dur:       decoder.Duration(),
		frameRate: f.FrameRate,
	}
}

func (s *Supplier) Format() format.RawAudioFormat { return s.cache.Format() }

func (s *Supplier) InitialLatency() time.Duration { return s.decoder.InitialLatency() }

// Read fills buffer with exactly frames frames starting at pos; short
// reads past the track end are padded with silence (§3 invariant).
func (s *Supplier) Read(buffer []byte, pos int64, frames int) error {
	return s.cache.Read(buffer, pos, frames)
}

func (s *Supplier) EncodedFormat() format.EncodedAudioFormat { return s.decoder.EncodedFormat() }

func (s *Supplier) DecodedFormat() format.RawAudioFormat { return s.cache.Format() }

func (s *Supplier) Duration() time.Duration { return s.dur }

func (s *Supplier) Close() error {
	if closer, ok := s.decoder.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
