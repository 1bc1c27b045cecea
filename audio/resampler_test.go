package audio

import (
	"testing"
	"time"

	"github.com/zsiec/playcore/format"
)

// intSource serves a fixed slice of mono int16 samples at a given rate.
type intSource struct {
	samples []int16
	rate    float64
}

func (s *intSource) Format() format.RawAudioFormat {
	return format.RawAudioFormat{SampleKind: format.Int16, ByteOrder: format.LittleEndian, FrameRate: s.rate, Channels: 1}
}
func (s *intSource) InitialLatency() time.Duration { return 0 }
func (s *intSource) Read(buffer []byte, pos int64, frames int) error {
	for i := 0; i < frames; i++ {
		idx := int(pos) + i
		var v int16
		if idx >= 0 && idx < len(s.samples) {
			v = s.samples[idx]
		} else if idx >= len(s.samples) && len(s.samples) > 0 {
			v = s.samples[len(s.samples)-1]
		}
		buffer[i*2] = byte(uint16(v))
		buffer[i*2+1] = byte(uint16(v) >> 8)
	}
	return nil
}

func TestResamplerUpsample1to2(t *testing.T) {
	t.Parallel()
	src := &intSource{samples: []int16{0, 100, 200}, rate: 100}
	r := NewResampler(src, 200)
	r.TimeScale = 1

	out := make([]byte, 5*2)
	if err := r.Read(out, 0, 5); err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []int16{0, 50, 100, 150, 200}
	for i, w := range want {
		got := int16(uint16(out[i*2]) | uint16(out[i*2+1])<<8)
		if got != w {
			t.Errorf("frame %d = %d, want %d", i, got, w)
		}
	}
}

func TestResamplerIdentity(t *testing.T) {
	t.Parallel()
	src := &intSource{samples: []int16{10, -20, 30, -40, 50}, rate: 44100}
	r := NewResampler(src, 44100)
	r.TimeScale = 1

	out := make([]byte, 5*2)
	if err := r.Read(out, 0, 5); err != nil {
		t.Fatalf("Read: %v", err)
	}
	direct := make([]byte, 5*2)
	if err := src.Read(direct, 0, 5); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range out {
		if out[i] != direct[i] {
			t.Fatalf("identity mismatch at byte %d: %d != %d", i, out[i], direct[i])
		}
	}
}

func TestReadSilenceInt16(t *testing.T) {
	t.Parallel()
	f := format.RawAudioFormat{SampleKind: format.Int16, ByteOrder: format.LittleEndian, FrameRate: 48000, Channels: 2}
	buf := make([]byte, 4*f.FrameSize())
	ReadSilence(f, buf, 4)
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("expected all-zero silence, got %v", buf)
		}
	}
}

func TestReverseFrames(t *testing.T) {
	t.Parallel()
	f := format.RawAudioFormat{SampleKind: format.Int16, ByteOrder: format.LittleEndian, FrameRate: 48000, Channels: 1}
	buf := []byte{1, 0, 2, 0, 3, 0}
	ReverseFrames(f, buf, 3)
	want := []byte{3, 0, 2, 0, 1, 0}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("ReverseFrames got %v, want %v", buf, want)
		}
	}
}
