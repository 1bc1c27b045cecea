package audio

import (
	"testing"
	"time"

	"github.com/zsiec/playcore/format"
)

func TestReadNormalizedInt16(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw  int16
		want float64
	}{
		{-32768, -1.0},
		{0, 0.0},
		{1, 1.0 / 32767},
		{2, 2.0 / 32767},
		{32767, 1.0},
		{-1, -1.0 / 32767},
		{-32767, -1.0},
	}
	for _, c := range cases {
		buf := make([]byte, 2)
		buf[0] = byte(uint16(c.raw))
		buf[1] = byte(uint16(c.raw) >> 8)
		got := ReadNormalized(format.Int16, format.LittleEndian, buf)
		if got != c.want {
			t.Errorf("ReadNormalized(int16 %d) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestFormatConversionInt16ToFloat32(t *testing.T) {
	t.Parallel()
	// 4 frames, stereo, int16 host-endian (§8 scenario 1).
	samples := []int16{-32768, 0, 1, 2, 32767, -1, -32767, 32767}
	src := make([]byte, len(samples)*2)
	for i, s := range samples {
		src[i*2] = byte(uint16(s))
		src[i*2+1] = byte(uint16(s) >> 8)
	}

	want := []float32{-1.0, 0.0, 1.0 / 32767, 2.0 / 32767, 1.0, -1.0 / 32767, -1.0, 1.0}

	fc := NewFormatConverter(&fixedReader{
		data: src,
		f: format.RawAudioFormat{
			SampleKind: format.Int16,
			ByteOrder:  format.LittleEndian,
			FrameRate:  44100,
			Channels:   2,
		},
	}, format.Float32, format.LittleEndian)

	out := make([]byte, 4*fc.Format().FrameSize())
	if err := fc.Read(out, 0, 4); err != nil {
		t.Fatalf("Read: %v", err)
	}

	for i := range want {
		got := ReadNormalized(format.Float32, format.LittleEndian, out[i*4:i*4+4])
		if float32(got) != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got, want[i])
		}
	}
}

// fixedReader serves a fixed byte buffer as a Reader, for testing converters
// in isolation.
type fixedReader struct {
	data []byte
	f    format.RawAudioFormat
}

func (r *fixedReader) Format() format.RawAudioFormat { return r.f }
func (r *fixedReader) InitialLatency() time.Duration { return 0 }
func (r *fixedReader) Read(buffer []byte, pos int64, frames int) error {
	frameSize := r.f.FrameSize()
	start := int(pos) * frameSize
	need := frames * frameSize
	for i := 0; i < need; i++ {
		if start+i < len(r.data) {
			buffer[i] = r.data[start+i]
		} else {
			buffer[i] = 0
		}
	}
	return nil
}
