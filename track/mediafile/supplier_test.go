package mediafile

import (
	"testing"
	"time"

	"github.com/zsiec/playcore/audio"
	"github.com/zsiec/playcore/format"
	"github.com/zsiec/playcore/track"
	"github.com/zsiec/playcore/track/audiotrack"
	"github.com/zsiec/playcore/track/videotrack"
)

type fakeAudioDecoder struct{}

func (fakeAudioDecoder) Format() format.RawAudioFormat { return format.RawAudioFormat{Channels: 2, SampleKind: format.Int16, FrameRate: 48000} }
func (fakeAudioDecoder) InitialLatency() time.Duration { return 0 }
func (fakeAudioDecoder) Read(buf []byte, pos int64, frames int) error {
	audio.ReadSilence(format.RawAudioFormat{Channels: 2, SampleKind: format.Int16}, buf, frames)
	return nil
}
func (fakeAudioDecoder) EncodedFormat() format.EncodedAudioFormat { return format.EncodedAudioFormat{Codec: "fake"} }
func (fakeAudioDecoder) Duration() time.Duration                 { return 10 * time.Second }
func (fakeAudioDecoder) SeekToKeyframeBefore(pos int64) (int64, error) { return pos, nil }

type fakeVideoDecoder struct{ count int64 }

func (d *fakeVideoDecoder) NegotiateFormat(preferred format.RawVideoFormat) (format.RawVideoFormat, error) {
	preferred.DisplayWidth, preferred.DisplayHeight = 320, 240
	preferred.BytesPerRow = 320 * 2
	if preferred.PixelFormat == format.ColorSpaceNone {
		preferred.PixelFormat = format.YCbCr422
	}
	return preferred, nil
}
func (d *fakeVideoDecoder) DecodeNextFrame(buffer []byte) (time.Duration, error) {
	return 0, nil
}
func (d *fakeVideoDecoder) FindKeyFrameForFrame(f int64) (int64, error) { return 0, nil }
func (d *fakeVideoDecoder) SeekToFrame(f int64) (int64, time.Duration, error) {
	return f, 0, nil
}
func (d *fakeVideoDecoder) CurrentFrame() int64             { return 0 }
func (d *fakeVideoDecoder) FrameCount() int64               { return d.count }
func (d *fakeVideoDecoder) Duration() time.Duration         { return 10 * time.Second }
func (d *fakeVideoDecoder) Bounds() (int, int)              { return 320, 240 }
func (d *fakeVideoDecoder) EncodedColorSpace() format.ColorSpace { return format.YCbCr420 }
func (d *fakeVideoDecoder) CaptionSEI() [][]byte            { return nil }
func (d *fakeVideoDecoder) Close() error                    { return nil }

type fakeContainer struct {
	info        track.Info
	audioTracks int
	videoTracks int
	closed      bool
}

func (c *fakeContainer) Info() track.Info      { return c.info }
func (c *fakeContainer) CountAudioTracks() int { return c.audioTracks }
func (c *fakeContainer) CountVideoTracks() int { return c.videoTracks }
func (c *fakeContainer) OpenAudioTrack(i int) (audiotrack.Decoder, int64, error) {
	return fakeAudioDecoder{}, 480000, nil
}
func (c *fakeContainer) OpenVideoTrack(i int) (videotrack.Decoder, error) {
	return &fakeVideoDecoder{count: 250}, nil
}
func (c *fakeContainer) Close() error {
	c.closed = true
	return nil
}

func TestTrackIndexingAcrossContainers(t *testing.T) {
	t.Parallel()
	a := &fakeContainer{info: track.Info{FileFormat: "mp4"}, audioTracks: 1, videoTracks: 1}
	b := &fakeContainer{audioTracks: 2, videoTracks: 0}

	bitmap := Bitmap{Data: make([]byte, 320*240*4), Width: 320, Height: 240, ColorSpace: format.RGB32, BytesPerRow: 320 * 4}

	sup, err := New([]Container{a, b}, []Bitmap{bitmap}, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := sup.CountAudioTracks(); got != 3 {
		t.Fatalf("CountAudioTracks() = %d, want 3", got)
	}
	if got := sup.CountVideoTracks(); got != 2 {
		t.Fatalf("CountVideoTracks() = %d, want 2 (1 container + 1 bitmap)", got)
	}
	if sup.Info().FileFormat != "mp4" {
		t.Fatalf("Info() = %+v, want attributes from first container", sup.Info())
	}

	if _, err := sup.CreateAudioTrackForIndex(2); err != nil {
		t.Fatalf("CreateAudioTrackForIndex(2) (second container's second track): %v", err)
	}
	if _, err := sup.CreateAudioTrackForIndex(3); err == nil {
		t.Fatalf("CreateAudioTrackForIndex(3) should be out of range")
	}

	vid, err := sup.CreateVideoTrackForIndex(0)
	if err != nil {
		t.Fatalf("CreateVideoTrackForIndex(0): %v", err)
	}
	if w, h := vid.Bounds(); w != 320 || h != 240 {
		t.Fatalf("Bounds() = (%d,%d), want (320,240)", w, h)
	}

	img, err := sup.CreateVideoTrackForIndex(1)
	if err != nil {
		t.Fatalf("CreateVideoTrackForIndex(1) (bitmap): %v", err)
	}
	if w, h := img.Bounds(); w != 320 || h != 240 {
		t.Fatalf("image track Bounds() = (%d,%d), want (320,240)", w, h)
	}

	if err := sup.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Fatalf("Close() did not close all containers")
	}
}
