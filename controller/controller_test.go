package controller

import (
	"testing"
	"time"

	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/format"
	"github.com/zsiec/playcore/playlist"
	"github.com/zsiec/playcore/track"
)

// fakeAudioTrack is a minimal track.AudioTrackSupplier for controller
// tests: it never produces real samples, only format/duration metadata.
type fakeAudioTrack struct {
	dur    time.Duration
	closed bool
}

func (f *fakeAudioTrack) Format() format.RawAudioFormat {
	return format.RawAudioFormat{SampleKind: format.Int16, Channels: 2, FrameRate: 44100}
}
func (f *fakeAudioTrack) InitialLatency() time.Duration          { return 0 }
func (f *fakeAudioTrack) Read(_ []byte, _ int64, _ int) error    { return nil }
func (f *fakeAudioTrack) EncodedFormat() format.EncodedAudioFormat { return format.EncodedAudioFormat{} }
func (f *fakeAudioTrack) DecodedFormat() format.RawAudioFormat   { return f.Format() }
func (f *fakeAudioTrack) Duration() time.Duration                { return f.dur }
func (f *fakeAudioTrack) Close() error                            { f.closed = true; return nil }

// fakeVideoTrack is a minimal track.VideoTrackSupplier for controller
// tests.
type fakeVideoTrack struct {
	dur       time.Duration
	rate      float64
	current   int64
	keyframes map[int64]int64
	closed    bool
}

func (f *fakeVideoTrack) Bounds() (int, int)             { return 640, 480 }
func (f *fakeVideoTrack) ColorSpace() format.ColorSpace  { return format.YCbCr422 }
func (f *fakeVideoTrack) BytesPerRow() int               { return 640 * 2 }
func (f *fakeVideoTrack) CurrentFrame() int64            { return f.current }
func (f *fakeVideoTrack) Duration() time.Duration        { return f.dur }
func (f *fakeVideoTrack) FrameRate() float64             { return f.rate }
func (f *fakeVideoTrack) ReadFrame(buffer []byte, _ format.RawVideoFormat) (time.Duration, bool, error) {
	f.current++
	return 0, false, nil
}
func (f *fakeVideoTrack) FindKeyFrameForFrame(frame int64) (int64, error) {
	if kf, ok := f.keyframes[frame]; ok {
		return kf, nil
	}
	return frame, nil
}
func (f *fakeVideoTrack) SeekToFrame(frame int64) (int64, error) {
	f.current = frame
	return frame, nil
}
func (f *fakeVideoTrack) SeekToTime(pts time.Duration) error { return nil }
func (f *fakeVideoTrack) Close() error                       { f.closed = true; return nil }

// fakeSupplier is a minimal track.Supplier backing a fakeSupplierFactory.
type fakeSupplier struct {
	audioTracks []*fakeAudioTrack
	videoTracks []*fakeVideoTrack
	closed      bool
}

func (s *fakeSupplier) Info() track.Info            { return track.Info{} }
func (s *fakeSupplier) CountAudioTracks() int        { return len(s.audioTracks) }
func (s *fakeSupplier) CountVideoTracks() int        { return len(s.videoTracks) }
func (s *fakeSupplier) CountSubtitleTracks() int     { return 0 }
func (s *fakeSupplier) CreateAudioTrackForIndex(i int) (track.AudioTrackSupplier, error) {
	if i < 0 || i >= len(s.audioTracks) {
		return nil, errs.New(errs.BadIndex, "audio index %d out of range", i)
	}
	return s.audioTracks[i], nil
}
func (s *fakeSupplier) CreateVideoTrackForIndex(i int) (track.VideoTrackSupplier, error) {
	if i < 0 || i >= len(s.videoTracks) {
		return nil, errs.New(errs.BadIndex, "video index %d out of range", i)
	}
	return s.videoTracks[i], nil
}
func (s *fakeSupplier) SubTitleTrackForIndex(i int) (track.SubtitleIndex, error) {
	return nil, errs.New(errs.BadIndex, "no subtitle tracks")
}
func (s *fakeSupplier) Close() error { s.closed = true; return nil }

type fakeFactory struct {
	supplier *fakeSupplier
	err      error
}

func (f *fakeFactory) OpenItem(item playlist.Item) (track.Supplier, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.supplier, nil
}

// fakeListener records every notification it receives, guarded by a
// channel rather than a mutex so tests can wait on async delivery without
// sleeping.
type fakeListener struct {
	fileChanged chan error
	stateChanged chan State
	positions    chan float64
	seeksHandled chan int64
}

func newFakeListener() *fakeListener {
	return &fakeListener{
		fileChanged:  make(chan error, 16),
		stateChanged: make(chan State, 16),
		positions:    make(chan float64, 64),
		seeksHandled: make(chan int64, 16),
	}
}

func (l *fakeListener) FileFinished()                    {}
func (l *fakeListener) FileChanged(_ playlist.Item, err error) { l.fileChanged <- err }
func (l *fakeListener) VideoTrackChanged(int)             {}
func (l *fakeListener) AudioTrackChanged(int)             {}
func (l *fakeListener) SubTitleTrackChanged(int)          {}
func (l *fakeListener) VideoStatsChanged()                {}
func (l *fakeListener) AudioStatsChanged()                {}
func (l *fakeListener) PlaybackStateChanged(s State)      { l.stateChanged <- s }
func (l *fakeListener) PositionChanged(p float64)         { l.positions <- p }
func (l *fakeListener) SeekHandled(f int64)               { l.seeksHandled <- f }
func (l *fakeListener) VolumeChanged(float64)             {}
func (l *fakeListener) MutedChanged(bool)                 {}

func waitFor[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		var zero T
		return zero
	}
}

func TestSetToLoadsAudioAndVideoTracks(t *testing.T) {
	t.Parallel()

	supplier := &fakeSupplier{
		audioTracks: []*fakeAudioTrack{{dur: 10 * time.Second}},
		videoTracks: []*fakeVideoTrack{{dur: 9 * time.Second, rate: 30}},
	}
	c := New(&fakeFactory{supplier: supplier}, nil, nil)
	defer c.Close()
	l := newFakeListener()
	c.AddListener(l)

	item := playlist.NewFileItem("/movies/clip.mp4")
	if err := c.SetTo(item); err != nil {
		t.Fatalf("SetTo: %v", err)
	}

	if err := waitFor(t, l.fileChanged); err != nil {
		t.Fatalf("FileChanged carried error: %v", err)
	}
	if !c.HasFile() {
		t.Fatal("HasFile() = false after successful SetTo")
	}
	if got := c.TimeDuration(); got != 10*time.Second {
		t.Fatalf("TimeDuration() = %v, want 10s (max of audio/video)", got)
	}
	if got := c.CurrentAudioTrack(); got != 0 {
		t.Fatalf("CurrentAudioTrack() = %d, want 0", got)
	}
	if got := c.CurrentVideoTrack(); got != 0 {
		t.Fatalf("CurrentVideoTrack() = %d, want 0", got)
	}
}

func TestSetToFailsWithNoTracks(t *testing.T) {
	t.Parallel()

	supplier := &fakeSupplier{}
	c := New(&fakeFactory{supplier: supplier}, nil, nil)
	defer c.Close()
	l := newFakeListener()
	c.AddListener(l)

	item := playlist.NewFileItem("/movies/empty.mp4")
	err := c.SetTo(item)
	if !errs.Is(err, errs.NoHandler) {
		t.Fatalf("SetTo error = %v, want errs.NoHandler", err)
	}
	if got := waitFor(t, l.fileChanged); !errs.Is(got, errs.NoHandler) {
		t.Fatalf("FileChanged error = %v, want errs.NoHandler", got)
	}
}

func TestSetToAudioOnlyTolerantOfMissingVideoTrack(t *testing.T) {
	t.Parallel()

	supplier := &fakeSupplier{
		audioTracks: []*fakeAudioTrack{{dur: 3 * time.Second}},
	}
	c := New(&fakeFactory{supplier: supplier}, nil, nil)
	defer c.Close()

	if err := c.SetTo(playlist.NewFileItem("/music/track.flac")); err != nil {
		t.Fatalf("SetTo: %v", err)
	}
	if c.CurrentVideoTrack() != -1 {
		t.Fatalf("CurrentVideoTrack() = %d, want -1 for an audio-only item", c.CurrentVideoTrack())
	}
	if c.CurrentAudioTrack() != 0 {
		t.Fatalf("CurrentAudioTrack() = %d, want 0", c.CurrentAudioTrack())
	}
}

func TestPlayPauseStopReportState(t *testing.T) {
	t.Parallel()

	supplier := &fakeSupplier{audioTracks: []*fakeAudioTrack{{dur: time.Second}}}
	c := New(&fakeFactory{supplier: supplier}, nil, nil)
	defer c.Close()
	l := newFakeListener()
	c.AddListener(l)

	if err := c.SetTo(playlist.NewFileItem("/a.mp3")); err != nil {
		t.Fatalf("SetTo: %v", err)
	}
	waitFor(t, l.fileChanged)

	c.Play()
	if got := waitFor(t, l.stateChanged); got != StatePlaying {
		t.Fatalf("state = %v, want playing", got)
	}
	if c.PlaybackState() != StatePlaying {
		t.Fatalf("PlaybackState() = %v, want playing", c.PlaybackState())
	}

	c.Pause()
	if got := waitFor(t, l.stateChanged); got != StatePaused {
		t.Fatalf("state = %v, want paused", got)
	}

	c.Stop()
	if got := waitFor(t, l.stateChanged); got != StateStopped {
		t.Fatalf("state = %v, want stopped", got)
	}
	if c.TimePosition() != 0 {
		t.Fatalf("TimePosition() = %v after Stop, want 0", c.TimePosition())
	}
}

func TestSetFramePositionPendingSeekKeepsReportedPosition(t *testing.T) {
	t.Parallel()

	video := &fakeVideoTrack{dur: 20 * time.Second, rate: 25}
	supplier := &fakeSupplier{
		audioTracks: []*fakeAudioTrack{{dur: 20 * time.Second}},
		videoTracks: []*fakeVideoTrack{video},
	}
	c := New(&fakeFactory{supplier: supplier}, nil, nil)
	defer c.Close()
	l := newFakeListener()
	c.AddListener(l)

	if err := c.SetTo(playlist.NewFileItem("/movie.mp4")); err != nil {
		t.Fatalf("SetTo: %v", err)
	}
	waitFor(t, l.fileChanged)

	// Total frame count is 20s * 25fps = 500, well above the keyframe
	// snap threshold, and a fresh file starts at frame 0.
	target := int64(250)
	c.SetFramePosition(target)

	if got := c.TimePosition(); got != 10*time.Second {
		t.Fatalf("TimePosition() during pending seek = %v, want the requested 10s", got)
	}

	seeked := waitFor(t, l.seeksHandled)
	if seeked != target {
		t.Fatalf("SeekHandled frame = %d, want %d", seeked, target)
	}
}

func TestSetFramePositionSnapsToKeyframeWhenFar(t *testing.T) {
	t.Parallel()

	video := &fakeVideoTrack{
		dur:       20 * time.Second,
		rate:      25,
		keyframes: map[int64]int64{250: 240},
	}
	supplier := &fakeSupplier{
		audioTracks: []*fakeAudioTrack{{dur: 20 * time.Second}},
		videoTracks: []*fakeVideoTrack{video},
	}
	c := New(&fakeFactory{supplier: supplier}, nil, nil)
	defer c.Close()
	l := newFakeListener()
	c.AddListener(l)

	if err := c.SetTo(playlist.NewFileItem("/movie.mp4")); err != nil {
		t.Fatalf("SetTo: %v", err)
	}
	waitFor(t, l.fileChanged)

	got := c.SetFramePosition(250)
	if got != 240 {
		t.Fatalf("SetFramePosition returned %d, want the snapped keyframe 240", got)
	}

	seeked := waitFor(t, l.seeksHandled)
	if seeked != 250 {
		t.Fatalf("SeekHandled still reports the originally requested frame; got %d, want 250", seeked)
	}
}

func TestVolumeClampsAndUnmutesOnSetVolume(t *testing.T) {
	t.Parallel()

	c := New(&fakeFactory{supplier: &fakeSupplier{}}, nil, nil)
	defer c.Close()

	c.SetVolume(3.0)
	if got := c.Volume(); got != 2.0 {
		t.Fatalf("Volume() = %v, want clamped to 2.0", got)
	}

	c.ToggleMute()
	if !c.Muted() {
		t.Fatal("Muted() = false after ToggleMute")
	}

	c.SetVolume(0.5)
	if c.Muted() {
		t.Fatal("Muted() = true after SetVolume, want SetVolume to unmute")
	}
	if got := c.Volume(); got != 0.5 {
		t.Fatalf("Volume() = %v, want 0.5", got)
	}
}

func TestSelectSubTitleTrackNegativeClears(t *testing.T) {
	t.Parallel()

	c := New(&fakeFactory{supplier: &fakeSupplier{}}, nil, nil)
	defer c.Close()

	if err := c.SelectSubTitleTrack(-1); err != nil {
		t.Fatalf("SelectSubTitleTrack(-1): %v", err)
	}
	if got := c.CurrentSubTitleTrack(); got != -1 {
		t.Fatalf("CurrentSubTitleTrack() = %d, want -1", got)
	}
}

func TestRemoveListenerStopsDelivery(t *testing.T) {
	t.Parallel()

	supplier := &fakeSupplier{audioTracks: []*fakeAudioTrack{{dur: time.Second}}}
	c := New(&fakeFactory{supplier: supplier}, nil, nil)
	defer c.Close()
	l := newFakeListener()
	c.AddListener(l)
	c.RemoveListener(l)

	if err := c.SetTo(playlist.NewFileItem("/a.mp3")); err != nil {
		t.Fatalf("SetTo: %v", err)
	}

	select {
	case err := <-l.fileChanged:
		t.Fatalf("removed listener still received FileChanged(%v)", err)
	case <-time.After(100 * time.Millisecond):
	}
}
