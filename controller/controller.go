// Package controller implements the playback coordinator (§4.7): it owns
// the current playlist item, the track-supplier stack, the audio/video
// proxy suppliers, and the volume/seek/track-selection state machine a
// scripting surface or UI drives. It implements playback.Manager so the
// audio proxy supplier can query it for scheduling, grounded on
// Controller.cpp/.h.
package controller

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/format"
	"github.com/zsiec/playcore/notify"
	"github.com/zsiec/playcore/playback"
	"github.com/zsiec/playcore/playlist"
	"github.com/zsiec/playcore/track"
)

// State is the controller's playback state (§4.7 PlaybackStateChanged).
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// defaultVideoFrameRate is used whenever a video track reports an
// invalid (<= 0) frame rate, and as the frame-domain base for
// audio-only items that have no video track at all (§4.7
// `Controller::SelectVideoTrack`'s fallback).
const defaultVideoFrameRate = 25.0

// keyframeSnapMinFrames and keyframeSnapMinDistance gate when
// SetFramePosition snaps to a keyframe rather than fine-seeking (§4.7).
const (
	keyframeSnapMinFrames   = 240
	keyframeSnapMinDistance = 5
)

// audioOutputFormat is the fixed PCM layout the audio proxy supplier
// produces for an output thread, standing in for the node-negotiated
// format the original receives from the media kit (out of scope here).
func audioOutputFormat() format.RawAudioFormat {
	return format.RawAudioFormat{
		SampleKind: format.Int16,
		ByteOrder:  format.LittleEndian,
		Channels:   2,
		FrameRate:  44100,
	}
}

// SupplierFactory opens the track-supplier stack for a playlist item,
// the Go-idiomatic stand-in for the original's
// `PlaylistItem::CreateTrackSupplier()` — promoted to an injected
// interface (rather than a method on playlist.Item) so package playlist
// stays decoupled from package track/mediafile, matching the
// DurationProber/SubtitleOpener/TrashMover boundaries established
// elsewhere in this module.
type SupplierFactory interface {
	OpenItem(item playlist.Item) (track.Supplier, error)
}

// SubtitleSink receives the subtitle text active at the current frame (or
// none), pushed by NotifyCurrentFrameChanged (§4.7, §4.8); implemented by
// whatever renders subtitles (e.g. a video view).
type SubtitleSink interface {
	SetSubtitle(text string, ok bool)
}

// Listener receives asynchronous notification of controller state
// changes, grounded on Controller::Listener.
type Listener interface {
	FileFinished()
	FileChanged(item playlist.Item, err error)

	VideoTrackChanged(index int)
	AudioTrackChanged(index int)
	SubTitleTrackChanged(index int)

	VideoStatsChanged()
	AudioStatsChanged()

	PlaybackStateChanged(state State)
	PositionChanged(position float64)
	SeekHandled(seekFrame int64)
	VolumeChanged(volume float64)
	MutedChanged(muted bool)
}

// Controller is the playback coordinator (§4.7). The zero value is not
// usable; use New.
type Controller struct {
	log     *slog.Logger
	post    *notify.Queue
	factory SupplierFactory
	sink    SubtitleSink

	mu sync.Mutex

	item          playlist.Item
	trackSupplier track.Supplier

	audioTrackSupplier track.AudioTrackSupplier
	videoTrackSupplier track.VideoTrackSupplier
	audioTrackIndex    int
	videoTrackIndex    int

	audioProxy *playback.AudioProxySupplier
	videoProxy *playback.VideoProxySupplier

	subtitleIndex      track.SubtitleIndex
	subtitleTrackIndex int

	currentFrame   int64
	duration       time.Duration
	videoFrameRate float64

	pendingSeekRequests int
	seekFrame           int64
	requestedSeekFrame  int64

	// wallAtAnchor/positionAtAnchor pin the wall-clock ↔ playlist-time
	// mapping NextPlayingInterval reports: positionAtAnchor was the
	// playback position when wall time wallAtAnchor was last observed.
	// anchorDirty forces the next NextPlayingInterval call to re-pin the
	// anchor at the caller's "from" rather than extrapolate from a stale
	// one, after a Play/seek. There is no BeOS-side method to ground
	// this scheduling against directly: the original's scheduler lives
	// in a PlaybackManager/NodeManager pair that isn't present in
	// original_source (its BMediaNode plumbing is out of scope here);
	// this bridges the already-built playback.Manager contract to the
	// same frame-position fields §4.7 describes.
	anchorDirty      bool
	wallAtAnchor     time.Duration
	positionAtAnchor time.Duration

	state           State
	autoplaySetting bool
	autoplay        bool

	volume float64
	muted  bool

	listenersMu sync.Mutex
	listeners   []Listener
}

// New returns a Controller with no item loaded, unmuted, at unity gain.
// factory opens the track-supplier stack for SetTo; sink (may be nil)
// receives subtitle text pushed by NotifyCurrentFrameChanged.
func New(factory SupplierFactory, sink SubtitleSink, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "controller")
	c := &Controller{
		log:                log,
		post:               notify.NewQueue(log),
		factory:            factory,
		sink:               sink,
		subtitleTrackIndex: -1,
		audioTrackIndex:    -1,
		videoTrackIndex:    -1,
		videoFrameRate:     defaultVideoFrameRate,
		volume:             1.0,
		seekFrame:          -1,
		requestedSeekFrame: -1,
	}
	c.audioProxy = playback.NewAudioProxySupplier(c, audioOutputFormat(), log)
	return c
}

// Close stops the controller's notification dispatch and releases the
// current track supplier, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	supplier := c.trackSupplier
	c.trackSupplier = nil
	c.mu.Unlock()
	if supplier != nil {
		_ = supplier.Close()
	}
	c.post.Close()
}

// AudioProxy returns the audio proxy supplier an audio output thread
// pulls from (§5 "Audio output thread").
func (c *Controller) AudioProxy() *playback.AudioProxySupplier { return c.audioProxy }

// VideoProxy returns the video proxy supplier a video output thread pulls
// from, or nil if the current item has no video track.
func (c *Controller) VideoProxy() *playback.VideoProxySupplier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.videoProxy
}

// CurrentVideoFormat reports the raw video format a caller should
// allocate a frame buffer in to drive VideoProxy().FillBuffer, or
// ok == false if no video track is currently selected.
func (c *Controller) CurrentVideoFormat() (format.RawVideoFormat, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.videoTrackSupplier == nil {
		return format.RawVideoFormat{}, false
	}
	w, h := c.videoTrackSupplier.Bounds()
	return format.RawVideoFormat{
		PixelFormat:   c.videoTrackSupplier.ColorSpace(),
		DisplayWidth:  w,
		DisplayHeight: h,
		BytesPerRow:   c.videoTrackSupplier.BytesPerRow(),
		FieldRate:     c.videoFrameRate,
	}, true
}

// Item returns the currently loaded playlist item, or nil.
func (c *Controller) Item() playlist.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.item
}

// HasFile reports whether a track supplier is currently loaded.
func (c *Controller) HasFile() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trackSupplier != nil
}

// SetTo loads item, tearing down and rebuilding the track-supplier stack
// (§4.7 `SetTo`). If item is already current, it either restarts playback
// from zero (autoplay) or is a no-op.
func (c *Controller) SetTo(item playlist.Item) error {
	c.mu.Lock()
	if c.item == item && c.trackSupplier != nil {
		autoplay := c.autoplay
		c.mu.Unlock()
		if autoplay {
			c.SetPosition(0)
			c.Play()
		}
		return nil
	}

	oldSupplier := c.trackSupplier
	oldAudioTrack := c.audioTrackSupplier
	oldVideoTrack := c.videoTrackSupplier

	c.item = item
	c.trackSupplier = nil
	c.audioTrackSupplier = nil
	c.videoTrackSupplier = nil
	c.audioTrackIndex = -1
	c.videoTrackIndex = -1
	c.subtitleIndex = nil
	c.subtitleTrackIndex = -1

	c.currentFrame = 0
	c.duration = 0
	c.videoFrameRate = defaultVideoFrameRate

	c.pendingSeekRequests = 0
	c.seekFrame = -1
	c.requestedSeekFrame = -1
	c.anchorDirty = true
	c.videoProxy = nil
	c.mu.Unlock()

	c.audioProxy.SetSupplier(nil, defaultVideoFrameRate)

	// The old chain is torn down only after everything above has been
	// disconnected from it, so a concurrent audio/video pull never
	// observes a half-built new chain or a supplier that outlives its
	// Close (§4.7 "never before — audio thread may be reading").
	closeTrack(oldAudioTrack)
	closeTrack(oldVideoTrack)
	if oldSupplier != nil {
		_ = oldSupplier.Close()
	}

	if item == nil {
		err := errs.New(errs.BadInput, "SetTo called with a nil item")
		c.notifyFileChanged(item, err)
		return err
	}

	supplier, err := c.factory.OpenItem(item)
	if err != nil {
		c.notifyFileChanged(item, err)
		return err
	}

	if supplier.CountAudioTracks() == 0 && supplier.CountVideoTracks() == 0 {
		_ = supplier.Close()
		err := errs.New(errs.NoHandler, "no audio or video tracks in %q", item.URI())
		c.notifyFileChanged(item, err)
		return err
	}

	c.mu.Lock()
	c.trackSupplier = supplier
	c.mu.Unlock()

	if err := c.selectAudioTrack(0); err != nil && !errs.Is(err, errs.BadIndex) {
		c.failSetTo(item, supplier, err)
		return err
	}
	if err := c.selectVideoTrack(0); err != nil && !errs.Is(err, errs.BadIndex) {
		c.failSetTo(item, supplier, err)
		return err
	}

	c.mu.Lock()
	noTracks := c.audioTrackSupplier == nil && c.videoTrackSupplier == nil
	c.mu.Unlock()
	if noTracks {
		err := errs.New(errs.NoHandler, "no usable audio or video decoder for %q", item.URI())
		c.failSetTo(item, supplier, err)
		return err
	}

	c.notifyFileChanged(item, nil)

	c.mu.Lock()
	autoplay := c.autoplay
	c.mu.Unlock()
	if autoplay {
		c.Play()
	}
	return nil
}

func (c *Controller) failSetTo(item playlist.Item, supplier track.Supplier, err error) {
	c.mu.Lock()
	c.trackSupplier = nil
	c.mu.Unlock()
	_ = supplier.Close()
	c.notifyFileChanged(item, err)
}

func closeTrack(t interface{ Close() error }) {
	if t == nil {
		return
	}
	_ = t.Close()
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// selectAudioTrack opens audio track n and wires it into the audio proxy,
// recomputing duration (§4.7).
func (c *Controller) selectAudioTrack(n int) error {
	c.mu.Lock()
	supplier := c.trackSupplier
	c.mu.Unlock()
	if supplier == nil {
		return errs.New(errs.NoInit, "no track supplier loaded")
	}

	audioTrack, err := supplier.CreateAudioTrackForIndex(n)
	if err != nil {
		return err
	}

	c.mu.Lock()
	old := c.audioTrackSupplier
	c.audioTrackSupplier = audioTrack
	c.audioTrackIndex = n
	videoDuration := time.Duration(0)
	if c.videoTrackSupplier != nil {
		videoDuration = c.videoTrackSupplier.Duration()
	}
	c.duration = maxDuration(audioTrack.Duration(), videoDuration)
	rate := c.videoFrameRate
	c.mu.Unlock()

	closeTrack(old)
	c.audioProxy.SetSupplier(audioTrack, rate)
	c.notifyAudioTrackChanged(n)
	return nil
}

// selectVideoTrack opens video track n and wires it into the video proxy,
// recomputing duration and the controller's frame rate (§4.7).
func (c *Controller) selectVideoTrack(n int) error {
	c.mu.Lock()
	supplier := c.trackSupplier
	c.mu.Unlock()
	if supplier == nil {
		return errs.New(errs.NoInit, "no track supplier loaded")
	}

	videoTrack, err := supplier.CreateVideoTrackForIndex(n)
	if err != nil {
		return err
	}

	rate := videoTrack.FrameRate()
	if rate <= 0 {
		c.log.Warn("invalid video frame rate, using default", "index", n, "rate", rate)
		rate = defaultVideoFrameRate
	}

	c.mu.Lock()
	old := c.videoTrackSupplier
	c.videoTrackSupplier = videoTrack
	c.videoTrackIndex = n
	c.videoFrameRate = rate
	audioDuration := time.Duration(0)
	if c.audioTrackSupplier != nil {
		audioDuration = c.audioTrackSupplier.Duration()
	}
	c.duration = maxDuration(audioDuration, videoTrack.Duration())
	c.videoProxy = playback.NewVideoProxySupplier(videoTrack)
	c.mu.Unlock()

	closeTrack(old)
	// A changed frame rate invalidates the audio proxy's frame↔time
	// conversions (§4.2's resampler is parameterized per interval using
	// this value), so it is refreshed even though the audio track itself
	// didn't change.
	c.audioProxy.SetSupplier(c.currentAudioTrack(), rate)
	c.notifyVideoTrackChanged(n)
	return nil
}

func (c *Controller) currentAudioTrack() track.AudioTrackSupplier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audioTrackSupplier
}

// AudioTrackCount, VideoTrackCount, SubTitleTrackCount report the current
// item's track counts (§4.7), or 0 if no item is loaded.
func (c *Controller) AudioTrackCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trackSupplier == nil {
		return 0
	}
	return c.trackSupplier.CountAudioTracks()
}

func (c *Controller) VideoTrackCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trackSupplier == nil {
		return 0
	}
	return c.trackSupplier.CountVideoTracks()
}

func (c *Controller) SubTitleTrackCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trackSupplier == nil {
		return 0
	}
	return c.trackSupplier.CountSubtitleTracks()
}

// SelectAudioTrack, SelectVideoTrack switch to track n of the current
// item (§4.7).
func (c *Controller) SelectAudioTrack(n int) error { return c.selectAudioTrack(n) }
func (c *Controller) SelectVideoTrack(n int) error { return c.selectVideoTrack(n) }

// SelectSubTitleTrack switches to subtitle track n, or clears the active
// subtitle track when n < 0 (§4.7).
func (c *Controller) SelectSubTitleTrack(n int) error {
	c.mu.Lock()
	supplier := c.trackSupplier
	c.mu.Unlock()

	if n < 0 {
		c.mu.Lock()
		c.subtitleIndex = nil
		c.subtitleTrackIndex = -1
		c.mu.Unlock()
		c.pushSubtitleForCurrentFrame()
		c.notifySubTitleTrackChanged(-1)
		return nil
	}

	if supplier == nil {
		return errs.New(errs.NoInit, "no track supplier loaded")
	}

	idx, err := supplier.SubTitleTrackForIndex(n)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.subtitleIndex = idx
	c.subtitleTrackIndex = n
	c.mu.Unlock()

	c.pushSubtitleForCurrentFrame()
	c.notifySubTitleTrackChanged(n)
	return nil
}

// CurrentAudioTrack, CurrentVideoTrack, CurrentSubTitleTrack report the
// selected track index, or -1 if none is selected.
func (c *Controller) CurrentSubTitleTrack() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtitleTrackIndex
}

func (c *Controller) CurrentAudioTrack() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.audioTrackSupplier == nil {
		return -1
	}
	return c.audioTrackIndex
}

func (c *Controller) CurrentVideoTrack() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.videoTrackSupplier == nil {
		return -1
	}
	return c.videoTrackIndex
}

// SubTitleTrackName returns a display name for subtitle track n, derived
// from its sibling file path (§4.9 sibling binding), or "" if there is no
// such track.
func (c *Controller) SubTitleTrackName(n int) string {
	c.mu.Lock()
	item := c.item
	c.mu.Unlock()
	if item == nil {
		return ""
	}
	paths := subtitlePaths(item)
	if n < 0 || n >= len(paths) {
		return ""
	}
	base := filepath.Base(paths[n])
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func subtitlePaths(item playlist.Item) []string {
	var paths []string
	for _, uri := range item.ExtraMedia() {
		if strings.EqualFold(filepath.Ext(uri), ".srt") {
			paths = append(paths, uri)
		}
	}
	return paths
}

// #pragma mark - playback state

// Stop halts playback and rewinds to the start (§4.7).
func (c *Controller) Stop() {
	c.setState(StateStopped)
	c.SetPosition(0)
	c.mu.Lock()
	c.autoplay = c.autoplaySetting
	c.mu.Unlock()
}

// Play starts or resumes playback; the item keeps playing once this one
// finishes, until Stop or Pause says otherwise (§4.7 `autoplay`).
func (c *Controller) Play() {
	c.mu.Lock()
	c.autoplay = true
	c.anchorDirty = true
	c.mu.Unlock()
	c.setState(StatePlaying)
}

// Pause suspends playback at the current position (§4.7).
func (c *Controller) Pause() {
	c.mu.Lock()
	c.autoplay = c.autoplaySetting
	c.mu.Unlock()
	c.setState(StatePaused)
}

// TogglePlaying switches between playing and paused (§4.7).
func (c *Controller) TogglePlaying() {
	c.mu.Lock()
	playing := c.state == StatePlaying
	c.mu.Unlock()
	if playing {
		c.Pause()
	} else {
		c.Play()
	}
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	c.mu.Unlock()
	if changed {
		c.notifyPlaybackStateChanged(state)
	}
}

// PlaybackState reports whether the controller is stopped, playing, or
// paused (§4.7).
func (c *Controller) PlaybackState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TimeDuration reports the current item's duration (§4.7).
func (c *Controller) TimeDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// TimePosition reports the current playback position, pinned to the
// requested seek target while a seek is still pending so observers don't
// see the position jump backward before the seek lands (§4.7).
func (c *Controller) TimePosition() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timePositionLocked()
}

func (c *Controller) timePositionLocked() time.Duration {
	if c.duration == 0 {
		return 0
	}
	frame := c.currentFrame
	if c.pendingSeekRequests > 0 {
		frame = c.requestedSeekFrame
	}
	fd := c.frameDurationLocked()
	if fd == 0 {
		return 0
	}
	return time.Duration(frame) * c.duration / time.Duration(fd)
}

// frameDurationLocked returns the item's duration expressed as a frame
// count at the controller's video frame rate (§4.7 `_FrameDuration`):
// confusingly this is a frame count even for audio-only items, since the
// seek/keyframe-snap thresholds below are expressed in frames.
func (c *Controller) frameDurationLocked() int64 {
	return int64(c.duration.Seconds() * c.videoFrameRate)
}

// #pragma mark - volume

// SetVolume sets linear gain, clamped to [0, 2]; unmutes first if muted
// (§4.7).
func (c *Controller) SetVolume(value float64) {
	c.mu.Lock()
	value = clampFloat(0, 2, value)
	if c.volume == value {
		c.mu.Unlock()
		return
	}
	wasMuted := c.muted
	c.volume = value
	c.mu.Unlock()

	if wasMuted {
		c.ToggleMute()
	}
	c.audioProxy.SetVolume(value)
	c.notifyVolumeChanged(value)
}

// VolumeUp, VolumeDown nudge the linear gain by 0.05 (§4.7).
func (c *Controller) VolumeUp()   { c.SetVolume(c.Volume() + 0.05) }
func (c *Controller) VolumeDown() { c.SetVolume(c.Volume() - 0.05) }

// ToggleMute silences or restores audio output without changing Volume
// (§4.7).
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	c.muted = !c.muted
	muted := c.muted
	volume := c.volume
	c.mu.Unlock()

	if muted {
		c.audioProxy.SetVolume(0)
	} else {
		c.audioProxy.SetVolume(volume)
	}
	c.notifyMutedChanged(muted)
}

// SetAutoplaySetting configures whether a freshly loaded or stopped item
// starts playing immediately, mirroring the original's global-settings
// listener (§4.7 `fAutoplaySetting`; global preference propagation
// itself is out of scope here).
func (c *Controller) SetAutoplaySetting(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoplaySetting = enabled
	if c.state != StatePlaying {
		c.autoplay = enabled
	}
}

// Volume reports the current linear gain, independent of mute state
// (§4.7).
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Muted reports whether audio output is currently silenced.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// #pragma mark - seeking

// SetPosition seeks to a fraction (0..1) of the item's duration (§4.7).
func (c *Controller) SetPosition(fraction float64) int64 {
	c.mu.Lock()
	target := int64(float64(c.frameDurationLocked()) * fraction)
	c.mu.Unlock()
	return c.SetFramePosition(target)
}

// SetTimePosition seeks to an absolute time offset (§4.7).
func (c *Controller) SetTimePosition(value time.Duration) int64 {
	c.mu.Lock()
	duration := c.duration
	c.mu.Unlock()
	if duration == 0 {
		return c.SetPosition(0)
	}
	return c.SetPosition(float64(value) / float64(duration))
}

// SetFramePosition seeks to frame value, clamped to the item's frame
// range. A request close to the current frame (or on a short item) seeks
// exactly; otherwise it snaps to the nearest keyframe at or before the
// target for a snappier seek, while TimePosition keeps reporting the
// originally requested frame until the seek lands (§4.7, §8 "seek
// snapping" property).
func (c *Controller) SetFramePosition(value int64) int64 {
	c.mu.Lock()
	c.pendingSeekRequests++
	total := c.frameDurationLocked()
	requested := clampInt64(0, total, value)
	c.requestedSeekFrame = requested
	seek := requested
	current := c.currentFrame
	videoTrack := c.videoTrackSupplier
	c.mu.Unlock()

	if total > keyframeSnapMinFrames && videoTrack != nil && absInt64(value-current) > keyframeSnapMinDistance {
		if kf, err := videoTrack.FindKeyFrameForFrame(seek); err == nil {
			seek = kf
		}
	}

	c.mu.Lock()
	c.seekFrame = seek
	c.mu.Unlock()

	if seek != current {
		c.mu.Lock()
		c.currentFrame = seek
		c.anchorDirty = true
		c.mu.Unlock()
		c.afterFrameChange(seek)
		// This port has no async decode/display loop that lands on a
		// keyframe and then silently catches up to the exact requested
		// frame before reporting completion (§4.7's NodeManager side is
		// out of scope here); listeners are told the seek landed as soon
		// as the snapped frame is current, reported against the
		// originally requested frame, matching what TimePosition already
		// showed callers while the seek was pending. This does NOT
		// decrement pendingSeekRequests: that counter tracks completion
		// callbacks from the player (NotifySeekHandled), a distinct,
		// currently-absent external component (§4.7, §8 scenario 6).
		c.notifySeekHandled(requested)
		return seek
	}

	c.notifySeekHandled(requested)
	return current
}

// #pragma mark - frame notifications

// NotifyCurrentFrameChanged reports that playback has reached frame,
// driven by whatever pulls from the audio/video proxy suppliers. It
// updates the reported position and pushes the active subtitle, if any
// (§4.7, §4.8).
func (c *Controller) NotifyCurrentFrameChanged(frame int64) {
	c.mu.Lock()
	c.currentFrame = frame
	c.mu.Unlock()
	c.afterFrameChange(frame)
}

// afterFrameChange recomputes the position fraction and active subtitle
// for frame, and fires the corresponding notifications. Callers must
// already have stored frame into currentFrame.
func (c *Controller) afterFrameChange(frame int64) {
	c.mu.Lock()
	duration := c.duration
	timePos := c.timePositionLocked()
	subIdx := c.subtitleIndex
	c.mu.Unlock()

	var fraction float64
	if duration > 0 {
		fraction = timePos.Seconds() / duration.Seconds()
	}
	c.notifyPositionChanged(fraction)
	c.pushSubtitleAt(subIdx, timePos)
}

func (c *Controller) pushSubtitleForCurrentFrame() {
	c.mu.Lock()
	subIdx := c.subtitleIndex
	timePos := c.timePositionLocked()
	c.mu.Unlock()
	c.pushSubtitleAt(subIdx, timePos)
}

func (c *Controller) pushSubtitleAt(subIdx track.SubtitleIndex, at time.Duration) {
	if c.sink == nil {
		return
	}
	if subIdx == nil {
		c.sink.SetSubtitle("", false)
		return
	}
	text, ok := subIdx.At(at)
	c.sink.SetSubtitle(text, ok)
}

// NotifyStopFrameReached reports that the current item played to its
// end; the controller does not self-advance the playlist (§4.7 — that is
// the caller's job, driven by the FileFinished notification).
func (c *Controller) NotifyStopFrameReached() {
	c.notifyFileFinished()
}

// NotifySeekHandled reports that a previously requested seek to
// seekedFrame has now taken effect, called from the player once its own
// async seek completes (§4.7). It decrements the pending-seek counter
// when one is outstanding, but always fires the listener notification —
// a player reporting completion after the counter has already reached
// zero (e.g. a stale or duplicate callback) must still be heard, not
// silently dropped.
func (c *Controller) NotifySeekHandled(seekedFrame int64) {
	c.mu.Lock()
	if c.pendingSeekRequests > 0 {
		c.pendingSeekRequests--
		if c.pendingSeekRequests == 0 {
			c.seekFrame = -1
			c.requestedSeekFrame = -1
		}
	}
	c.mu.Unlock()
	c.notifySeekHandled(seekedFrame)
}

// #pragma mark - playback.Manager

// NextPlayingInterval implements playback.Manager (§4.2): while playing,
// it reports a single interval spanning the whole request, mapping wall
// time linearly onto playlist position anchored at the last known
// position; while paused or stopped, it reports silence.
func (c *Controller) NextPlayingInterval(from, until time.Duration) (playback.PlayingInterval, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying {
		pos := c.positionLocked()
		return playback.PlayingInterval{TStart: from, TEnd: until, XStart: pos, XEnd: pos, Speed: 0}, nil
	}

	if c.anchorDirty {
		c.wallAtAnchor = from
		c.positionAtAnchor = c.positionLocked()
		c.anchorDirty = false
	}

	return playback.PlayingInterval{
		TStart: from,
		TEnd:   until,
		XStart: c.positionAtAnchor + (from - c.wallAtAnchor),
		XEnd:   c.positionAtAnchor + (until - c.wallAtAnchor),
		Speed:  1,
	}, nil
}

// SetAudioTime implements playback.Manager: it commits the playlist
// position the most recent pull actually reached back into currentFrame,
// closing the loop an audio-only item would otherwise never reach
// (§4.7 NotifyCurrentFrameChanged).
func (c *Controller) SetAudioTime(t time.Duration) {
	c.mu.Lock()
	if c.state != StatePlaying || c.anchorDirty {
		c.mu.Unlock()
		return
	}
	pos := c.positionAtAnchor + (t - c.wallAtAnchor)
	rate := c.videoFrameRate
	c.mu.Unlock()

	frame := int64(pos.Seconds() * rate)
	c.NotifyCurrentFrameChanged(frame)
}

// positionLocked returns the current playback position as a time offset.
// Callers must hold c.mu.
func (c *Controller) positionLocked() time.Duration {
	if c.videoFrameRate <= 0 {
		return 0
	}
	return time.Duration(float64(c.currentFrame) / c.videoFrameRate * float64(time.Second))
}

// #pragma mark - listeners

// AddListener registers l for asynchronous notification of state changes.
func (c *Controller) AddListener(l Listener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, l)
}

// RemoveListener unregisters l; it is a no-op if l was never added.
func (c *Controller) RemoveListener(l Listener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	for i, have := range c.listeners {
		if have == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

func (c *Controller) snapshotListeners() []Listener {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	if len(c.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(c.listeners))
	copy(out, c.listeners)
	return out
}

func (c *Controller) notifyFileChanged(item playlist.Item, err error) {
	c.post.Post(func() {
		for _, l := range c.snapshotListeners() {
			l.FileChanged(item, err)
		}
	})
}

func (c *Controller) notifyFileFinished() {
	c.post.Post(func() {
		for _, l := range c.snapshotListeners() {
			l.FileFinished()
		}
	})
}

func (c *Controller) notifyAudioTrackChanged(index int) {
	c.post.Post(func() {
		for _, l := range c.snapshotListeners() {
			l.AudioTrackChanged(index)
		}
	})
}

func (c *Controller) notifyVideoTrackChanged(index int) {
	c.post.Post(func() {
		for _, l := range c.snapshotListeners() {
			l.VideoTrackChanged(index)
		}
	})
}

func (c *Controller) notifySubTitleTrackChanged(index int) {
	c.post.Post(func() {
		for _, l := range c.snapshotListeners() {
			l.SubTitleTrackChanged(index)
		}
	})
}

func (c *Controller) notifyPlaybackStateChanged(state State) {
	c.post.Post(func() {
		for _, l := range c.snapshotListeners() {
			l.PlaybackStateChanged(state)
		}
	})
}

func (c *Controller) notifyPositionChanged(fraction float64) {
	c.post.Post(func() {
		for _, l := range c.snapshotListeners() {
			l.PositionChanged(fraction)
		}
	})
}

func (c *Controller) notifySeekHandled(seekFrame int64) {
	c.post.Post(func() {
		for _, l := range c.snapshotListeners() {
			l.SeekHandled(seekFrame)
		}
	})
}

func (c *Controller) notifyVolumeChanged(volume float64) {
	c.post.Post(func() {
		for _, l := range c.snapshotListeners() {
			l.VolumeChanged(volume)
		}
	})
}

func (c *Controller) notifyMutedChanged(muted bool) {
	c.post.Post(func() {
		for _, l := range c.snapshotListeners() {
			l.MutedChanged(muted)
		}
	})
}

// #pragma mark - small helpers

func clampInt64(lo, hi, v int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
