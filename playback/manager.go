// Package playback implements the audio and video proxy suppliers (§4.2,
// §4.5): the "playhead" that synchronizes audio output to wall-clock time
// via an external playback manager, and the video frame cache that
// tolerates small forward skips between display ticks.
package playback

import "time"

// PlayingInterval is one span of the supplier's pull schedule: wall-clock
// time `[TStart, TEnd)` maps to playlist time `[XStart, XEnd)` at the
// given signed Speed (§3 "Playing interval"). Speed zero means paused
// (silence); negative means reverse playback.
type PlayingInterval struct {
	TStart, TEnd time.Duration
	XStart, XEnd time.Duration
	Speed        float64
}

// Duration returns the interval's wall-clock span.
func (p PlayingInterval) Duration() time.Duration { return p.TEnd - p.TStart }

// Manager is the external collaborator that owns the virtual-time to
// playlist-time mapping (§2 "Playback manager"); the controller
// implements it and the audio proxy supplier queries it once per playing
// interval of a pull, then reports the new audio time once per pull.
type Manager interface {
	// NextPlayingInterval returns the next playing interval starting at
	// from and not extending past until. The returned interval's TStart
	// must equal from; TEnd must be > TStart and <= until.
	NextPlayingInterval(from, until time.Duration) (PlayingInterval, error)

	// SetAudioTime notifies the manager that the audio playhead has now
	// advanced to t, once a pull's intervals have all been accumulated.
	SetAudioTime(t time.Duration)
}
