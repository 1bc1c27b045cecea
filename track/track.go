// Package track defines the supplier interfaces that wrap a container's
// decoded tracks for the playback core: the top-level TrackSupplier that
// opens a container and indexes its audio/video/subtitle tracks, and the
// AudioTrackSupplier / VideoTrackSupplier contracts each individual track
// exposes (§3, §4.4, §4.6).
package track

import (
	"time"

	"github.com/zsiec/playcore/audio"
	"github.com/zsiec/playcore/format"
)

// Metadata is an arbitrary key/value attribute bag attached to a container
// (title, artist, etc.), mirroring the spec's "metadata bag" attribute.
type Metadata map[string]string

// Info carries the file-format level attributes a TrackSupplier exposes.
type Info struct {
	FileFormat string
	Copyright  string
	Metadata   Metadata
}

// Supplier opens a media container and indexes its tracks. Any factory it
// returns (audio/video track) stays valid while the Supplier is alive;
// destroying the Supplier invalidates all children (§3 invariant).
type Supplier interface {
	Info() Info

	CountAudioTracks() int
	CountVideoTracks() int
	CountSubtitleTracks() int

	// CreateAudioTrackForIndex returns an owning reference to the i-th
	// audio track. The caller is responsible for releasing it by calling
	// Close when done, before the Supplier itself is destroyed.
	CreateAudioTrackForIndex(i int) (AudioTrackSupplier, error)

	// CreateVideoTrackForIndex returns an owning reference to the i-th
	// video track (§4.6: may be a media-track or image-track supplier).
	CreateVideoTrackForIndex(i int) (VideoTrackSupplier, error)

	// SubTitleTrackForIndex returns a borrowed (non-owning) reference to
	// the i-th subtitle index; it is valid only while the Supplier is
	// alive and must not be closed by the caller.
	SubTitleTrackForIndex(i int) (SubtitleIndex, error)

	Close() error
}

// AudioTrackSupplier wraps a container-decoded audio track (§3 "Audio
// track supplier"). It extends audio.Reader with encoded/decoded format
// metadata and track duration.
type AudioTrackSupplier interface {
	audio.Reader

	EncodedFormat() format.EncodedAudioFormat
	DecodedFormat() format.RawAudioFormat
	Duration() time.Duration

	Close() error
}

// VideoTrackSupplier wraps a container-decoded video track (§3, §4.4).
type VideoTrackSupplier interface {
	Bounds() (width, height int)
	ColorSpace() format.ColorSpace
	BytesPerRow() int
	CurrentFrame() int64
	Duration() time.Duration

	// FrameRate reports the track's negotiated field rate, used by a
	// controller to convert between frame indices and wall-clock time
	// (§4.7 `videoFrameRate`). Suppliers with no inherent rate (e.g. a
	// looped still image) report 0; callers fall back to a default.
	FrameRate() float64

	// ReadFrame decodes exactly one frame into buffer, renegotiating the
	// format if targetFormat differs from the currently delivered one.
	// wasCached reports whether the call was satisfied from the
	// single-frame cache (§4.4 cover-art fast path) without touching the
	// decoder.
	ReadFrame(buffer []byte, targetFormat format.RawVideoFormat) (pts time.Duration, wasCached bool, err error)

	// FindKeyFrameForFrame returns the closest keyframe at or before f,
	// without seeking (§3 invariant: the returned frame is always ≤ f).
	FindKeyFrameForFrame(f int64) (int64, error)

	// SeekToFrame seeks so that the next ReadFrame yields frame f, or the
	// nearest keyframe at or before it when an exact seek isn't possible
	// (§4.4). It returns the frame index actually reached.
	SeekToFrame(f int64) (int64, error)

	SeekToTime(pts time.Duration) error

	Close() error
}

// SubtitleIndex is the read-only lookup surface a TrackSupplier exposes
// for a subtitle track (§4.8); the concrete implementation lives in
// package subtitle.
type SubtitleIndex interface {
	At(t time.Duration) (text string, ok bool)
}
