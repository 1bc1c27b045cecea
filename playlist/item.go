// Package playlist implements the ordered, observable collection of
// playable items a controller drives (§3 "Playlist", §4.9 "Playlist
// operations"): items, listener fan-out, import with sibling binding,
// and the binary/text archive formats.
package playlist

import (
	"sync"
	"time"
)

// Attribute keys for a playlist item's typed bag (§3 Playlist item).
// Duration, Track, Year, and Rating are stored as int64/int32; the rest
// are strings.
const (
	AttrName         = "Name"
	AttrKeywords     = "Keywords"
	AttrArtist       = "Artist"
	AttrAuthor       = "Author"
	AttrAlbum        = "Album"
	AttrTitle        = "Title"
	AttrAudioBitrate = "AudioBitrate"
	AttrVideoBitrate = "VideoBitrate"
	AttrDuration     = "Duration"
	AttrTrack        = "Track"
	AttrYear         = "Year"
	AttrRating       = "Rating"
)

// DurationProber computes a playable item's duration by opening it
// through the track-supplier stack just long enough to read its length.
// Implemented by whatever wires package playlist to package
// track/mediafile, kept as an injected interface so this package never
// imports the track stack directly (mirrors track/mediafile.Container
// being injected rather than concrete).
type DurationProber interface {
	ProbeDuration(uri string) (time.Duration, error)
}

// Item is one playable playlist entry: a media file reference or a
// network URL, plus the typed attribute bag, icon, and playback-failed
// flag every concrete variant shares (§3 Playlist item).
type Item interface {
	// URI returns the item's canonical location: an absolute path for a
	// FileItem, or the URL string for a URLItem.
	URI() string

	// Duration is computed lazily on first call via prober and cached
	// thereafter (§3 invariant). A nil prober yields (0, nil) — the zero
	// value, not an error, so callers that don't care about duration
	// don't need one wired up.
	Duration(prober DurationProber) (time.Duration, error)

	Attribute(key string) (any, bool)
	SetAttribute(key string, value any)

	PlaybackFailed() bool
	SetPlaybackFailed(bool)

	// ExtraMedia lists sibling media/image refs bound onto this item
	// during import (§4.9 sibling binding): e.g. a `.srt` or cover image
	// found beside a `.mp4`.
	ExtraMedia() []string
	AddExtraMedia(uri string)
}

// itemCommon is embedded by every concrete Item to share the attribute
// bag, lazy duration cache, and extra-media list.
type itemCommon struct {
	mu             sync.Mutex
	attrs          map[string]any
	extraMedia     []string
	playbackFailed bool

	durationKnown bool
	duration      time.Duration
}

func (c *itemCommon) Attribute(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.attrs[key]
	return v, ok
}

func (c *itemCommon) SetAttribute(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attrs == nil {
		c.attrs = make(map[string]any)
	}
	c.attrs[key] = value
}

func (c *itemCommon) PlaybackFailed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playbackFailed
}

func (c *itemCommon) SetPlaybackFailed(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playbackFailed = v
}

func (c *itemCommon) ExtraMedia() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.extraMedia...)
}

func (c *itemCommon) AddExtraMedia(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extraMedia = append(c.extraMedia, uri)
}

func (c *itemCommon) probeDuration(uri string, prober DurationProber) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.durationKnown {
		return c.duration, nil
	}
	if prober == nil {
		return 0, nil
	}
	d, err := prober.ProbeDuration(uri)
	if err != nil {
		return 0, err
	}
	c.duration = d
	c.durationKnown = true
	return d, nil
}

// FileItem is a playlist item backed by a local file path.
type FileItem struct {
	itemCommon
	Path string
}

// NewFileItem returns a FileItem for path.
func NewFileItem(path string) *FileItem {
	return &FileItem{Path: path}
}

func (i *FileItem) URI() string { return i.Path }

func (i *FileItem) Duration(prober DurationProber) (time.Duration, error) {
	return i.probeDuration(i.Path, prober)
}

// URLItem is a playlist item backed by a network URL (§3, playing via
// package netsource).
type URLItem struct {
	itemCommon
	URL string
}

// NewURLItem returns a URLItem for rawURL.
func NewURLItem(rawURL string) *URLItem {
	return &URLItem{URL: rawURL}
}

func (i *URLItem) URI() string { return i.URL }

func (i *URLItem) Duration(prober DurationProber) (time.Duration, error) {
	return i.probeDuration(i.URL, prober)
}
