// Package mediafile implements the media-file track supplier (§4.6): it
// aggregates one or more opened containers plus optional cover-art bitmaps
// and external subtitle files into the single track.Supplier a controller
// drives.
package mediafile

import (
	"log/slog"

	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/track"
	"github.com/zsiec/playcore/track/audiotrack"
	"github.com/zsiec/playcore/track/imagetrack"
	"github.com/zsiec/playcore/track/videotrack"
)

// SubtitleOpener parses an external subtitle file into a borrowed lookup
// index. Implemented by package subtitle.
type SubtitleOpener interface {
	Open(path string) (track.SubtitleIndex, error)
}

type trackRef struct {
	container int
	track     int
}

// Supplier implements track.Supplier by indexing audio and video tracks
// across all attached containers in insertion order, appending bitmap
// cover art as extra video tracks and external files as subtitle tracks
// (§4.6).
type Supplier struct {
	log        *slog.Logger
	containers []Container
	bitmaps    []Bitmap

	audioMap []trackRef
	videoMap []trackRef

	subtitles []track.SubtitleIndex
}

// New opens a media-file track supplier over containers (already opened,
// in insertion order), appends bitmaps as extra looped video tracks, and
// parses subtitlePaths via opener into borrowed subtitle indexes.
func New(containers []Container, bitmaps []Bitmap, subtitlePaths []string, opener SubtitleOpener, log *slog.Logger) (*Supplier, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Supplier{
		log:        log.With("component", "mediafile-supplier"),
		containers: containers,
		bitmaps:    bitmaps,
	}

	for ci, c := range containers {
		for ti := 0; ti < c.CountAudioTracks(); ti++ {
			s.audioMap = append(s.audioMap, trackRef{container: ci, track: ti})
		}
		for ti := 0; ti < c.CountVideoTracks(); ti++ {
			s.videoMap = append(s.videoMap, trackRef{container: ci, track: ti})
		}
	}

	if opener != nil {
		for _, path := range subtitlePaths {
			idx, err := opener.Open(path)
			if err != nil {
				return nil, errs.Wrap(err, "open subtitle file %q", path)
			}
			s.subtitles = append(s.subtitles, idx)
		}
	}

	return s, nil
}

// Info reports the first container's attributes, per §4.6 ("Attributes
// and metadata come from the first container").
func (s *Supplier) Info() track.Info {
	if len(s.containers) == 0 {
		return track.Info{}
	}
	return s.containers[0].Info()
}

func (s *Supplier) CountAudioTracks() int { return len(s.audioMap) }

func (s *Supplier) CountVideoTracks() int { return len(s.videoMap) + len(s.bitmaps) }

func (s *Supplier) CountSubtitleTracks() int { return len(s.subtitles) }

func (s *Supplier) CreateAudioTrackForIndex(i int) (track.AudioTrackSupplier, error) {
	if i < 0 || i >= len(s.audioMap) {
		return nil, errs.New(errs.BadIndex, "audio track index %d out of range [0,%d)", i, len(s.audioMap))
	}
	ref := s.audioMap[i]
	decoder, frameCount, err := s.containers[ref.container].OpenAudioTrack(ref.track)
	if err != nil {
		return nil, errs.Wrap(err, "open audio track %d of container %d", ref.track, ref.container)
	}
	return audiotrack.New(decoder, frameCount), nil
}

// CreateVideoTrackForIndex returns a media-track video supplier for
// container-backed indices, or an image-track supplier once i reaches the
// appended bitmap range (§4.6).
func (s *Supplier) CreateVideoTrackForIndex(i int) (track.VideoTrackSupplier, error) {
	switch {
	case i < 0:
		return nil, errs.New(errs.BadIndex, "video track index %d negative", i)
	case i < len(s.videoMap):
		ref := s.videoMap[i]
		decoder, err := s.containers[ref.container].OpenVideoTrack(ref.track)
		if err != nil {
			return nil, errs.Wrap(err, "open video track %d of container %d", ref.track, ref.container)
		}
		return videotrack.New(decoder, s.log)
	case i < len(s.videoMap)+len(s.bitmaps):
		b := s.bitmaps[i-len(s.videoMap)]
		return imagetrack.New(b.Data, b.Width, b.Height, b.ColorSpace, b.BytesPerRow), nil
	default:
		return nil, errs.New(errs.BadIndex, "video track index %d out of range [0,%d)", i, len(s.videoMap)+len(s.bitmaps))
	}
}

func (s *Supplier) SubTitleTrackForIndex(i int) (track.SubtitleIndex, error) {
	if i < 0 || i >= len(s.subtitles) {
		return nil, errs.New(errs.BadIndex, "subtitle track index %d out of range [0,%d)", i, len(s.subtitles))
	}
	return s.subtitles[i], nil
}

// Close releases every attached container. Owning references to tracks
// created from this supplier must already be released by the caller
// before Close is called (§3 invariant).
func (s *Supplier) Close() error {
	var first error
	for _, c := range s.containers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
