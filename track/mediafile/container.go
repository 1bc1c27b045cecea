package mediafile

import (
	"github.com/zsiec/playcore/format"
	"github.com/zsiec/playcore/track"
	"github.com/zsiec/playcore/track/audiotrack"
	"github.com/zsiec/playcore/track/videotrack"
)

// Container is one opened read-only media file (§4.6). It is the external
// codec/demux collaborator a concrete binding supplies; out of scope to
// implement here (no new container parsers or codec implementations).
type Container interface {
	Info() track.Info

	CountAudioTracks() int
	CountVideoTracks() int

	// OpenAudioTrack opens the i-th audio track of this container,
	// returning a decoder and the track's total frame count.
	OpenAudioTrack(i int) (audiotrack.Decoder, int64, error)

	// OpenVideoTrack opens the i-th video track of this container.
	OpenVideoTrack(i int) (videotrack.Decoder, error)

	Close() error
}

// Bitmap is a decoded still image appended to a media file as cover art
// (§4.6). A loader (package imagetrack's caller) is responsible for
// decoding the source file into this already-negotiated raw layout.
type Bitmap struct {
	Data        []byte
	Width       int
	Height      int
	ColorSpace  format.ColorSpace
	BytesPerRow int
}
