// Package format defines the media format sum type that flows through the
// playback core — encoded/raw audio and video descriptors — and the
// sample-kind trait used by the audio readers to normalize sample values
// to a canonical scale without spreading endian/format branches through
// call sites.
package format

// Kind identifies which variant of Format is populated.
type Kind int

const (
	EncodedAudio Kind = iota
	RawAudio
	EncodedVideo
	RawVideo
)

// SampleKind identifies the numeric representation of one audio sample.
type SampleKind int

const (
	Float32 SampleKind = iota
	Int32
	Int16
	Uint8
	Int8
)

// BytesPerSample returns the on-the-wire size of one sample of this kind.
func (k SampleKind) BytesPerSample() int {
	switch k {
	case Float32, Int32:
		return 4
	case Int16:
		return 2
	case Uint8, Int8:
		return 1
	default:
		return 0
	}
}

// ByteOrder is the wire byte order of a raw sample buffer.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// RawAudioFormat describes a negotiated raw PCM stream. Immutable once a
// connection is negotiated (§3 Media format).
type RawAudioFormat struct {
	SampleKind SampleKind
	ByteOrder  ByteOrder
	FrameRate  float64
	Channels   int
	BufferSize int // bytes
}

// FrameSize returns the size in bytes of one frame (one sample per channel).
func (f RawAudioFormat) FrameSize() int {
	return f.SampleKind.BytesPerSample() * f.Channels
}

// EncodedAudioFormat describes an audio stream still in compressed form.
type EncodedAudioFormat struct {
	Codec      string
	FrameRate  float64
	Channels   int
	BufferSize int
}

// ColorSpace identifies a raw video pixel format.
type ColorSpace int

const (
	ColorSpaceNone ColorSpace = iota
	RGB32
	YCbCr422
	YCbCr420
	Gray8
)

// BytesPerPixel returns the packed size of ColorSpace where that is
// meaningful (planar formats return 0; callers compute bytes-per-row from
// the container/decoder instead).
func (c ColorSpace) BytesPerPixel() int {
	switch c {
	case RGB32:
		return 4
	case Gray8:
		return 1
	default:
		return 0
	}
}

// RawVideoFormat describes a negotiated raw video stream (§3 Media format).
type RawVideoFormat struct {
	PixelFormat   ColorSpace
	DisplayWidth  int
	DisplayHeight int
	BytesPerRow   int
	FieldRate     float64
	PixelAspect   float64
}

// EncodedVideoFormat describes a video stream still in compressed form.
type EncodedVideoFormat struct {
	Codec        string
	DisplayColor ColorSpace
	Width        int
	Height       int
	FieldRate    float64
}

// Format is the sum type over the four media-format variants. Exactly one
// of the typed accessors is meaningful for a given Kind.
type Format struct {
	Kind Kind

	RawAudio     RawAudioFormat
	EncodedAudio EncodedAudioFormat
	RawVideo     RawVideoFormat
	EncodedVideo EncodedVideoFormat
}

// IsAudio reports whether this format describes an audio stream.
func (f Format) IsAudio() bool {
	return f.Kind == EncodedAudio || f.Kind == RawAudio
}

// IsVideo reports whether this format describes a video stream.
func (f Format) IsVideo() bool {
	return f.Kind == EncodedVideo || f.Kind == RawVideo
}
