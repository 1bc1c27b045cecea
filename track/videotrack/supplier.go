package videotrack

import (
	"log/slog"
	"time"

	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/format"
)

// CaptionSink receives decoded embedded captions as the video advances.
// Implemented by package subtitle's caption bridge.
type CaptionSink interface {
	Caption(pts time.Duration, channel int, text string)
}

// Supplier implements track.VideoTrackSupplier over a Decoder (§4.4).
type Supplier struct {
	log     *slog.Logger
	decoder Decoder
	sink    CaptionSink
	captions *captionDecoder

	format       format.RawVideoFormat
	currentFrame int64
	frameCount   int64

	singleFrame   bool
	singleDecoded bool
	lastPTS       time.Duration
}

// New opens a Supplier over decoder, negotiating the initial raw format
// per §4.4: preferred color space is the encoded format's display color
// space if known, else YCbCr 4:2:2.
func New(decoder Decoder, log *slog.Logger) (*Supplier, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Supplier{
		log:      log.With("component", "video-track-supplier"),
		decoder:  decoder,
		captions: newCaptionDecoder(),
	}

	preferred := format.RawVideoFormat{PixelFormat: decoder.EncodedColorSpace()}
	if preferred.PixelFormat == format.ColorSpaceNone {
		preferred.PixelFormat = format.YCbCr422
	}

	negotiated, err := decoder.NegotiateFormat(preferred)
	if err != nil {
		return nil, errs.Wrap(err, "negotiate video format")
	}

	w, h := decoder.Bounds()
	minBPR := w * negotiated.PixelFormat.BytesPerPixel()
	if minBPR > negotiated.BytesPerRow {
		negotiated.BytesPerRow = minBPR
		// Some decoders under-report bytes_per_row; re-negotiate with the
		// corrected value so the codec can adjust its internal stride.
		negotiated, err = decoder.NegotiateFormat(negotiated)
		if err != nil {
			return nil, errs.Wrap(err, "renegotiate video format after bytes-per-row correction")
		}
	}

	s.format = negotiated
	s.frameCount = decoder.FrameCount()
	s.singleFrame = s.frameCount < 2
	s.currentFrame = -1

	return s, nil
}

// SetCaptionSink installs a sink that receives embedded closed captions
// decoded from this track's SEI data, if present.
func (s *Supplier) SetCaptionSink(sink CaptionSink) { s.sink = sink }

func (s *Supplier) Bounds() (int, int) {
	w, h := s.decoder.Bounds()
	return w, h
}

func (s *Supplier) ColorSpace() format.ColorSpace { return s.format.PixelFormat }

func (s *Supplier) BytesPerRow() int { return s.format.BytesPerRow }

func (s *Supplier) FrameRate() float64 { return s.format.FieldRate }

func (s *Supplier) CurrentFrame() int64 { return s.currentFrame }

func (s *Supplier) Duration() time.Duration { return s.decoder.Duration() }

// ReadFrame implements track.VideoTrackSupplier.ReadFrame (§4.4).
func (s *Supplier) ReadFrame(buffer []byte, targetFormat format.RawVideoFormat) (time.Duration, bool, error) {
	if targetFormat.PixelFormat != s.format.PixelFormat || targetFormat.BytesPerRow != s.format.BytesPerRow {
		negotiated, err := s.decoder.NegotiateFormat(targetFormat)
		if err != nil {
			negotiated, err = s.decoder.NegotiateFormat(format.RawVideoFormat{
				PixelFormat: format.RGB32,
				BytesPerRow: targetFormat.DisplayWidth * format.RGB32.BytesPerPixel(),
			})
			if err != nil {
				return 0, false, errs.Wrap(err, "renegotiate video format to RGB32")
			}
		}
		s.format = negotiated
	}

	if s.singleFrame && s.singleDecoded {
		return s.lastPTS, true, nil
	}

	pts, err := s.decoder.DecodeNextFrame(buffer)
	if err != nil {
		if errs.Is(err, errs.EndOfStream) {
			if s.singleFrame {
				s.singleDecoded = true
				s.lastPTS = pts
				s.currentFrame = s.decoder.CurrentFrame()
				return pts, false, nil
			}
			return pts, false, err
		}
		return 0, false, err
	}

	s.lastPTS = pts
	s.currentFrame = s.decoder.CurrentFrame()
	if s.singleFrame {
		s.singleDecoded = true
	}

	if sei := s.decoder.CaptionSEI(); len(sei) > 0 && s.sink != nil {
		for _, payload := range sei {
			s.captions.process(payload, pts, s.sink)
		}
	}

	return pts, false, nil
}

// FindKeyFrameForFrame returns the closest keyframe at or before f without
// moving the decode cursor (§8 "Keyframe seek bound" property).
func (s *Supplier) FindKeyFrameForFrame(f int64) (int64, error) {
	return s.decoder.FindKeyFrameForFrame(f)
}

// SeekToFrame implements §4.4's seek algorithm: no-op if already there;
// reject a container that returns a keyframe past the target; keep the
// current cursor if it is already between the keyframe and the target
// (cheaper than re-decoding from the keyframe).
func (s *Supplier) SeekToFrame(f int64) (int64, error) {
	if f == s.currentFrame {
		return f, nil
	}

	k, err := s.decoder.FindKeyFrameForFrame(f)
	if err != nil {
		return s.currentFrame, errs.Wrap(err, "find keyframe for frame %d", f)
	}
	if k > f {
		return s.currentFrame, errs.New(errs.IOFailure, "container returned keyframe %d after target frame %d", k, f)
	}

	if k <= s.currentFrame && s.currentFrame <= f {
		// The current cursor is already strictly closer than the
		// keyframe; keep it rather than re-decoding from k.
		return s.currentFrame, nil
	}

	reached, _, err := s.decoder.SeekToFrame(k)
	if err != nil {
		return s.currentFrame, errs.Wrap(err, "seek to keyframe %d", k)
	}
	s.currentFrame = reached
	return reached, nil
}

func (s *Supplier) SeekToTime(pts time.Duration) error {
	fps := 25.0
	if d := s.decoder.Duration(); d > 0 && s.frameCount > 0 {
		fps = float64(s.frameCount) / d.Seconds()
	}
	frame := int64(pts.Seconds() * fps)
	_, err := s.SeekToFrame(frame)
	return err
}

func (s *Supplier) Close() error { return s.decoder.Close() }
