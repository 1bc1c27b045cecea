package playback

import (
	"time"

	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/format"
	"github.com/zsiec/playcore/track"
)

// catchUpLimit bounds how many frames FillBuffer will decode-and-discard
// to converge on startFrame after a seek snaps to an earlier keyframe
// (§4.5): beyond this, the caller gets TIMED_OUT and may display the
// nearest available frame rather than block the UI tick.
const catchUpLimit = 5

// VideoProxySupplier caches the single most recently decoded frame and
// replays small forward catch-ups, so a caller driving video at its
// display cadence doesn't force a re-seek for every few-frame skip
// (§4.5).
type VideoProxySupplier struct {
	source track.VideoTrackSupplier

	haveCache   bool
	cachedFrame int64
	cachedPTS   time.Duration
	cachedBytes []byte

	discardBuf []byte
}

// NewVideoProxySupplier wraps source with a single-slot frame cache.
func NewVideoProxySupplier(source track.VideoTrackSupplier) *VideoProxySupplier {
	return &VideoProxySupplier{source: source}
}

// SetSource replaces the wrapped video track supplier, invalidating the
// cache (§4.7 "SetTo" rebuilds the proxy chain on item change).
func (p *VideoProxySupplier) SetSource(source track.VideoTrackSupplier) {
	p.source = source
	p.haveCache = false
}

// FillBuffer decodes the frame at startFrame into buffer, in targetFormat
// (§4.5). wasCached reports whether the result came from the cache
// (either this proxy's slot or the underlying supplier's own single-frame
// fast path) without a fresh decode.
func (p *VideoProxySupplier) FillBuffer(startFrame int64, buffer []byte, targetFormat format.RawVideoFormat) (time.Duration, bool, error) {
	if p.source == nil {
		return 0, false, errs.New(errs.NoInit, "video proxy supplier has no source")
	}

	if p.haveCache && p.cachedFrame == startFrame && len(p.cachedBytes) == len(buffer) {
		copy(buffer, p.cachedBytes)
		return p.cachedPTS, true, nil
	}

	cur := p.source.CurrentFrame()
	if cur != startFrame {
		// Always re-seek and decode forward; a CurrentFrame == startFrame+1
		// reuse path would be possible here but is deliberately not taken
		// (simpler invariant: FillBuffer always decodes on a cursor
		// mismatch, §4.5).
		k, err := p.source.SeekToFrame(startFrame)
		if err != nil {
			return 0, false, errs.Wrap(err, "seek to frame %d", startFrame)
		}
		if startFrame-k > catchUpLimit {
			return 0, false, errs.New(errs.Timeout, "seek landed %d frames before target %d, exceeds catch-up limit", startFrame-k, startFrame)
		}
		cur = k
	}

	if len(p.discardBuf) != len(buffer) {
		p.discardBuf = make([]byte, len(buffer))
	}

	for cur < startFrame-1 {
		if _, _, err := p.source.ReadFrame(p.discardBuf, targetFormat); err != nil {
			return 0, false, errs.Wrap(err, "catch-up decode toward frame %d", startFrame)
		}
		cur = p.source.CurrentFrame()
	}

	pts, wasCached, err := p.source.ReadFrame(buffer, targetFormat)
	if err != nil {
		return 0, false, err
	}

	p.cachedFrame = p.source.CurrentFrame()
	p.cachedPTS = pts
	if len(p.cachedBytes) != len(buffer) {
		p.cachedBytes = make([]byte, len(buffer))
	}
	copy(p.cachedBytes, buffer)
	p.haveCache = true

	return pts, wasCached, nil
}

// CurrentFrame reports the frame last delivered by FillBuffer.
func (p *VideoProxySupplier) CurrentFrame() int64 {
	if !p.haveCache {
		return -1
	}
	return p.cachedFrame
}

// SeekToTime delegates to the underlying supplier and invalidates the
// cache, since the next FillBuffer call must decode fresh.
func (p *VideoProxySupplier) SeekToTime(pts time.Duration) error {
	if p.source == nil {
		return errs.New(errs.NoInit, "video proxy supplier has no source")
	}
	p.haveCache = false
	return p.source.SeekToTime(pts)
}
