package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/zsiec/playcore/audio"
	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/format"
	"github.com/zsiec/playcore/track"
)

// managerLockTimeout bounds how long GetFrames waits for the playback
// manager's lock before degrading to silence (§4.2 step 1): the audio
// node must never stall.
const managerLockTimeout = 10 * time.Millisecond

// AudioProxySupplier is the playhead (§4.2): it consults a Manager for
// per-interval timing and drives an internally parameterized resampler
// over the current track's reader chain to fill a requested wall-clock
// span.
type AudioProxySupplier struct {
	log *slog.Logger
	mgr Manager

	// lock serializes GetFrames calls, modeling the playback manager's
	// 10 ms-bounded lock (§4.2 step 1, §5). SetSupplier does not take it;
	// the reader chain is guarded by chainMu.
	lock *semaphore.Weighted

	chainMu        sync.Mutex
	supplier       track.AudioTrackSupplier
	adapter        *audio.Adapter
	volume         *audio.VolumeConverter
	resampler      *audio.Resampler
	videoFrameRate float64

	outFormat format.RawAudioFormat
}

// NewAudioProxySupplier creates a playhead querying mgr for interval
// timing and producing frames in outFormat — the node's negotiated
// output format.
func NewAudioProxySupplier(mgr Manager, outFormat format.RawAudioFormat, log *slog.Logger) *AudioProxySupplier {
	if log == nil {
		log = slog.Default()
	}
	return &AudioProxySupplier{
		log:       log.With("component", "audio-proxy-supplier"),
		mgr:       mgr,
		lock:      semaphore.NewWeighted(1),
		outFormat: outFormat,
	}
}

// Format returns the negotiated output format frames are produced in,
// so a real-time audio thread can size its buffer (§5c).
func (p *AudioProxySupplier) Format() format.RawAudioFormat { return p.outFormat }

// SetSupplier rebuilds the reader chain supplier → adapter → volume →
// resampler atomically under the chain lock (§4.2 "Switching sources").
// videoFrameRate is remembered for audio-frame ↔ video-frame conversions
// the controller performs.
func (p *AudioProxySupplier) SetSupplier(supplier track.AudioTrackSupplier, videoFrameRate float64) {
	p.chainMu.Lock()
	defer p.chainMu.Unlock()

	p.supplier = supplier
	p.videoFrameRate = videoFrameRate
	if supplier == nil {
		p.adapter = nil
		p.volume = nil
		p.resampler = nil
		return
	}

	decodeFormat := supplier.Format()
	adapterTarget := decodeFormat
	adapterTarget.SampleKind = p.outFormat.SampleKind
	adapterTarget.ByteOrder = p.outFormat.ByteOrder
	adapterTarget.Channels = p.outFormat.Channels
	// adapterTarget.FrameRate stays at the decode rate: per §4.1's "skip
	// unneeded stages" rule this makes the adapter's internal resampler a
	// no-op, and rate conversion to the node's output rate happens below
	// in the playhead's own resampler, parameterized per playing interval.

	p.adapter = audio.NewAdapter(supplier, adapterTarget)
	p.volume = audio.NewVolumeConverter(p.adapter)
	p.resampler = audio.NewResampler(p.volume, p.outFormat.FrameRate)
}

// SetVolume sets the current chain's gain (§4.7 controller volume).
func (p *AudioProxySupplier) SetVolume(v float64) {
	p.chainMu.Lock()
	defer p.chainMu.Unlock()
	if p.volume != nil {
		p.volume.SetVolume(v)
	}
}

// GetFrames fills buffer with frameCount frames covering the wall-clock
// span [tStart, tEnd) (§4.2).
func (p *AudioProxySupplier) GetFrames(buffer []byte, frameCount int, tStart, tEnd time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), managerLockTimeout)
	defer cancel()

	if err := p.lock.Acquire(ctx, 1); err != nil {
		audio.ReadSilence(p.outFormat, buffer, frameCount)
		return nil
	}
	defer p.lock.Release(1)

	p.chainMu.Lock()
	resampler := p.resampler
	p.chainMu.Unlock()

	if resampler == nil || p.mgr == nil {
		audio.ReadSilence(p.outFormat, buffer, frameCount)
		return nil
	}

	intervals, err := p.accumulateIntervals(tStart, tEnd)
	if err != nil {
		audio.ReadSilence(p.outFormat, buffer, frameCount)
		return nil
	}
	p.mgr.SetAudioTime(tEnd)

	total := tEnd - tStart
	if total <= 0 {
		return nil
	}

	frameSize := p.outFormat.FrameSize()
	written := 0
	for idx, iv := range intervals {
		n := framesForInterval(iv, total, frameCount, idx == len(intervals)-1, written)
		if n <= 0 {
			continue
		}
		out := buffer[written*frameSize : (written+n)*frameSize]

		if iv.Speed == 0 {
			audio.ReadSilence(p.outFormat, out, n)
			written += n
			continue
		}

		p.chainMu.Lock()
		resampler.InOffset = frameForTime(iv.XStart, p.decodeRateLocked())
		resampler.TimeScale = abs(iv.Speed)
		err := resampler.Read(out, 0, n)
		p.chainMu.Unlock()

		if err != nil {
			p.log.Debug("interval read failed, substituting silence", "error", err)
			audio.ReadSilence(p.outFormat, out, n)
		}
		written += n
	}

	// Any rounding remainder at the tail is silence rather than a short
	// write, since GetFrames must always fill frameCount frames exactly.
	if written < frameCount {
		audio.ReadSilence(p.outFormat, buffer[written*frameSize:], frameCount-written)
	}

	return nil
}

// decodeRateLocked returns the current supplier's decode frame rate.
// Callers must hold chainMu.
func (p *AudioProxySupplier) decodeRateLocked() float64 {
	if p.supplier == nil {
		return p.outFormat.FrameRate
	}
	return p.supplier.Format().FrameRate
}

// accumulateIntervals walks [tStart, tEnd) left to right, collecting one
// playing interval per Manager call until the span is covered (§4.2 step
// 2). A zero-duration interval is an internal error.
func (p *AudioProxySupplier) accumulateIntervals(tStart, tEnd time.Duration) ([]PlayingInterval, error) {
	var intervals []PlayingInterval
	cur := tStart
	for cur < tEnd {
		iv, err := p.mgr.NextPlayingInterval(cur, tEnd)
		if err != nil {
			return intervals, errs.Wrap(err, "get next playing interval")
		}
		if iv.Duration() <= 0 {
			return intervals, errs.New(errs.BadInput, "playback manager returned a zero-duration playing interval")
		}
		intervals = append(intervals, iv)
		cur = iv.TEnd
	}
	return intervals, nil
}

// framesForInterval converts iv's share of the requested wall-clock span
// into an output frame count, giving the final interval whatever frames
// remain so rounding never drops or over-allocates a sample.
func framesForInterval(iv PlayingInterval, total time.Duration, frameCount int, isLast bool, written int) int {
	if isLast {
		return frameCount - written
	}
	frac := float64(iv.Duration()) / float64(total)
	return int(frac * float64(frameCount))
}

func frameForTime(t time.Duration, rate float64) int64 {
	return int64(t.Seconds() * rate)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
