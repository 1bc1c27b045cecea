package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/zsiec/playcore/controller"
	"github.com/zsiec/playcore/errs"
)

// audioTick is the real-time deadline the audio output thread services
// (§5c "the scheduler / media node that calls AudioProxySupplier::
// GetFrames on a real-time deadline"). 20ms keeps the buffer small
// enough that a dropped tick is inaudible.
const audioTick = 20 * time.Millisecond

// runAudioOutput drives the controller's audio proxy supplier on a fixed
// wall-clock cadence, the way a BMediaNode's buffer-group callback would.
// There is no real audio device in this module's dependency stack (no
// sound-output library appears anywhere in the example corpus), so the
// decoded PCM is discarded after GetFrames fills it — GetFrames itself
// is what advances the controller's playback clock via SetAudioTime.
func runAudioOutput(ctx context.Context, ctrl *controller.Controller, log *slog.Logger) error {
	proxy := ctrl.AudioProxy()
	format := proxy.Format()
	frameCount := int(format.FrameRate * audioTick.Seconds())
	if frameCount <= 0 {
		frameCount = 1
	}
	buffer := make([]byte, frameCount*format.FrameSize())

	ticker := time.NewTicker(audioTick)
	defer ticker.Stop()

	var tPos time.Duration
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			tEnd := tPos + audioTick
			if err := proxy.GetFrames(buffer, frameCount, tPos, tEnd); err != nil {
				log.Warn("audio output tick failed", "error", err)
			}
			tPos = tEnd
		}
	}
}

// videoTick is the display cadence the video output thread polls at.
// The controller's own video frame rate governs which frame is due; this
// is only how often a caller asks.
const videoTick = 20 * time.Millisecond

// runVideoOutput drives the controller's video proxy supplier, decoding
// whichever frame the controller's current time position calls for.
// There is no display/windowing library in this module's dependency
// stack, so the decoded frame is discarded after FillBuffer fills it;
// a real binding would hand buffer to a compositor here instead.
func runVideoOutput(ctx context.Context, ctrl *controller.Controller, log *slog.Logger) error {
	ticker := time.NewTicker(videoTick)
	defer ticker.Stop()

	var buffer []byte
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			proxy := ctrl.VideoProxy()
			vf, ok := ctrl.CurrentVideoFormat()
			if proxy == nil || !ok || vf.FieldRate <= 0 {
				continue
			}

			need := vf.BytesPerRow * vf.DisplayHeight
			if len(buffer) != need {
				buffer = make([]byte, need)
			}

			frame := int64(ctrl.TimePosition().Seconds() * vf.FieldRate)
			if _, _, err := proxy.FillBuffer(frame, buffer, vf); err != nil && !errs.Is(err, errs.Timeout) {
				log.Debug("video output tick failed", "error", err)
			}
		}
	}
}
