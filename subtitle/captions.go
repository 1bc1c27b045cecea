package subtitle

import (
	"sort"
	"sync"
	"time"

	"github.com/zsiec/playcore/track"
)

// CaptionBridge implements videotrack.CaptionSink, accumulating embedded
// CEA-608/708 captions as they're decoded so each channel can be looked
// up through the same track.SubtitleIndex surface an external SRT file
// uses (§4.8, §6.2 DOMAIN STACK note on merging ccx captions into the
// subtitle-sink API). A caption stays active from its own timestamp until
// the next one on the same channel; an empty-text caption clears the
// channel (CEA-608 "erase display memory").
type CaptionBridge struct {
	mu       sync.Mutex
	channels map[int][]Cue
}

var _ track.SubtitleIndex = (*ChannelView)(nil)

// NewCaptionBridge returns an empty caption bridge.
func NewCaptionBridge() *CaptionBridge {
	return &CaptionBridge{channels: make(map[int][]Cue)}
}

// Caption records one decoded caption event. Captions are expected to
// arrive in non-decreasing pts order per channel, matching decode order;
// out-of-order arrivals are still appended and will simply not binary
// search correctly until re-sorted on next Channel() call.
func (b *CaptionBridge) Caption(pts time.Duration, channel int, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cues := b.channels[channel]
	if n := len(cues); n > 0 {
		cues[n-1].Duration = pts - cues[n-1].Start
	}
	b.channels[channel] = append(cues, Cue{Start: pts, Duration: time.Hour, Text: text})
}

// Channel returns a snapshot lookup view over one caption channel's
// accumulated cues. The view is a point-in-time copy; call Channel again
// to observe captions received since.
func (b *CaptionBridge) Channel(channel int) *ChannelView {
	b.mu.Lock()
	defer b.mu.Unlock()

	cues := append([]Cue(nil), b.channels[channel]...)
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].Start < cues[j].Start })
	return &ChannelView{cues: cues}
}

// ChannelView is an immutable snapshot of one caption channel's cues,
// looked up the same way as a parsed subtitle Index.
type ChannelView struct {
	cues []Cue
}

// At returns the caption text active at t, if any, or ok=false if the
// channel was cleared (or never populated) at that time.
func (v *ChannelView) At(t time.Duration) (text string, ok bool) {
	if len(v.cues) == 0 {
		return "", false
	}
	i := sort.Search(len(v.cues), func(i int) bool { return v.cues[i].Start > t }) - 1
	if i < 0 {
		return "", false
	}
	c := v.cues[i]
	if t >= c.Start+c.Duration || c.Text == "" {
		return "", false
	}
	return c.Text, true
}
